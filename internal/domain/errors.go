package domain

import (
	"errors"
)

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrLaunch            = errors.New("launch failed")
	ErrRunFailed         = errors.New("run failed")
	ErrMalformedOutput   = errors.New("malformed output")
	ErrParse             = errors.New("timing is not a valid number")
	ErrInvalidSample     = errors.New("invalid timing sample")
	ErrInsufficientData  = errors.New("no completed runs")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrLogOrder          = errors.New("experiment log written out of order")
)
