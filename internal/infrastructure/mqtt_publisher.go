package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"mpi-benchmark/internal/domain"
)

const (
	trialsSubtopic  = "trials"
	summarySubtopic = "summary"
	publishQoS      = 1
)

var errPublishTimeout = errors.New("mqtt: timed out")

// MQTTPublisher sends trial results and the experiment summary to a broker.
type MQTTPublisher struct {
	logger  *zap.Logger
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(logger *zap.Logger, config domain.MQTTConfig, experimentID string) (*MQTTPublisher, error) {
	clientID := config.ClientID
	if clientID == "" {
		clientID = "mpi-benchmark-" + experimentID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(config.Broker))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(config.Timeout)
	opts.SetKeepAlive(30 * time.Second)

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), config.Timeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", config.Broker, err)
	}

	logger.Info("Connected to MQTT broker",
		zap.String("broker", config.Broker),
		zap.String("client_id", clientID))

	return NewMQTTPublisherWithClient(logger, client, config.Topic, config.Timeout), nil
}

func NewMQTTPublisherWithClient(logger *zap.Logger, client mqtt.Client, topic string, timeout time.Duration) *MQTTPublisher {
	return &MQTTPublisher{
		logger:  logger,
		client:  client,
		topic:   strings.TrimSuffix(topic, "/"),
		timeout: timeout,
	}
}

func (p *MQTTPublisher) PublishTrial(report domain.TrialReport) error {
	return p.publish(p.topic+"/"+trialsSubtopic, report)
}

func (p *MQTTPublisher) PublishSummary(summary *domain.ExperimentSummary) error {
	return p.publish(p.topic+"/"+summarySubtopic, summary)
}

func (p *MQTTPublisher) publish(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := wait(p.client.Publish(topic, publishQoS, false, payload), p.timeout); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("Published", zap.String("topic", topic), zap.Int("bytes", len(payload)))
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errPublishTimeout
	}
	return token.Error()
}

func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTrial(domain.TrialReport) error          { return nil }
func (NopPublisher) PublishSummary(*domain.ExperimentSummary) error { return nil }
func (NopPublisher) Close()                                         {}
