package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/smokyabdulrahman/salat/internal/heading"
)

// MQTTConfig selects the broker and topic compass samples are published on.
type MQTTConfig struct {
	Broker   string // e.g. tcp://localhost:1883
	Topic    string
	ClientID string
	QoS      byte
}

// Validate checks the required fields.
func (c MQTTConfig) Validate() error {
	switch {
	case c.Broker == "":
		return errors.New("mqtt broker is required")
	case c.Topic == "":
		return errors.New("mqtt topic is required")
	case c.QoS > 2:
		return fmt.Errorf("mqtt qos %d outside 0..2", c.QoS)
	}
	return nil
}

// MQTTSource subscribes to a topic and decodes every message as a Sample.
type MQTTSource struct {
	cfg    MQTTConfig
	logger *slog.Logger
	client mqtt.Client

	mu     sync.Mutex // serialises handler calls
	handle func(heading.Sample)
}

// NewMQTTSource prepares a client for cfg. It does not connect until Run.
func NewMQTTSource(cfg MQTTConfig, logger *slog.Logger) (*MQTTSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "salat-compass"
	}

	s := &MQTTSource{cfg: cfg, logger: logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s, nil
}

// Run implements Source. It connects, subscribes and delivers samples until
// ctx is done, then unsubscribes and disconnects.
func (s *MQTTSource) Run(ctx context.Context, handle func(heading.Sample)) error {
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer s.client.Disconnect(250)

	token := s.client.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.cfg.Topic, err)
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.cfg.Topic, "qos", s.cfg.QoS)

	<-ctx.Done()

	s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(2 * time.Second)
	s.logger.Info("mqtt source stopped")
	return nil
}

// connect waits for the connection in a ctx-aware loop.
func (s *MQTTSource) connect(ctx context.Context) error {
	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for !token.WaitTimeout(poll) {
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		default:
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *MQTTSource) handleMessage(topic string, payload []byte) {
	sample, err := Decode(payload)
	if err != nil {
		s.logger.Warn("skipping malformed sample",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle(sample)
	}
}
