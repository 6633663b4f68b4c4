package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"yocto-led-bridge/internal/infrastructure/config"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	keepAlive         = 60 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	qos               = 1

	payloadOnline  = "online"
	payloadOffline = "offline"
)

var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrPublishTimeout   = errors.New("mqtt publish timeout")
)

// MessageHandler receives the topic and raw payload of a message.
type MessageHandler func(topic string, payload []byte) error

// Broker is the part of an MQTT client the discovery adapter needs.
type Broker interface {
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, handler MessageHandler) error
}

// Client wraps a paho client. Subscriptions are restored and the
// availability topic is set back to online after every reconnect.
type Client struct {
	client            pahomqtt.Client
	availabilityTopic string
	logger            *slog.Logger

	subMu         sync.RWMutex
	subscriptions map[string]MessageHandler
}

// AvailabilityTopic is where the bridge publishes online/offline. The broker
// publishes "offline" there as last will if the bridge drops.
func AvailabilityTopic(baseTopic string) string {
	return baseTopic + "/bridge/availability"
}

func Connect(cfg config.MQTTConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		availabilityTopic: AvailabilityTopic(cfg.BaseTopic),
		logger:            logger.With("component", "mqtt"),
		subscriptions:     make(map[string]MessageHandler),
	}

	opts := pahomqtt.NewClientOptions().AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	opts.SetWill(c.availabilityTopic, payloadOffline, qos, true)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.logger.Warn("mqtt connection lost", "error", err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.logger.Info("mqtt connected", "broker", cfg.Broker, "client_id", cfg.ClientID)
	return c, nil
}

func (c *Client) handleConnect() {
	c.subMu.RLock()
	for topic, handler := range c.subscriptions {
		c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	}
	c.subMu.RUnlock()

	c.client.Publish(c.availabilityTopic, qos, true, payloadOnline)
}

func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	return token.Error()
}

func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.subMu.Lock()
	c.subscriptions[topic] = handler
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: subscribe %s", ErrPublishTimeout, topic)
	}
	return token.Error()
}

// Close publishes offline and disconnects.
func (c *Client) Close() error {
	if c.client.IsConnected() {
		token := c.client.Publish(c.availabilityTopic, qos, true, payloadOffline)
		token.WaitTimeout(publishTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)
	return nil
}

func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("mqtt handler returned error", "topic", msg.Topic(), "error", err)
		}
	}
}
