package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Publisher pushes notification events to an external bus.
type Publisher interface {
	Publish(input Input) error
	Close()
}

// MQTTPublisher publishes notification events to an MQTT topic so wall
// displays and other subscribers can react without polling the API.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	logger *log.Logger
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, clientID, topic string, logger *log.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}

	logger.WithField("broker", brokerURL).Info("connected to MQTT broker")
	return &MQTTPublisher{client: client, topic: topic, logger: logger}, nil
}

type busEvent struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	Timestamp time.Time `json:"timestamp"`
}

// Publish sends a notification event to the configured topic.
func (p *MQTTPublisher) Publish(input Input) error {
	payload, err := json.Marshal(busEvent{
		Title:     input.Title,
		Message:   input.Message,
		Type:      string(input.Type),
		Priority:  string(input.Priority),
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish timeout on %s", p.topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
