package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"weathernode/internal/models"
)

// MQTTConfig configures the optional live-telemetry sink.
type MQTTConfig struct {
	Broker   string // e.g. "tcp://broker.local:1883"
	ClientID string
	Username string
	Password string
	// Topic pattern, e.g. "weather/{device_id}/reading".
	Topic string
}

// MQTTSink publishes each classified reading to a broker topic so a
// dashboard can follow the station live. The paho client auto-reconnects
// in the background; while the broker is unreachable attempts are
// skipped rather than failed.
type MQTTSink struct {
	client mqtt.Client
	cfg    MQTTConfig
}

// NewMQTTSink connects to the broker. A connect failure is returned to
// the caller; the station runs fine without live telemetry.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, errors.New("upload: mqtt broker required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("upload: mqtt topic required")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("MQTT: Connection established")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("MQTT: Connection lost: %v", err)
	})
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("upload: connecting to MQTT broker: %w", token.Error())
	}
	log.Println("MQTT: Connected to broker:", cfg.Broker)

	return &MQTTSink{client: client, cfg: cfg}, nil
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Attempt publishes the payload as JSON at QoS 1.
func (s *MQTTSink) Attempt(p models.UploadPayload) Outcome {
	if !s.client.IsConnected() {
		return OutcomeSkipped
	}

	body, err := json.Marshal(p)
	if err != nil {
		log.Printf("MQTT: encoding payload failed: %v", err)
		return OutcomeFailure
	}

	topic := strings.ReplaceAll(s.cfg.Topic, "{device_id}", p.DeviceID)
	token := s.client.Publish(topic, 1, false, body)
	if token.Wait() && token.Error() != nil {
		log.Printf("MQTT: publish to %s failed: %v", topic, token.Error())
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Close disconnects from the broker, flushing in-flight messages.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
	log.Println("MQTT: Disconnected")
}
