// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/imu"
)

// mqttAccelerometer follows IMURaw samples published by a remote IMU
// producer.
type mqttAccelerometer struct {
	broker     string
	clientID   string
	topic      string
	accelRange byte

	client mqtt.Client
	latest latestSample
}

// NewMQTT returns an accelerometer fed by IMURaw JSON on topic. Raw counts
// are scaled with accelRange, which must match the producer's setting.
func NewMQTT(broker, clientID, topic string, accelRange byte) Accelerometer {
	return &mqttAccelerometer{
		broker:     broker,
		clientID:   clientID,
		topic:      topic,
		accelRange: accelRange,
	}
}

func (m *mqttAccelerometer) Start(time.Duration) error {
	if m.client != nil {
		return errors.New("mqtt accelerometer: already started")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(m.clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt accelerometer: connect %s: %w", m.broker, token.Error())
	}
	log.Info().Str("component", "sensors").Msgf("connected to MQTT broker at %s", m.broker)

	token := client.Subscribe(m.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		m.handle(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		client.Disconnect(250)
		return fmt.Errorf("mqtt accelerometer: subscribe %s: %w", m.topic, token.Error())
	}
	log.Info().Str("component", "sensors").Msgf("subscribed to MQTT topic %s", m.topic)

	m.client = client
	return nil
}

func (m *mqttAccelerometer) handle(payload []byte) {
	raw, err := imu.Decode(payload)
	if err != nil {
		log.Warn().Str("component", "sensors").Err(err).Msg("MQTT payload unmarshal error")
		return
	}
	m.latest.set(raw.Acceleration(m.accelRange))
}

func (m *mqttAccelerometer) Stop() error {
	if m.client == nil {
		return nil
	}
	if token := m.client.Unsubscribe(m.topic); token.Wait() && token.Error() != nil {
		log.Warn().Str("component", "sensors").Err(token.Error()).Msg("MQTT unsubscribe error")
	}
	m.client.Disconnect(250)
	m.client = nil
	m.latest.reset()
	return nil
}

func (m *mqttAccelerometer) Latest() (imu.Acceleration, bool) {
	return m.latest.get()
}
