// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/orientation"
	"github.com/relabs-tech/leveler/internal/sensors"
)

// Publisher is the part of an MQTT client the producer needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// RunIMUProducer reads the local MPU9250 and publishes raw samples for
// remote levelers running with ACCEL_SOURCE=mqtt.
func RunIMUProducer(ctx context.Context, cfg *config.Config) error {
	log.Info().Str("component", "producer").Msg("starting IMU producer")

	src, err := sensors.NewIMUSource("left", cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange)
	if err != nil {
		return fmt.Errorf("producer: %w", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("producer: MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Info().Str("component", "producer").Msg("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := publishSample(client, cfg.TopicIMU, src, cfg.IMUAccelRange); err != nil {
				log.Warn().Str("component", "producer").Err(err).Msg("publish failed")
			}
		}
	}
}

// publishSample reads one sample and publishes it as retained JSON.
func publishSample(p Publisher, topic string, src sensors.IMURawReader, accelRange byte) error {
	raw, err := src.ReadRaw()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	if token := p.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, token.Error())
	}

	tilt := orientation.TiltFromGravity(raw.Acceleration(accelRange))
	log.Debug().Str("component", "producer").
		Msgf("accel ax=%d ay=%d az=%d | tilt %s", raw.Ax, raw.Ay, raw.Az, orientation.Label(tilt))
	return nil
}
