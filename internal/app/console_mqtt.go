// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/leveler/internal/config"
	"github.com/relabs-tech/leveler/internal/imu"
	"github.com/relabs-tech/leveler/internal/orientation"
)

// RunConsoleMQTT prints the tilt of every IMU sample seen on TOPIC_IMU.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Info().Str("component", "console").Msgf("connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		raw, err := imu.Decode(msg.Payload())
		if err != nil {
			log.Warn().Str("component", "console").Err(err).Msg("imu unmarshal error")
			return
		}
		printTilt(os.Stdout, raw.Acceleration(cfg.IMUAccelRange))
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Info().Str("component", "console").Msgf("subscribed to %s", cfg.TopicIMU)

	<-ctx.Done()

	log.Info().Str("component", "console").Msg("shutting down")
	client.Disconnect(250)
	return nil
}

func printTilt(w io.Writer, g imu.Acceleration) {
	tilt := orientation.TiltFromGravity(g)
	pose := orientation.AccelToPose(g)
	fmt.Fprintf(w,
		"[TILT] %6.3f rad  %4s  ROLL=%7.2f  PITCH=%7.2f\n",
		tilt, orientation.Label(tilt), pose.Roll, pose.Pitch,
	)
}
