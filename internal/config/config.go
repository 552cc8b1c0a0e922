// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Accelerometer sources selectable with ACCEL_SOURCE.
const (
	SourceMPU9250 = "mpu9250"
	SourceSerial  = "serial"
	SourceMQTT    = "mqtt"
	SourceMock    = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// Logging
	LogLevel string

	// Accelerometer
	AccelSource       string
	AccelPollInterval int // milliseconds

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange     byte
	IMUSampleInterval int // milliseconds

	// Serial accelerometer
	SerialPort     string
	SerialBaudRate int

	// MQTT
	MQTTBroker           string
	MQTTClientIDLeveler  string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	TopicIMU             string

	// Dial dynamics
	SpringAnchorDistance  float64
	SpringDamping         float64
	SpringFrequency       float64 // Hz
	DialAngularResistance float64
	AnimatorFPS           int

	// Web Server
	WebServerPort int

	// Display
	DisplayEnabled        bool
	DisplayI2CBus         string // panel answers at 0x3C
	DisplayUpdateInterval int    // milliseconds
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		LogLevel: "info",

		AccelSource:       SourceMPU9250,
		AccelPollInterval: 667, // 1/1.5 s

		IMUSPIDevice:      "/dev/spidev6.0",
		IMUCSPin:          "18",
		IMUAccelRange:     0,
		IMUSampleInterval: 100,

		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,

		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDLeveler:  "leveler",
		MQTTClientIDProducer: "leveler-imu-producer",
		MQTTClientIDConsole:  "leveler-console",
		TopicIMU:             "inertial/imu/left",

		SpringAnchorDistance:  4.0,
		SpringDamping:         0.7,
		SpringFrequency:       0.5,
		DialAngularResistance: 2.0,
		AnimatorFPS:           60,

		WebServerPort: 8080,

		DisplayEnabled:        false,
		DisplayI2CBus:         "",
		DisplayUpdateInterval: 50,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default().
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	// Accelerometer
	case "ACCEL_SOURCE":
		c.AccelSource = strings.ToLower(value)
	case "ACCEL_POLL_INTERVAL":
		c.AccelPollInterval, err = parseIntRange(key, value, 1, 60000)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		var rangeVal int
		rangeVal, err = strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseIntRange(key, value, 1, 60000)

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseIntRange(key, value, 1, 4000000)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LEVELER":
		c.MQTTClientIDLeveler = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_IMU":
		c.TopicIMU = value

	// Dial dynamics
	case "SPRING_ANCHOR_DISTANCE":
		c.SpringAnchorDistance, err = parseFloatMin(key, value, 0)
	case "SPRING_DAMPING":
		c.SpringDamping, err = parseFloatMin(key, value, 0)
	case "SPRING_FREQUENCY":
		c.SpringFrequency, err = parseFloatMin(key, value, 0)
	case "DIAL_ANGULAR_RESISTANCE":
		c.DialAngularResistance, err = parseFloatMin(key, value, 0)
	case "ANIMATOR_FPS":
		c.AnimatorFPS, err = parseIntRange(key, value, 1, 240)

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseIntRange(key, value, 1, 65535)

	// Display
	case "DISPLAY_ENABLED":
		c.DisplayEnabled, err = strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseIntRange(key, value, 1, 60000)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseIntRange(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseFloatMin(key, value string, lo float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo {
		return 0, fmt.Errorf("%s must be >= %g, got %g", key, lo, v)
	}
	return v, nil
}

// validate checks cross-field requirements.
func (c *Config) validate() error {
	switch c.AccelSource {
	case SourceMPU9250:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for ACCEL_SOURCE=%s", c.AccelSource)
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for ACCEL_SOURCE=%s", c.AccelSource)
		}
	case SourceMQTT:
		if c.MQTTBroker == "" || c.TopicIMU == "" {
			return fmt.Errorf("MQTT_BROKER and TOPIC_IMU are required for ACCEL_SOURCE=%s", c.AccelSource)
		}
	case SourceMock:
	default:
		return fmt.Errorf("unknown ACCEL_SOURCE %q", c.AccelSource)
	}
	if c.SpringFrequency == 0 {
		return fmt.Errorf("SPRING_FREQUENCY must be > 0")
	}
	return nil
}

// PollInterval is the accelerometer polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.AccelPollInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return that call's error.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
