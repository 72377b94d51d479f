package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDGPS      string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPose string
	TopicIMU  string
	TopicEnv  string
	TopicGPS  string

	// Hardware
	I2CBus   string // "" picks the first bus
	FBDevice string // LED matrix framebuffer

	// IMU / fusion
	IMUSampleInterval int     // milliseconds
	SlerpPower        float64 // absolute-reference blend weight
	IMUGyroEnable     bool
	IMUAccelEnable    bool
	IMUCompassEnable  bool
	// Full-scale ranges, chip encodings:
	// accel 0=±2g..3=±16g, gyro 0=±245°/s..2=±2000°/s, mag 0=±4..3=±16 gauss
	IMUAccelRange byte
	IMUGyroRange  byte
	IMUMagRange   byte

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Timing
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort int

	// External OLED status display
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "orientation", "environment" or "gps"

	// LED matrix
	ScreenScrollInterval int // milliseconds per scroll column
}

// Package-level unexported variables for the config singleton:
// globalConfig is only set through InitGlobal (write lock) and read
// through Get (read lock), so goroutines never see a half-built value.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
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

// defaults seeds the values that have sensible board-level defaults;
// everything else must come from the file.
func defaults() *Config {
	return &Config{
		FBDevice:              "/dev/fb1",
		SlerpPower:            0.02,
		IMUGyroEnable:         true,
		IMUAccelEnable:        true,
		IMUCompassEnable:      true,
		ConsoleLogInterval:    1000,
		DisplayUpdateInterval: 500,
		DisplayContent:        "orientation",
		ScreenScrollInterval:  80,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_ENV":
		c.TopicEnv = value
	case "TOPIC_GPS":
		c.TopicGPS = value

	// Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "FB_DEVICE":
		c.FBDevice = value

	// IMU / fusion
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "SLERP_POWER":
		power, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid SLERP_POWER %q: %w", value, err)
		}
		if power <= 0 || power > 1 {
			return fmt.Errorf("SLERP_POWER must be in (0, 1], got %v", power)
		}
		c.SlerpPower = power
	case "IMU_GYRO_ENABLE":
		enable, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_ENABLE %q: %w", value, err)
		}
		c.IMUGyroEnable = enable
	case "IMU_ACCEL_ENABLE":
		enable, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_ENABLE %q: %w", value, err)
		}
		c.IMUAccelEnable = enable
	case "IMU_COMPASS_ENABLE":
		enable, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_COMPASS_ENABLE %q: %w", value, err)
		}
		c.IMUCompassEnable = enable
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 2 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-2 (0=±245°/s, 1=±500°/s, 2=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)
	case "IMU_MAG_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_MAG_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_MAG_RANGE must be 0-3 (0=±4, 1=±8, 2=±12, 3=±16 gauss), got %d", rangeVal)
		}
		c.IMUMagRange = byte(rangeVal)

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Timing
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_CONTENT":
		switch value {
		case "orientation", "environment", "gps":
			c.DisplayContent = value
		default:
			return fmt.Errorf("DISPLAY_CONTENT must be orientation, environment or gps, got %q", value)
		}

	// LED matrix
	case "SCREEN_SCROLL_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SCREEN_SCROLL_INTERVAL %q: %w", value, err)
		}
		c.ScreenScrollInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicPose == "" {
		return fmt.Errorf("TOPIC_POSE is required")
	}
	if c.TopicEnv == "" {
		return fmt.Errorf("TOPIC_ENV is required")
	}
	if c.IMUSampleInterval == 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Safe to
// call more than once; only the first call loads.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
