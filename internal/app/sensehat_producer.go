// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	sensehat "github.com/relabs-tech/sensehat_computer"
	"github.com/relabs-tech/sensehat_computer/hts221"
	"github.com/relabs-tech/sensehat_computer/imu"
	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/internal/env"
	"github.com/relabs-tech/sensehat_computer/internal/orientation"
	"github.com/relabs-tech/sensehat_computer/lps25h"
	"github.com/relabs-tech/sensehat_computer/lsm9ds1"
)

// newHatFromConfig builds a SenseHat with the configured ranges and
// fusion tuning instead of the package defaults.
func newHatFromConfig(cfg *config.Config) (*sensehat.SenseHat, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", cfg.I2CBus, err)
	}

	inertial, err := lsm9ds1.New(bus, &lsm9ds1.Opts{
		AccelRange: cfg.IMUAccelRange,
		GyroRange:  cfg.IMUGyroRange,
		MagRange:   cfg.IMUMagRange,
	})
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("IMU chip: %w", err)
	}
	engine := imu.NewEngine(inertial, imu.Config{SlerpPower: cfg.SlerpPower})
	log.Printf("producer: IMU ranges accel=%d gyro=%d mag=%d, slerp power %.3f",
		cfg.IMUAccelRange, cfg.IMUGyroRange, cfg.IMUMagRange, cfg.SlerpPower)

	hum, err := hts221.New(bus)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("humidity chip: %w", err)
	}
	press, err := lps25h.New(bus)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("pressure chip: %w", err)
	}

	return sensehat.NewFromParts(press, hum, engine), nil
}

func poseDegrees(v imu.Vector3) orientation.Pose {
	return orientation.Pose{
		Roll:  v.X * 180.0 / math.Pi,
		Pitch: v.Y * 180.0 / math.Pi,
		Yaw:   v.Z * 180.0 / math.Pi,
	}
}

// RunSenseHatProducer polls the hat at the configured interval and
// publishes pose, full IMU snapshot and environment sample to MQTT.
func RunSenseHatProducer() error {
	log.Println("starting Sense HAT producer")

	cfg := config.Get()

	hat, err := newHatFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("sense hat init: %w", err)
	}

	hat.SetSensors(cfg.IMUGyroEnable, cfg.IMUAccelEnable, cfg.IMUCompassEnable)
	log.Printf("producer: channels gyro=%v accel=%v compass=%v",
		cfg.IMUGyroEnable, cfg.IMUAccelEnable, cfg.IMUCompassEnable)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Println("producer: connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		fresh, err := hat.Update()
		if err != nil {
			log.Printf("producer: read cycle error: %v", err)
			continue
		}
		if !fresh {
			log.Println("producer: no fresh IMU data this tick")
		}

		d := hat.Data()
		pose := poseDegrees(d.FusionPose)

		// 1) Pose
		if d.FusionPoseValid {
			if payload, err := json.Marshal(pose); err != nil {
				log.Printf("producer: pose marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("producer: MQTT publish error (pose): %v", token.Error())
			}
		}

		// 2) Full IMU snapshot
		if cfg.TopicIMU != "" {
			if payload, err := json.Marshal(d); err != nil {
				log.Printf("producer: snapshot marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("producer: MQTT publish error (imu): %v", token.Error())
			}
		}

		// 3) Environment
		sample := env.Sample{
			Temperature:      d.Temperature,
			TemperatureValid: d.TemperatureValid,
			Pressure:         d.Pressure,
			PressureValid:    d.PressureValid,
			Humidity:         d.Humidity,
			HumidityValid:    d.HumidityValid,
		}
		if payload, err := json.Marshal(sample); err != nil {
			log.Printf("producer: env marshal error: %v", err)
		} else if token := client.Publish(cfg.TopicEnv, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: MQTT publish error (env): %v", token.Error())
		}

		log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel %.3fg %.3fg %.3fg | T=%.1f°C P=%.1fhPa H=%.1f%%",
			t.Format(time.RFC3339),
			pose.Roll, pose.Pitch, pose.Yaw,
			d.Accel.X, d.Accel.Y, d.Accel.Z,
			d.Temperature, d.Pressure, d.Humidity,
		)
	}
	return nil
}
