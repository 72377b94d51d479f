package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/sensehat_computer/imu"
	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/internal/env"
	"github.com/relabs-tech/sensehat_computer/internal/gps"
	"github.com/relabs-tech/sensehat_computer/internal/orientation"
)

// printThrottle rate-limits console lines on the high-rate topics so
// the terminal stays readable at IMU sample rates. The paho client
// runs callbacks in order on one goroutine, so no locking is needed.
type printThrottle struct {
	interval time.Duration
	last     time.Time
}

func (p *printThrottle) allow(now time.Time) bool {
	if p.interval <= 0 || p.last.IsZero() || now.Sub(p.last) >= p.interval {
		p.last = now
		return true
	}
	return false
}

// RunConsoleMQTT subscribes to the hat topics and prints each as a
// one-line summary, at most one line per topic every
// CONSOLE_LOG_INTERVAL milliseconds.
func RunConsoleMQTT() error {
	cfg := config.Get()

	interval := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	poseThrottle := &printThrottle{interval: interval}
	imuThrottle := &printThrottle{interval: interval}
	envThrottle := &printThrottle{interval: interval}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Pose
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		if !poseThrottle.allow(time.Now()) {
			return
		}

		fmt.Printf(
			"[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f\n",
			p.Roll, p.Pitch, p.Yaw,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Full IMU snapshot
	if cfg.TopicIMU != "" {
		imuToken := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var d imu.Data
			if err := json.Unmarshal(msg.Payload(), &d); err != nil {
				log.Printf("console: imu unmarshal error: %v", err)
				return
			}
			if !imuThrottle.allow(time.Now()) {
				return
			}

			fmt.Printf(
				"[IMU ]  accel=%7.3f %7.3f %7.3f g  gyro=%7.3f %7.3f %7.3f rad/s  mag=%7.1f %7.1f %7.1f µT\n",
				d.Accel.X, d.Accel.Y, d.Accel.Z,
				d.Gyro.X, d.Gyro.Y, d.Gyro.Z,
				d.Compass.X, d.Compass.Y, d.Compass.Z,
			)
		})
		imuToken.Wait()
		if imuToken.Error() != nil {
			return imuToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicIMU)
	}

	// Environment
	envToken := client.Subscribe(cfg.TopicEnv, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s env.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: env unmarshal error: %v", err)
			return
		}
		if !envThrottle.allow(time.Now()) {
			return
		}

		fmt.Printf(
			"[ENV ]  T=%5.1f°C  P=%7.1fhPa  H=%5.1f%%\n",
			s.Temperature, s.Pressure, s.Humidity,
		)
	})
	envToken.Wait()
	if envToken.Error() != nil {
		return envToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEnv)

	// GPS
	if cfg.TopicGPS != "" {
		gpsToken := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var f gps.Fix
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("console: gps unmarshal error: %v", err)
				return
			}

			fmt.Printf(
				"[GPS ]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° validity=%s\n",
				f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Validity,
			)
		})
		gpsToken.Wait()
		if gpsToken.Error() != nil {
			return gpsToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicGPS)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
