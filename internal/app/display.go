package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/internal/env"
	"github.com/relabs-tech/sensehat_computer/internal/gps"
	"github.com/relabs-tech/sensehat_computer/internal/orientation"
)

// displayData holds the latest data for the OLED page.
type displayData struct {
	mu sync.RWMutex

	pose     orientation.Pose
	havePose bool

	sample  env.Sample
	haveEnv bool

	fix     gps.Fix
	haveGPS bool
}

// RunDisplay drives an external SSD1306 status display showing one of
// the configured pages (orientation, environment or GPS) fed from
// MQTT.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized, content %q", cfg.DisplayContent)

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeForContent(client, cfg, data); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		if err := updateDisplay(dev, cfg.DisplayContent, data); err != nil {
			log.Printf("display: update error: %v", err)
		}
	}
	return nil
}

func subscribeForContent(client mqtt.Client, cfg *config.Config, data *displayData) error {
	switch cfg.DisplayContent {
	case "orientation":
		token := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p orientation.Pose
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("display: pose unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.pose = p
			data.havePose = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicPose)

	case "environment":
		token := client.Subscribe(cfg.TopicEnv, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var e env.Sample
			if err := json.Unmarshal(msg.Payload(), &e); err != nil {
				log.Printf("display: env unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.sample = e
			data.haveEnv = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicEnv)

	case "gps":
		token := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var f gps.Fix
			if err := json.Unmarshal(msg.Payload(), &f); err != nil {
				log.Printf("display: gps unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			data.fix = f
			data.haveGPS = true
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", cfg.TopicGPS)

	default:
		return fmt.Errorf("unknown display content type: %s", cfg.DisplayContent)
	}
	return nil
}

func updateDisplay(dev *ssd1306.Dev, content string, data *displayData) error {
	data.mu.RLock()
	pose, havePose := data.pose, data.havePose
	sample, haveEnv := data.sample, data.haveEnv
	fix, haveGPS := data.fix, data.haveGPS
	data.mu.RUnlock()

	switch content {
	case "orientation":
		if !havePose {
			return drawLines(dev, "Orientation", "Waiting...")
		}
		return drawLines(dev,
			fmt.Sprintf("R: %6.1f", pose.Roll),
			fmt.Sprintf("P: %6.1f", pose.Pitch),
			fmt.Sprintf("Y: %6.1f", pose.Yaw),
		)
	case "environment":
		if !haveEnv {
			return drawLines(dev, "Environment", "Waiting...")
		}
		return drawLines(dev,
			fmt.Sprintf("T: %5.1f C", sample.Temperature),
			fmt.Sprintf("P: %6.1f hPa", sample.Pressure),
			fmt.Sprintf("H: %5.1f %%", sample.Humidity),
		)
	case "gps":
		if !haveGPS {
			return drawLines(dev, "GPS", "Waiting...")
		}
		latDir, lat := "N", fix.Latitude
		if lat < 0 {
			latDir, lat = "S", -lat
		}
		lonDir, lon := "E", fix.Longitude
		if lon < 0 {
			lonDir, lon = "W", -lon
		}
		return drawLines(dev,
			fmt.Sprintf("%.4f%s", lat, latDir),
			fmt.Sprintf("%.4f%s", lon, lonDir),
			fmt.Sprintf("Alt: %.0fm", fix.Altitude),
		)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

// drawLines renders up to four text lines on the OLED.
func drawLines(dev *ssd1306.Dev, lines ...string) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}

	y := 13
	for _, line := range lines {
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
		y += 13
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	return drawLines(dev, "Sense HAT", "status display")
}
