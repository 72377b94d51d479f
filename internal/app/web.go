package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/internal/env"
	"github.com/relabs-tech/sensehat_computer/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard, any origin is fine
	},
}

// webState holds the latest messages seen on the bus.
type webState struct {
	mu       sync.RWMutex
	pose     orientation.Pose
	havePose bool
	sample   env.Sample
	haveEnv  bool
}

func (s *webState) setPose(p orientation.Pose) {
	s.mu.Lock()
	s.pose = p
	s.havePose = true
	s.mu.Unlock()
}

func (s *webState) setEnv(e env.Sample) {
	s.mu.Lock()
	s.sample = e
	s.haveEnv = true
	s.mu.Unlock()
}

// RunWeb serves the dashboard: JSON endpoints for the latest pose and
// environment sample, a websocket pose stream, and static files from
// ./web.
func RunWeb() error {
	cfg := config.Get()
	state := &webState{}

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to pose and env topics
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		state.setPose(p)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicPose)

	envToken := client.Subscribe(cfg.TopicEnv, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e env.Sample
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("web: env unmarshal error: %v", err)
			return
		}
		state.setEnv(e)
	})
	envToken.Wait()
	if envToken.Error() != nil {
		return envToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicEnv)

	// 3) JSON API endpoints
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.pose); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/environment", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.haveEnv {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.sample); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket pose stream
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		go streamPoses(conn, state)
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// streamPoses pushes the latest pose to one websocket client until the
// connection drops.
func streamPoses(conn *websocket.Conn, state *webState) {
	defer conn.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		state.mu.RLock()
		pose := state.pose
		have := state.havePose
		state.mu.RUnlock()

		if !have {
			continue
		}
		if err := conn.WriteJSON(pose); err != nil {
			log.Printf("web: websocket write error: %v", err)
			return
		}
	}
}
