// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/sensehat_computer/internal/app"
	"github.com/relabs-tech/sensehat_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./sensehat_config.txt", "path to configuration file")
	text := flag.String("text", "Hello from the Sense HAT!", "message to scroll on the LED matrix")
	flag.Parse()

	log.Println("starting sensehat-computer message scroller (text → LED matrix)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMessage(*text); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
