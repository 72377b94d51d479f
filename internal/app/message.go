package app

import (
	"log"
	"time"

	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/screen"
)

// RunMessage scrolls text across the LED matrix once and clears it.
func RunMessage(text string) error {
	cfg := config.Get()

	scr, err := screen.Open(cfg.FBDevice)
	if err != nil {
		return err
	}
	defer scr.Close()

	log.Printf("message: scrolling %q", text)
	step := time.Duration(cfg.ScreenScrollInterval) * time.Millisecond
	return scr.ScrollMessage(text, screen.White, screen.Black, step)
}
