package app

import (
	"encoding/binary"
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensehat_computer/hts221"
	"github.com/relabs-tech/sensehat_computer/internal/config"
	"github.com/relabs-tech/sensehat_computer/lps25h"
	"github.com/relabs-tech/sensehat_computer/lsm9ds1"
)

// chipRange names one register window to dump.
type chipRange struct {
	name  string
	addr  uint16
	first uint8
	last  uint8
}

// The interesting windows of each Sense HAT chip: control, status and
// output registers. Reserved gaps are dumped too; they read as zero.
var dumpRanges = []chipRange{
	{"hts221", hts221.Addr, 0x0f, 0x3f},
	{"lps25h", lps25h.Addr, 0x0f, 0x2e},
	{"lsm9ds1-ag", lsm9ds1.AccelGyroAddr, 0x0f, 0x37},
	{"lsm9ds1-mag", lsm9ds1.MagAddr, 0x0f, 0x33},
}

// RunRegisterDump prints a hex dump of every Sense HAT chip register.
// Debug tool for comparing chip state against the datasheets when a
// reading looks off.
func RunRegisterDump() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open I2C bus %q: %w", cfg.I2CBus, err)
	}
	defer bus.Close()

	for _, r := range dumpRanges {
		dev := mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: r.addr}, Order: binary.LittleEndian}

		fmt.Printf("\n%s (0x%02x), registers 0x%02x-0x%02x:\n", r.name, r.addr, r.first, r.last)
		for reg := r.first; reg <= r.last; reg++ {
			v, err := dev.ReadUint8(reg)
			if err != nil {
				log.Printf("register_dump: %s reg 0x%02x: %v", r.name, reg, err)
				continue
			}
			fmt.Printf("  0x%02x = 0x%02x\n", reg, v)
		}
	}
	return nil
}
