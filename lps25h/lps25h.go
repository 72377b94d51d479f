// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lps25h drives the ST LPS25H barometric pressure and
// temperature sensor on the Raspberry Pi Sense HAT. The init sequence
// follows RTIMULib (https://github.com/RPi-Distro/RTIMULib).
package lps25h

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Addr is the fixed I2C address of the LPS25H on the Sense HAT.
const Addr uint16 = 0x5c

const (
	regWhoAmI     = 0x0f
	regResConf    = 0x10
	regCtrlReg1   = 0x20
	regCtrlReg2   = 0x21
	regStatusReg  = 0x27
	regPressOutXL = 0x28
	regPressOutL  = 0x29
	regPressOutH  = 0x2a
	regTempOutL   = 0x2b
	regTempOutH   = 0x2c
	regFifoCtrl   = 0x2e

	whoAmI = 0xbd
)

// Status register bits.
const (
	StatusTemperatureReady = 0x01
	StatusPressureReady    = 0x02
)

// Dev is a handle to an initialized LPS25H.
type Dev struct {
	mmr mmr.Dev8
}

// New initializes the LPS25H: continuous 25 Hz output, FIFO mean mode
// over 32 samples.
func New(bus i2c.Bus) (*Dev, error) {
	d := &Dev{mmr: mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: Addr}, Order: binary.LittleEndian}}

	id, err := d.mmr.ReadUint8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("lps25h: read WHO_AM_I: %w", err)
	}
	if id != whoAmI {
		return nil, fmt.Errorf("lps25h: unexpected WHO_AM_I 0x%02x (want 0x%02x)", id, whoAmI)
	}

	if err := d.mmr.WriteUint8(regCtrlReg1, 0xc4); err != nil {
		return nil, fmt.Errorf("lps25h: write CTRL_REG1: %w", err)
	}
	if err := d.mmr.WriteUint8(regResConf, 0x05); err != nil {
		return nil, fmt.Errorf("lps25h: write RES_CONF: %w", err)
	}
	if err := d.mmr.WriteUint8(regFifoCtrl, 0xc0); err != nil {
		return nil, fmt.Errorf("lps25h: write FIFO_CTRL: %w", err)
	}
	if err := d.mmr.WriteUint8(regCtrlReg2, 0x40); err != nil {
		return nil, fmt.Errorf("lps25h: write CTRL_REG2: %w", err)
	}
	return d, nil
}

// Status returns the STATUS_REG bitfield (data-ready flags).
func (d *Dev) Status() (uint8, error) {
	s, err := d.mmr.ReadUint8(regStatusReg)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read STATUS_REG: %w", err)
	}
	return s, nil
}

// Temperature returns the temperature in degrees Celsius:
// T(degC) = 42.5 + TEMP_OUT/480.
func (d *Dev) Temperature() (float64, error) {
	lo, err := d.mmr.ReadUint8(regTempOutL)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read TEMP_OUT_L: %w", err)
	}
	hi, err := d.mmr.ReadUint8(regTempOutH)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read TEMP_OUT_H: %w", err)
	}
	raw := int16(uint16(lo) | uint16(hi)<<8)
	return float64(raw)/480.0 + 42.5, nil
}

// Pressure returns the pressure in hectopascals:
// P(hPa) = PRESS_OUT/4096.
func (d *Dev) Pressure() (float64, error) {
	xl, err := d.mmr.ReadUint8(regPressOutXL)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read PRESS_OUT_XL: %w", err)
	}
	lo, err := d.mmr.ReadUint8(regPressOutL)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read PRESS_OUT_L: %w", err)
	}
	hi, err := d.mmr.ReadUint8(regPressOutH)
	if err != nil {
		return 0, fmt.Errorf("lps25h: read PRESS_OUT_H: %w", err)
	}
	raw := uint32(xl) | uint32(lo)<<8 | uint32(hi)<<16
	return float64(raw) / 4096.0, nil
}
