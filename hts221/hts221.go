// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package hts221 drives the ST HTS221 humidity and temperature sensor
// found on the Raspberry Pi Sense HAT.
//
// The chip stores a factory calibration in registers 0x30..0x3f; raw
// readings are converted through the two-point line defined there. The
// init sequence follows RTIMULib (https://github.com/RPi-Distro/RTIMULib).
package hts221

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Addr is the fixed I2C address of the HTS221 on the Sense HAT.
const Addr uint16 = 0x5f

const (
	regWhoAmI       = 0x0f
	regAvConf       = 0x10
	regCtrl1        = 0x20
	regStatus       = 0x27
	regHumidityOutL = 0x28
	regHumidityOutH = 0x29
	regTempOutL     = 0x2a
	regTempOutH     = 0x2b
	regH0rH2        = 0x30
	regH1rH2        = 0x31
	regT0degC8      = 0x32
	regT1degC8      = 0x33
	regT1T0msb      = 0x35
	regH0T0Out      = 0x36
	regH1T0Out      = 0x3a
	regT0Out        = 0x3c
	regT1Out        = 0x3e

	whoAmI = 0xbc
)

// Status register bits.
const (
	StatusTemperatureReady = 0x01
	StatusHumidityReady    = 0x02
)

// Dev is a handle to an initialized HTS221.
type Dev struct {
	mmr mmr.Dev8

	// Calibration lines: reading = raw*m + c.
	tempM float64
	tempC float64
	humM  float64
	humC  float64
}

// New initializes the HTS221 on the given bus, powers it up at 12.5 Hz
// output with averaging, and reads the factory calibration.
func New(bus i2c.Bus) (*Dev, error) {
	d := &Dev{mmr: mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: Addr}, Order: binary.LittleEndian}}

	id, err := d.mmr.ReadUint8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("hts221: read WHO_AM_I: %w", err)
	}
	if id != whoAmI {
		return nil, fmt.Errorf("hts221: unexpected WHO_AM_I 0x%02x (want 0x%02x)", id, whoAmI)
	}

	// PD=1, BDU=1, ODR=12.5Hz; AV_CONF per RTIMULib.
	if err := d.mmr.WriteUint8(regCtrl1, 0x87); err != nil {
		return nil, fmt.Errorf("hts221: write CTRL_REG1: %w", err)
	}
	if err := d.mmr.WriteUint8(regAvConf, 0x1b); err != nil {
		return nil, fmt.Errorf("hts221: write AV_CONF: %w", err)
	}

	if err := d.readCalibration(); err != nil {
		return nil, err
	}
	return d, nil
}

// readCalibration builds the temperature and humidity conversion lines
// from the factory calibration registers.
func (d *Dev) readCalibration() error {
	msb, err := d.mmr.ReadUint8(regT1T0msb)
	if err != nil {
		return fmt.Errorf("hts221: read T1/T0 msb: %w", err)
	}

	t0c8, err := d.mmr.ReadUint8(regT0degC8)
	if err != nil {
		return fmt.Errorf("hts221: read T0_degC_x8: %w", err)
	}
	t1c8, err := d.mmr.ReadUint8(regT1degC8)
	if err != nil {
		return fmt.Errorf("hts221: read T1_degC_x8: %w", err)
	}
	// 10-bit values: top two bits live in regT1T0msb.
	t0 := float64(int16(uint16(t0c8)|uint16(msb&0x03)<<8)) / 8.0
	t1 := float64(int16(uint16(t1c8)|uint16(msb&0x0c)<<6)) / 8.0

	t0out, err := d.readS16(regT0Out)
	if err != nil {
		return fmt.Errorf("hts221: read T0_OUT: %w", err)
	}
	t1out, err := d.readS16(regT1Out)
	if err != nil {
		return fmt.Errorf("hts221: read T1_OUT: %w", err)
	}

	h0rh2, err := d.mmr.ReadUint8(regH0rH2)
	if err != nil {
		return fmt.Errorf("hts221: read H0_rH_x2: %w", err)
	}
	h1rh2, err := d.mmr.ReadUint8(regH1rH2)
	if err != nil {
		return fmt.Errorf("hts221: read H1_rH_x2: %w", err)
	}
	h0 := float64(h0rh2) / 2.0
	h1 := float64(h1rh2) / 2.0

	h0out, err := d.readS16(regH0T0Out)
	if err != nil {
		return fmt.Errorf("hts221: read H0_T0_OUT: %w", err)
	}
	h1out, err := d.readS16(regH1T0Out)
	if err != nil {
		return fmt.Errorf("hts221: read H1_T0_OUT: %w", err)
	}

	d.tempM = (t1 - t0) / (float64(t1out) - float64(t0out))
	d.tempC = t0 - d.tempM*float64(t0out)
	d.humM = (h1 - h0) / (float64(h1out) - float64(h0out))
	d.humC = h0 - d.humM*float64(h0out)
	return nil
}

// readS16 reads a signed 16-bit little-endian value one byte at a time.
// Byte-wise reads avoid depending on the auto-increment sub-address bit.
func (d *Dev) readS16(reg uint8) (int16, error) {
	lo, err := d.mmr.ReadUint8(reg)
	if err != nil {
		return 0, err
	}
	hi, err := d.mmr.ReadUint8(reg + 1)
	if err != nil {
		return 0, err
	}
	return int16(uint16(lo) | uint16(hi)<<8), nil
}

// Status returns the STATUS_REG bitfield (data-ready flags).
func (d *Dev) Status() (uint8, error) {
	s, err := d.mmr.ReadUint8(regStatus)
	if err != nil {
		return 0, fmt.Errorf("hts221: read STATUS_REG: %w", err)
	}
	return s, nil
}

// Humidity returns the relative humidity in percent.
func (d *Dev) Humidity() (float64, error) {
	raw, err := d.readRawPair(regHumidityOutL, regHumidityOutH)
	if err != nil {
		return 0, fmt.Errorf("hts221: read humidity: %w", err)
	}
	return float64(raw)*d.humM + d.humC, nil
}

// Temperature returns the temperature in degrees Celsius.
func (d *Dev) Temperature() (float64, error) {
	raw, err := d.readRawPair(regTempOutL, regTempOutH)
	if err != nil {
		return 0, fmt.Errorf("hts221: read temperature: %w", err)
	}
	return float64(raw)*d.tempM + d.tempC, nil
}

func (d *Dev) readRawPair(regL, regH uint8) (int16, error) {
	lo, err := d.mmr.ReadUint8(regL)
	if err != nil {
		return 0, err
	}
	hi, err := d.mmr.ReadUint8(regH)
	if err != nil {
		return 0, err
	}
	return int16(uint16(lo) | uint16(hi)<<8), nil
}
