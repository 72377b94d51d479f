// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lsm9ds1 drives the ST LSM9DS1 inertial module on the
// Raspberry Pi Sense HAT: accelerometer and gyroscope on one die,
// magnetometer on another, each with its own I2C address.
package lsm9ds1

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"

	"github.com/relabs-tech/sensehat_computer/imu"
)

// Fixed Sense HAT I2C addresses.
const (
	AccelGyroAddr uint16 = 0x6a
	MagAddr       uint16 = 0x1c
)

// Accel/gyro die registers.
const (
	regWhoAmI     = 0x0f
	regCtrlReg1G  = 0x10
	regStatusReg  = 0x17
	regOutXG      = 0x18
	regCtrlReg6XL = 0x20
	regCtrlReg8   = 0x22
	regOutXXL     = 0x28

	whoAmIAG = 0x68
)

// Magnetometer die registers.
const (
	regWhoAmIM    = 0x0f
	regCtrlReg1M  = 0x20
	regCtrlReg2M  = 0x21
	regCtrlReg3M  = 0x22
	regCtrlReg4M  = 0x23
	regStatusRegM = 0x27
	regOutXLM     = 0x28

	whoAmIM = 0x3d

	// Reads of multi-byte mag output need the auto-increment bit in
	// the sub-address; the accel/gyro die auto-increments by default
	// (IF_ADD_INC in CTRL_REG8).
	autoIncrement = 0x80
)

// STATUS_REG data-ready bits (accel/gyro die).
const (
	statusAccelReady = 0x01
	statusGyroReady  = 0x02
)

// STATUS_REG_M: new XYZ mag data.
const statusMagReady = 0x08

// Opts selects the full-scale ranges. Indices follow the chip's FS
// fields: accel 0=±2g 1=±16g 2=±4g 3=±8g is collapsed here to the
// conventional 0..3 = ±2/±4/±8/±16g ordering used in the config file.
type Opts struct {
	AccelRange byte // 0=±2g, 1=±4g, 2=±8g, 3=±16g
	GyroRange  byte // 0=±245°/s, 1=±500°/s, 2=±2000°/s
	MagRange   byte // 0=±4 gauss, 1=±8, 2=±12, 3=±16
}

// DefaultOpts is the Sense HAT default: ±2g, ±245°/s, ±4 gauss.
var DefaultOpts = Opts{}

// Per-LSB sensitivities, indexed by range.
var (
	accelSensitivity = [4]float64{0.000061, 0.000122, 0.000244, 0.000732} // g/LSB
	gyroSensitivity  = [3]float64{0.00875, 0.0175, 0.070}                 // °/s per LSB
	magSensitivity   = [4]float64{0.014, 0.029, 0.043, 0.058}             // µT/LSB
)

// FS field encodings for CTRL_REG6_XL[4:3] and CTRL_REG1_G[4:3].
var (
	accelFS = [4]byte{0x00, 0x10, 0x18, 0x08}
	gyroFS  = [3]byte{0x00, 0x08, 0x18}
)

// Dev is a handle to an initialized LSM9DS1. It implements imu.Source.
type Dev struct {
	ag mmr.Dev8
	m  mmr.Dev8

	accelScale float64
	gyroScale  float64 // rad/s per LSB
	magScale   float64
}

// New initializes both dies at 119 Hz (accel/gyro) and 80 Hz
// (magnetometer, continuous conversion).
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.AccelRange > 3 {
		return nil, fmt.Errorf("lsm9ds1: accel range %d out of range 0-3", opts.AccelRange)
	}
	if opts.GyroRange > 2 {
		return nil, fmt.Errorf("lsm9ds1: gyro range %d out of range 0-2", opts.GyroRange)
	}
	if opts.MagRange > 3 {
		return nil, fmt.Errorf("lsm9ds1: mag range %d out of range 0-3", opts.MagRange)
	}

	d := &Dev{
		ag:         mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: AccelGyroAddr}, Order: binary.LittleEndian},
		m:          mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: MagAddr}, Order: binary.LittleEndian},
		accelScale: accelSensitivity[opts.AccelRange],
		gyroScale:  gyroSensitivity[opts.GyroRange] * (math.Pi / 180.0),
		magScale:   magSensitivity[opts.MagRange],
	}

	id, err := d.ag.ReadUint8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("lsm9ds1: read WHO_AM_I: %w", err)
	}
	if id != whoAmIAG {
		return nil, fmt.Errorf("lsm9ds1: unexpected WHO_AM_I 0x%02x (want 0x%02x)", id, whoAmIAG)
	}
	idM, err := d.m.ReadUint8(regWhoAmIM)
	if err != nil {
		return nil, fmt.Errorf("lsm9ds1: read WHO_AM_I_M: %w", err)
	}
	if idM != whoAmIM {
		return nil, fmt.Errorf("lsm9ds1: unexpected WHO_AM_I_M 0x%02x (want 0x%02x)", idM, whoAmIM)
	}

	// Gyro: ODR 119 Hz + full scale.
	if err := d.ag.WriteUint8(regCtrlReg1G, 0x60|gyroFS[opts.GyroRange]); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG1_G: %w", err)
	}
	// Accel: ODR 119 Hz + full scale.
	if err := d.ag.WriteUint8(regCtrlReg6XL, 0x60|accelFS[opts.AccelRange]); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG6_XL: %w", err)
	}
	// BDU + register auto-increment.
	if err := d.ag.WriteUint8(regCtrlReg8, 0x44); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG8: %w", err)
	}

	// Mag: ultra-high performance XY, 80 Hz.
	if err := d.m.WriteUint8(regCtrlReg1M, 0x7c); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG1_M: %w", err)
	}
	if err := d.m.WriteUint8(regCtrlReg2M, byte(opts.MagRange)<<5); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG2_M: %w", err)
	}
	// Continuous conversion.
	if err := d.m.WriteUint8(regCtrlReg3M, 0x00); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG3_M: %w", err)
	}
	// Ultra-high performance Z.
	if err := d.m.WriteUint8(regCtrlReg4M, 0x0c); err != nil {
		return nil, fmt.Errorf("lsm9ds1: write CTRL_REG4_M: %w", err)
	}
	return d, nil
}

// Poll implements imu.Source: it reads each requested channel whose
// data-ready flag is set and never waits for one that is not.
func (d *Dev) Poll(gyro, accel, compass bool) (imu.Sample, error) {
	s := imu.Sample{Time: time.Now()}

	if gyro || accel {
		status, err := d.ag.ReadUint8(regStatusReg)
		if err != nil {
			return imu.Sample{}, fmt.Errorf("lsm9ds1: read STATUS_REG: %w", err)
		}
		if gyro && status&statusGyroReady != 0 {
			raw, err := d.readVector(&d.ag, regOutXG)
			if err != nil {
				return imu.Sample{}, fmt.Errorf("lsm9ds1: read gyro: %w", err)
			}
			s.Gyro = scale(raw, d.gyroScale)
			s.GyroValid = true
		}
		if accel && status&statusAccelReady != 0 {
			raw, err := d.readVector(&d.ag, regOutXXL)
			if err != nil {
				return imu.Sample{}, fmt.Errorf("lsm9ds1: read accel: %w", err)
			}
			s.Accel = scale(raw, d.accelScale)
			s.AccelValid = true
		}
	}

	if compass {
		status, err := d.m.ReadUint8(regStatusRegM)
		if err != nil {
			return imu.Sample{}, fmt.Errorf("lsm9ds1: read STATUS_REG_M: %w", err)
		}
		if status&statusMagReady != 0 {
			raw, err := d.readVector(&d.m, regOutXLM|autoIncrement)
			if err != nil {
				return imu.Sample{}, fmt.Errorf("lsm9ds1: read mag: %w", err)
			}
			s.Compass = scale(raw, d.magScale)
			s.CompassValid = true
		}
	}
	return s, nil
}

func (d *Dev) readVector(dev *mmr.Dev8, reg uint8) ([3]int16, error) {
	var raw [3]int16
	if err := dev.ReadStruct(reg, &raw); err != nil {
		return raw, err
	}
	return raw, nil
}

func scale(raw [3]int16, k float64) imu.Vector3 {
	return imu.Vector3{
		X: float64(raw[0]) * k,
		Y: float64(raw[1]) * k,
		Z: float64(raw[2]) * k,
	}
}
