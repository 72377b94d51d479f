// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensehat exposes the sensors of the Raspberry Pi Sense HAT
// behind one handle: humidity and temperature (HTS221), pressure and
// temperature (LPS25H), and fused orientation from the LSM9DS1 IMU.
//
// The LED matrix lives in the screen package. The joystick is not
// supported.
package sensehat

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensehat_computer/hts221"
	"github.com/relabs-tech/sensehat_computer/imu"
	"github.com/relabs-tech/sensehat_computer/lps25h"
	"github.com/relabs-tech/sensehat_computer/lsm9ds1"
)

// ErrNotReady is returned when a sensor has not produced the requested
// quantity yet (stale status bit, or no fused pose so far).
var ErrNotReady = errors.New("sensehat: sensor data not ready")

// Orientation is a fused orientation estimate.
type Orientation struct {
	Roll  Angle `json:"roll"`
	Pitch Angle `json:"pitch"`
	Yaw   Angle `json:"yaw"`
}

// Vector3 is a raw 3-axis reading.
type Vector3 = imu.Vector3

// PressureSensor is the part of the LPS25H the hat needs.
type PressureSensor interface {
	Status() (uint8, error)
	Temperature() (float64, error)
	Pressure() (float64, error)
}

// HumiditySensor is the part of the HTS221 the hat needs.
type HumiditySensor interface {
	Status() (uint8, error)
	Temperature() (float64, error)
	Humidity() (float64, error)
}

// Motion is the fusion engine surface the hat drives: channel enables,
// one blocking poll-and-fuse cycle, and the resulting snapshot.
type Motion interface {
	SetSensors(gyro, accel, compass bool)
	Read() (bool, error)
	Data() imu.Data
}

// SenseHat is a handle to the board. It is not safe for concurrent
// use.
type SenseHat struct {
	pressure PressureSensor
	humidity HumiditySensor
	motion   Motion

	// Cached snapshot, in the same spirit as the original driver: a
	// failed poll falls back to the last good fusion pose.
	data imu.Data

	closer interface{ Close() error }
}

// New opens the I2C bus (busName "" picks the first one), initializes
// the three chips and the fusion engine, and returns a ready handle.
func New(busName string) (*SenseHat, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("sensehat: periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("sensehat: open I2C bus %q: %w", busName, err)
	}
	h, err := newOnBus(bus)
	if err != nil {
		bus.Close()
		return nil, err
	}
	h.closer = bus
	return h, nil
}

func newOnBus(bus i2c.Bus) (*SenseHat, error) {
	hum, err := hts221.New(bus)
	if err != nil {
		return nil, fmt.Errorf("sensehat: humidity chip: %w", err)
	}
	press, err := lps25h.New(bus)
	if err != nil {
		return nil, fmt.Errorf("sensehat: pressure chip: %w", err)
	}
	inertial, err := lsm9ds1.New(bus, nil)
	if err != nil {
		return nil, fmt.Errorf("sensehat: IMU chip: %w", err)
	}
	engine := imu.NewEngine(inertial, imu.Config{})
	return NewFromParts(press, hum, engine), nil
}

// NewFromParts assembles a SenseHat from already-initialized sensors.
// Mainly for tests and for callers that manage the bus themselves.
func NewFromParts(pressure PressureSensor, humidity HumiditySensor, motion Motion) *SenseHat {
	motion.SetSensors(true, true, true)
	return &SenseHat{pressure: pressure, humidity: humidity, motion: motion}
}

// Close releases the underlying bus if New opened it.
func (s *SenseHat) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// SetSensors enables or disables the IMU channels feeding the fusion.
// The change takes effect on the next read cycle.
func (s *SenseHat) SetSensors(gyro, accel, compass bool) {
	s.motion.SetSensors(gyro, accel, compass)
}

// Update runs one blocking poll-and-fuse cycle with the current
// channel enables and, when the cycle produced data, refreshes the
// cached snapshot. It reports whether fresh data arrived.
func (s *SenseHat) Update() (bool, error) {
	ok, err := s.motion.Read()
	if err != nil {
		return false, err
	}
	if ok {
		s.data = s.motion.Data()
	}
	return ok, nil
}

// Orientation returns the fused orientation using all three channels.
// The snapshot is cached: when a poll comes back empty the previous
// pose is reused.
func (s *SenseHat) Orientation() (Orientation, error) {
	s.motion.SetSensors(true, true, true)
	ok, err := s.motion.Read()
	if err != nil {
		return Orientation{}, err
	}
	if ok {
		s.data = s.motion.Data()
	}
	if !s.data.FusionPoseValid {
		return Orientation{}, ErrNotReady
	}
	return poseToOrientation(s.data.FusionPose), nil
}

// Compass returns the magnetic heading using the magnetometer alone.
// The result is never cached.
func (s *SenseHat) Compass() (Angle, error) {
	s.motion.SetSensors(false, false, true)
	ok, err := s.motion.Read()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotReady
	}
	d := s.motion.Data()
	if !d.FusionPoseValid {
		return 0, ErrNotReady
	}
	return Angle(d.FusionPose.Z), nil
}

// GyroOrientation returns the orientation using only the gyroscope.
func (s *SenseHat) GyroOrientation() (Orientation, error) {
	return s.singleChannelOrientation(true, false, false)
}

// AccelOrientation returns the orientation using only the
// accelerometer.
func (s *SenseHat) AccelOrientation() (Orientation, error) {
	return s.singleChannelOrientation(false, true, false)
}

func (s *SenseHat) singleChannelOrientation(gyro, accel, compass bool) (Orientation, error) {
	s.motion.SetSensors(gyro, accel, compass)
	ok, err := s.motion.Read()
	if err != nil {
		return Orientation{}, err
	}
	if !ok {
		return Orientation{}, ErrNotReady
	}
	d := s.motion.Data()
	if !d.FusionPoseValid {
		return Orientation{}, ErrNotReady
	}
	return poseToOrientation(d.FusionPose), nil
}

// AccelRaw returns the current acceleration in g. The snapshot is
// cached like Orientation's.
func (s *SenseHat) AccelRaw() (Vector3, error) {
	s.motion.SetSensors(false, true, false)
	ok, err := s.motion.Read()
	if err != nil {
		return Vector3{}, err
	}
	if ok {
		s.data = s.motion.Data()
	}
	if !s.data.AccelValid {
		return Vector3{}, ErrNotReady
	}
	return s.data.Accel, nil
}

// Humidity returns the relative humidity in percent.
func (s *SenseHat) Humidity() (RelativeHumidity, error) {
	status, err := s.humidity.Status()
	if err != nil {
		return 0, err
	}
	if status&hts221.StatusHumidityReady == 0 {
		return 0, ErrNotReady
	}
	v, err := s.humidity.Humidity()
	if err != nil {
		return 0, err
	}
	return RelativeHumidity(v), nil
}

// TemperatureFromHumidity returns the temperature measured by the
// humidity chip: more accurate than the barometer (±0.5°C) over a
// narrower range.
func (s *SenseHat) TemperatureFromHumidity() (Temperature, error) {
	status, err := s.humidity.Status()
	if err != nil {
		return 0, err
	}
	if status&hts221.StatusTemperatureReady == 0 {
		return 0, ErrNotReady
	}
	v, err := s.humidity.Temperature()
	if err != nil {
		return 0, err
	}
	return Temperature(v), nil
}

// Pressure returns the barometric pressure.
func (s *SenseHat) Pressure() (Pressure, error) {
	status, err := s.pressure.Status()
	if err != nil {
		return 0, err
	}
	if status&lps25h.StatusPressureReady == 0 {
		return 0, ErrNotReady
	}
	v, err := s.pressure.Pressure()
	if err != nil {
		return 0, err
	}
	return Pressure(v), nil
}

// TemperatureFromPressure returns the temperature measured by the
// barometer: less accurate than the humidity chip (±2°C) but over a
// wider range.
func (s *SenseHat) TemperatureFromPressure() (Temperature, error) {
	status, err := s.pressure.Status()
	if err != nil {
		return 0, err
	}
	if status&lps25h.StatusTemperatureReady == 0 {
		return 0, ErrNotReady
	}
	v, err := s.pressure.Temperature()
	if err != nil {
		return 0, err
	}
	return Temperature(v), nil
}

// Data returns the full snapshot: the cached inertial state overlaid
// with whatever the environment chips have ready right now. Fields the
// chips could not provide keep their validity flags clear.
func (s *SenseHat) Data() imu.Data {
	d := s.data

	if status, err := s.pressure.Status(); err == nil {
		if status&lps25h.StatusPressureReady != 0 {
			if v, err := s.pressure.Pressure(); err == nil {
				d.Pressure = v
				d.PressureValid = true
			}
		}
		if status&lps25h.StatusTemperatureReady != 0 {
			if v, err := s.pressure.Temperature(); err == nil {
				d.Temperature = v
				d.TemperatureValid = true
			}
		}
	}
	if status, err := s.humidity.Status(); err == nil {
		if status&hts221.StatusHumidityReady != 0 {
			if v, err := s.humidity.Humidity(); err == nil {
				d.Humidity = v
				d.HumidityValid = true
			}
		}
		// The humidity chip's temperature is the more accurate of the
		// two, so it wins over the barometer's when both are fresh.
		if status&hts221.StatusTemperatureReady != 0 {
			if v, err := s.humidity.Temperature(); err == nil {
				d.Temperature = v
				d.TemperatureValid = true
			}
		}
	}
	return d
}

func poseToOrientation(p imu.Vector3) Orientation {
	return Orientation{
		Roll:  Angle(p.X),
		Pitch: Angle(p.Y),
		Yaw:   Angle(p.Z),
	}
}
