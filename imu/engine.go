// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"
)

// DefaultSlerpPower matches the blend weight the Sense HAT has always
// shipped with: new absolute references pull the integrated pose by 2%
// per sample.
const DefaultSlerpPower = 0.02

// Config tunes an Engine. Zero values fall back to defaults.
type Config struct {
	// SlerpPower is the blend weight for absolute references
	// (accelerometer tilt, compass heading) against the
	// gyro-integrated prior. 0 < SlerpPower <= 1.
	SlerpPower float64

	// PollInterval is the sleep between data-ready polls.
	PollInterval time.Duration

	// Timeout bounds one blocking Read cycle.
	Timeout time.Duration
}

// Engine turns raw samples from a Source into fused orientation
// snapshots. It is not safe for concurrent use; drive it from a single
// goroutine, the way the producers do.
type Engine struct {
	src Source

	slerpPower    float64
	pollInterval  time.Duration
	timeout       time.Duration
	gyroEnable    bool
	accelEnable   bool
	compassEnable bool

	havePose   bool
	pose       Vector3
	lastSample time.Time
	data       Data
}

// NewEngine creates a fusion engine over src with all three channels
// enabled.
func NewEngine(src Source, cfg Config) *Engine {
	if cfg.SlerpPower <= 0 || cfg.SlerpPower > 1 {
		cfg.SlerpPower = DefaultSlerpPower
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 100 * time.Millisecond
	}
	return &Engine{
		src:           src,
		slerpPower:    cfg.SlerpPower,
		pollInterval:  cfg.PollInterval,
		timeout:       cfg.Timeout,
		gyroEnable:    true,
		accelEnable:   true,
		compassEnable: true,
	}
}

// SetGyroEnable controls whether the gyroscope feeds the fusion.
func (e *Engine) SetGyroEnable(enable bool) { e.gyroEnable = enable }

// SetAccelEnable controls whether the accelerometer feeds the fusion.
func (e *Engine) SetAccelEnable(enable bool) { e.accelEnable = enable }

// SetCompassEnable controls whether the magnetometer feeds the fusion.
func (e *Engine) SetCompassEnable(enable bool) { e.compassEnable = enable }

// SetSensors sets all three channel enables at once.
func (e *Engine) SetSensors(gyro, accel, compass bool) {
	e.gyroEnable = gyro
	e.accelEnable = accel
	e.compassEnable = compass
}

// SetSlerpPower changes the absolute-reference blend weight. Takes
// effect on the next Read.
func (e *Engine) SetSlerpPower(power float64) error {
	if power <= 0 || power > 1 {
		return fmt.Errorf("imu: slerp power %v out of range (0, 1]", power)
	}
	e.slerpPower = power
	return nil
}

// Read runs one blocking poll-and-fuse cycle: it polls the source until
// at least one enabled channel has fresh data, fuses the sample into
// the pose, and updates the snapshot. It returns false when no data
// arrived before the timeout, or when every channel is disabled.
func (e *Engine) Read() (bool, error) {
	if !e.gyroEnable && !e.accelEnable && !e.compassEnable {
		return false, nil
	}
	deadline := time.Now().Add(e.timeout)
	for {
		s, err := e.src.Poll(e.gyroEnable, e.accelEnable, e.compassEnable)
		if err != nil {
			return false, fmt.Errorf("imu: poll: %w", err)
		}
		if s.GyroValid || s.AccelValid || s.CompassValid {
			e.fuse(s)
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(e.pollInterval)
	}
}

// Data returns a copy of the latest snapshot. Environment fields are
// always invalid here; the sensehat package overlays them.
func (e *Engine) Data() Data {
	return e.data
}

func (e *Engine) fuse(s Sample) {
	var dt float64
	if !e.lastSample.IsZero() && s.Time.After(e.lastSample) {
		dt = s.Time.Sub(e.lastSample).Seconds()
	}
	e.lastSample = s.Time

	pose := e.pose

	// Integrate the gyro prior.
	if s.GyroValid && e.havePose && dt > 0 {
		pose.X = wrapPi(pose.X + s.Gyro.X*dt)
		pose.Y = wrapPi(pose.Y + s.Gyro.Y*dt)
		pose.Z = wrapPi(pose.Z + s.Gyro.Z*dt)
	}

	// Pull toward the absolute references. Without a usable prior the
	// references are taken wholesale.
	blend := e.slerpPower
	haveGyroPrior := s.GyroValid && e.havePose

	if s.AccelValid {
		roll, pitch := TiltFromAccel(s.Accel)
		if haveGyroPrior {
			pose.X = blendAngle(pose.X, roll, blend)
			pose.Y = blendAngle(pose.Y, pitch, blend)
		} else {
			pose.X = roll
			pose.Y = pitch
		}
	}

	if s.CompassValid {
		yaw := HeadingFromCompass(s.Compass, pose.X, pose.Y)
		if haveGyroPrior {
			pose.Z = blendAngle(pose.Z, yaw, blend)
		} else {
			pose.Z = yaw
		}
	}

	e.pose = pose
	e.havePose = true

	e.data = Data{
		Timestamp:       s.Time,
		FusionPoseValid: true,
		FusionPose:      pose,
		GyroValid:       s.GyroValid,
		Gyro:            s.Gyro,
		AccelValid:      s.AccelValid,
		Accel:           s.Accel,
		CompassValid:    s.CompassValid,
		Compass:         s.Compass,
	}
}
