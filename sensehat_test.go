// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensehat

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/sensehat_computer/hts221"
	"github.com/relabs-tech/sensehat_computer/imu"
	"github.com/relabs-tech/sensehat_computer/lps25h"
)

// fakeEnvChip serves both chip interfaces: the same Status/Temperature
// shape, plus Pressure and Humidity.
type fakeEnvChip struct {
	status      uint8
	temperature float64
	pressure    float64
	humidity    float64
	err         error
}

func (f *fakeEnvChip) Status() (uint8, error) { return f.status, f.err }

func (f *fakeEnvChip) Temperature() (float64, error) { return f.temperature, f.err }

func (f *fakeEnvChip) Pressure() (float64, error) { return f.pressure, f.err }

func (f *fakeEnvChip) Humidity() (float64, error) { return f.humidity, f.err }

// fakeMotion scripts the fusion engine: each Read consumes one entry of
// fresh, ending with permanent staleness.
type fakeMotion struct {
	fresh []bool
	data  imu.Data
	err   error

	gyro    bool
	accel   bool
	compass bool
}

func (f *fakeMotion) SetSensors(gyro, accel, compass bool) {
	f.gyro, f.accel, f.compass = gyro, accel, compass
}

func (f *fakeMotion) Read() (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if len(f.fresh) == 0 {
		return false, nil
	}
	ok := f.fresh[0]
	f.fresh = f.fresh[1:]
	return ok, nil
}

func (f *fakeMotion) Data() imu.Data { return f.data }

func poseData(roll, pitch, yaw float64) imu.Data {
	return imu.Data{
		Timestamp:       time.Now(),
		FusionPoseValid: true,
		FusionPose:      imu.Vector3{X: roll, Y: pitch, Z: yaw},
	}
}

func TestOrientationUsesAllChannels(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true}, data: poseData(0.1, 0.2, 0.3)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	o, err := hat.Orientation()
	require.NoError(t, err)
	assert.True(t, m.gyro)
	assert.True(t, m.accel)
	assert.True(t, m.compass)
	assert.InDelta(t, 0.1, o.Roll.Radians(), 1e-9)
	assert.InDelta(t, 0.2, o.Pitch.Radians(), 1e-9)
	assert.InDelta(t, 0.3, o.Yaw.Radians(), 1e-9)
}

func TestOrientationNotReadyBeforeFirstPose(t *testing.T) {
	m := &fakeMotion{} // never fresh, never had a pose
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	_, err := hat.Orientation()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestOrientationFallsBackToCachedPose(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true}, data: poseData(0.1, 0.2, 0.3)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	_, err := hat.Orientation()
	require.NoError(t, err)

	// The engine goes stale; the last good pose is still served.
	o, err := hat.Orientation()
	require.NoError(t, err)
	assert.InDelta(t, 0.3, o.Yaw.Radians(), 1e-9)
}

func TestCompassNeverCached(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true}, data: poseData(0, 0, math.Pi/2)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	h, err := hat.Compass()
	require.NoError(t, err)
	assert.False(t, m.gyro)
	assert.False(t, m.accel)
	assert.True(t, m.compass)
	assert.InDelta(t, 90.0, h.Degrees(), 1e-9)

	// Stale read: no fallback to the previous heading.
	_, err = hat.Compass()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCompassLeavesOrientationCacheIntact(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true, true}, data: poseData(0.1, 0.2, 0.3)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	_, err := hat.Orientation()
	require.NoError(t, err)

	// A successful compass read with a completely different engine pose
	// must not touch the cached full-fusion snapshot.
	m.data = poseData(9, 9, 9)
	_, err = hat.Compass()
	require.NoError(t, err)

	// Engine goes stale; Orientation still serves the original pose.
	o, err := hat.Orientation()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, o.Roll.Radians(), 1e-9)
	assert.InDelta(t, 0.2, o.Pitch.Radians(), 1e-9)
	assert.InDelta(t, 0.3, o.Yaw.Radians(), 1e-9)
}

func TestSingleChannelOrientationRequiresFreshData(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true, false}, data: poseData(0.4, 0, 0)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	o, err := hat.GyroOrientation()
	require.NoError(t, err)
	assert.True(t, m.gyro)
	assert.False(t, m.accel)
	assert.False(t, m.compass)
	assert.InDelta(t, 0.4, o.Roll.Radians(), 1e-9)

	_, err = hat.GyroOrientation()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestAccelRaw(t *testing.T) {
	m := &fakeMotion{
		fresh: []bool{true},
		data: imu.Data{
			AccelValid: true,
			Accel:      imu.Vector3{X: 0.01, Y: -0.02, Z: 0.99},
		},
	}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	v, err := hat.AccelRaw()
	require.NoError(t, err)
	assert.False(t, m.gyro)
	assert.True(t, m.accel)
	assert.InDelta(t, 0.99, v.Z, 1e-9)

	// Cached like the fusion pose.
	v, err = hat.AccelRaw()
	require.NoError(t, err)
	assert.InDelta(t, 0.99, v.Z, 1e-9)
}

func TestHumidityGatedOnStatus(t *testing.T) {
	hum := &fakeEnvChip{humidity: 45.2}
	hat := NewFromParts(&fakeEnvChip{}, hum, &fakeMotion{})

	_, err := hat.Humidity()
	assert.ErrorIs(t, err, ErrNotReady)

	hum.status = hts221.StatusHumidityReady
	h, err := hat.Humidity()
	require.NoError(t, err)
	assert.InDelta(t, 45.2, h.Percent(), 1e-9)
}

func TestTemperatureFromHumidityGatedOnStatus(t *testing.T) {
	hum := &fakeEnvChip{temperature: 21.5, status: hts221.StatusHumidityReady}
	hat := NewFromParts(&fakeEnvChip{}, hum, &fakeMotion{})

	// Humidity ready but temperature not.
	_, err := hat.TemperatureFromHumidity()
	assert.ErrorIs(t, err, ErrNotReady)

	hum.status |= hts221.StatusTemperatureReady
	temp, err := hat.TemperatureFromHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 21.5, temp.Celsius(), 1e-9)
}

func TestPressureGatedOnStatus(t *testing.T) {
	press := &fakeEnvChip{pressure: 1005.3}
	hat := NewFromParts(press, &fakeEnvChip{}, &fakeMotion{})

	_, err := hat.Pressure()
	assert.ErrorIs(t, err, ErrNotReady)

	press.status = lps25h.StatusPressureReady
	p, err := hat.Pressure()
	require.NoError(t, err)
	assert.InDelta(t, 1005.3, p.Hectopascals(), 1e-9)
}

func TestTemperatureFromPressure(t *testing.T) {
	press := &fakeEnvChip{temperature: 24.0, status: lps25h.StatusTemperatureReady}
	hat := NewFromParts(press, &fakeEnvChip{}, &fakeMotion{})

	temp, err := hat.TemperatureFromPressure()
	require.NoError(t, err)
	assert.InDelta(t, 24.0, temp.Celsius(), 1e-9)
}

func TestDataOverlaysEnvironment(t *testing.T) {
	m := &fakeMotion{fresh: []bool{true}, data: poseData(0.1, 0, 0)}
	press := &fakeEnvChip{
		status:      lps25h.StatusPressureReady | lps25h.StatusTemperatureReady,
		pressure:    1013.25,
		temperature: 22.0,
	}
	hum := &fakeEnvChip{status: hts221.StatusHumidityReady, humidity: 40.0}
	hat := NewFromParts(press, hum, m)

	_, err := hat.Update()
	require.NoError(t, err)

	d := hat.Data()
	assert.True(t, d.FusionPoseValid)
	assert.True(t, d.PressureValid)
	assert.InDelta(t, 1013.25, d.Pressure, 1e-9)
	assert.True(t, d.TemperatureValid)
	assert.True(t, d.HumidityValid)
	assert.InDelta(t, 40.0, d.Humidity, 1e-9)
}

func TestDataPrefersHumidityChipTemperature(t *testing.T) {
	press := &fakeEnvChip{status: lps25h.StatusTemperatureReady, temperature: 24.0}
	hum := &fakeEnvChip{status: hts221.StatusTemperatureReady, temperature: 21.0}
	hat := NewFromParts(press, hum, &fakeMotion{})

	d := hat.Data()
	require.True(t, d.TemperatureValid)
	assert.InDelta(t, 21.0, d.Temperature, 1e-9)

	// When the humidity chip's temperature is stale the barometer's
	// reading stands.
	hum.status = 0
	d = hat.Data()
	require.True(t, d.TemperatureValid)
	assert.InDelta(t, 24.0, d.Temperature, 1e-9)
}

func TestDataKeepsFlagsClearWhenChipsStale(t *testing.T) {
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, &fakeMotion{})

	d := hat.Data()
	assert.False(t, d.FusionPoseValid)
	assert.False(t, d.PressureValid)
	assert.False(t, d.TemperatureValid)
	assert.False(t, d.HumidityValid)
}

func TestUpdateRefreshesCacheOnlyOnFreshData(t *testing.T) {
	m := &fakeMotion{fresh: []bool{false, true}, data: poseData(0.5, 0, 0)}
	hat := NewFromParts(&fakeEnvChip{}, &fakeEnvChip{}, m)

	ok, err := hat.Update()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, hat.Data().FusionPoseValid)

	ok, err = hat.Update()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, hat.Data().FusionPoseValid)
}
