// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lsm9ds1

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func initOps(opts Opts) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: AccelGyroAddr, W: []byte{0x0f}, R: []byte{0x68}},
		{Addr: MagAddr, W: []byte{0x0f}, R: []byte{0x3d}},
		{Addr: AccelGyroAddr, W: []byte{0x10, 0x60 | gyroFS[opts.GyroRange]}, R: nil},
		{Addr: AccelGyroAddr, W: []byte{0x20, 0x60 | accelFS[opts.AccelRange]}, R: nil},
		{Addr: AccelGyroAddr, W: []byte{0x22, 0x44}, R: nil},
		{Addr: MagAddr, W: []byte{0x20, 0x7c}, R: nil},
		{Addr: MagAddr, W: []byte{0x21, opts.MagRange << 5}, R: nil},
		{Addr: MagAddr, W: []byte{0x22, 0x00}, R: nil},
		{Addr: MagAddr, W: []byte{0x23, 0x0c}, R: nil},
	}
}

func TestNewValidatesRanges(t *testing.T) {
	bus := &i2ctest.Playback{}

	_, err := New(bus, &Opts{AccelRange: 4})
	assert.Error(t, err)
	_, err = New(bus, &Opts{GyroRange: 3})
	assert.Error(t, err)
	_, err = New(bus, &Opts{MagRange: 4})
	assert.Error(t, err)
}

func TestNewRejectsWrongChip(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: AccelGyroAddr, W: []byte{0x0f}, R: []byte{0x00}},
		},
	}

	_, err := New(bus, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHO_AM_I")
}

func TestPollScalesReadings(t *testing.T) {
	ops := initOps(DefaultOpts)
	ops = append(ops,
		// Gyro and accel both ready.
		i2ctest.IO{Addr: AccelGyroAddr, W: []byte{0x17}, R: []byte{statusGyroReady | statusAccelReady}},
		// Gyro raw {1000, 0, 0}.
		i2ctest.IO{Addr: AccelGyroAddr, W: []byte{0x18}, R: []byte{0xe8, 0x03, 0x00, 0x00, 0x00, 0x00}},
		// Accel raw {0, 0, 16384}, near 1g on Z at ±2g.
		i2ctest.IO{Addr: AccelGyroAddr, W: []byte{0x28}, R: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40}},
		// Mag ready, raw {1000, -1000, 0}.
		i2ctest.IO{Addr: MagAddr, W: []byte{0x27}, R: []byte{statusMagReady}},
		i2ctest.IO{Addr: MagAddr, W: []byte{0xa8}, R: []byte{0xe8, 0x03, 0x18, 0xfc, 0x00, 0x00}},
	)
	bus := &i2ctest.Playback{Ops: ops}

	d, err := New(bus, nil)
	require.NoError(t, err)

	s, err := d.Poll(true, true, true)
	require.NoError(t, err)

	require.True(t, s.GyroValid)
	assert.InDelta(t, 1000*0.00875*math.Pi/180.0, s.Gyro.X, 1e-9)
	assert.Zero(t, s.Gyro.Y)

	require.True(t, s.AccelValid)
	assert.InDelta(t, 16384*0.000061, s.Accel.Z, 1e-9)

	require.True(t, s.CompassValid)
	assert.InDelta(t, 14.0, s.Compass.X, 1e-9)
	assert.InDelta(t, -14.0, s.Compass.Y, 1e-9)

	require.NoError(t, bus.Close())
}

func TestPollSkipsNotReadyChannels(t *testing.T) {
	ops := initOps(DefaultOpts)
	ops = append(ops,
		// Only the accelerometer has fresh data.
		i2ctest.IO{Addr: AccelGyroAddr, W: []byte{0x17}, R: []byte{statusAccelReady}},
		i2ctest.IO{Addr: AccelGyroAddr, W: []byte{0x28}, R: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40}},
		i2ctest.IO{Addr: MagAddr, W: []byte{0x27}, R: []byte{0x00}},
	)
	bus := &i2ctest.Playback{Ops: ops}

	d, err := New(bus, nil)
	require.NoError(t, err)

	s, err := d.Poll(true, true, true)
	require.NoError(t, err)
	assert.False(t, s.GyroValid)
	assert.True(t, s.AccelValid)
	assert.False(t, s.CompassValid)
	require.NoError(t, bus.Close())
}

func TestPollDisabledChannelsTouchNoRegisters(t *testing.T) {
	bus := &i2ctest.Playback{Ops: initOps(DefaultOpts)}

	d, err := New(bus, nil)
	require.NoError(t, err)

	s, err := d.Poll(false, false, false)
	require.NoError(t, err)
	assert.False(t, s.GyroValid)
	assert.False(t, s.AccelValid)
	assert.False(t, s.CompassValid)
	require.NoError(t, bus.Close())
}
