// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lps25h

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: Addr, W: []byte{0x0f}, R: []byte{0xbd}}, // WHO_AM_I
		{Addr: Addr, W: []byte{0x20, 0xc4}, R: nil},    // CTRL_REG1
		{Addr: Addr, W: []byte{0x10, 0x05}, R: nil},    // RES_CONF
		{Addr: Addr, W: []byte{0x2e, 0xc0}, R: nil},    // FIFO_CTRL
		{Addr: Addr, W: []byte{0x21, 0x40}, R: nil},    // CTRL_REG2
	}
}

func TestNewRejectsWrongChip(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: Addr, W: []byte{0x0f}, R: []byte{0xbc}},
		},
	}

	_, err := New(bus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHO_AM_I")
}

func TestReadings(t *testing.T) {
	ops := initOps()
	ops = append(ops,
		i2ctest.IO{Addr: Addr, W: []byte{0x27}, R: []byte{StatusPressureReady | StatusTemperatureReady}},
		// PRESS_OUT = 1013.25 hPa * 4096 = 4150272 = 0x3f5400
		i2ctest.IO{Addr: Addr, W: []byte{0x28}, R: []byte{0x00}},
		i2ctest.IO{Addr: Addr, W: []byte{0x29}, R: []byte{0x54}},
		i2ctest.IO{Addr: Addr, W: []byte{0x2a}, R: []byte{0x3f}},
		// TEMP_OUT = -8400 counts = 42.5 - 17.5 = 25°C
		i2ctest.IO{Addr: Addr, W: []byte{0x2b}, R: []byte{0x30}},
		i2ctest.IO{Addr: Addr, W: []byte{0x2c}, R: []byte{0xdf}},
	)
	bus := &i2ctest.Playback{Ops: ops}

	d, err := New(bus)
	require.NoError(t, err)

	status, err := d.Status()
	require.NoError(t, err)
	assert.NotZero(t, status&StatusPressureReady)

	p, err := d.Pressure()
	require.NoError(t, err)
	assert.InDelta(t, 1013.25, p, 1e-9)

	temp, err := d.Temperature()
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temp, 1e-9)

	require.NoError(t, bus.Close())
}
