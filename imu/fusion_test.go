package imu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTiltFromAccel(t *testing.T) {
	// Flat on the table: gravity straight down the Z axis.
	roll, pitch := TiltFromAccel(Vector3{Z: 1})
	assert.InDelta(t, 0, roll, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)

	// Rolled 90° so gravity lands on Y.
	roll, pitch = TiltFromAccel(Vector3{Y: 1})
	assert.InDelta(t, math.Pi/2, roll, 1e-9)
	assert.InDelta(t, 0, pitch, 1e-9)

	// Pitched nose-up 90°.
	roll, pitch = TiltFromAccel(Vector3{X: -1})
	assert.InDelta(t, math.Pi/2, pitch, 1e-9)

	// 45° roll.
	roll, _ = TiltFromAccel(Vector3{Y: 1, Z: 1})
	assert.InDelta(t, math.Pi/4, roll, 1e-9)
}

func TestHeadingFromCompass(t *testing.T) {
	// Level, field along X: heading zero.
	assert.InDelta(t, 0, HeadingFromCompass(Vector3{X: 1}, 0, 0), 1e-9)

	// Level, field along Y.
	assert.InDelta(t, -math.Pi/2, HeadingFromCompass(Vector3{Y: 1}, 0, 0), 1e-9)

	// Tilt compensation: rolling the board must not move the heading
	// when the field stays in the horizontal plane.
	h := HeadingFromCompass(Vector3{X: 1}, math.Pi/6, 0)
	assert.InDelta(t, 0, h, 1e-9)
}

func TestBlendAngleShortestArc(t *testing.T) {
	// Plain blend.
	assert.InDelta(t, 0.25, blendAngle(0, 0.5, 0.5), 1e-9)

	// Across the ±π wrap: blending 170° toward -170° must pass through
	// 180°, not swing back through zero.
	got := blendAngle(math.Pi-0.1, -math.Pi+0.1, 0.5)
	assert.InDelta(t, math.Pi, math.Abs(got), 1e-9)

	// t=1 lands exactly on the target.
	assert.InDelta(t, -math.Pi+0.1, blendAngle(math.Pi-0.1, -math.Pi+0.1, 1), 1e-9)
}

func TestWrapPi(t *testing.T) {
	assert.InDelta(t, math.Pi, wrapPi(3*math.Pi), 1e-9)
	assert.InDelta(t, math.Pi, wrapPi(-math.Pi), 1e-9)
	assert.InDelta(t, -math.Pi+0.5, wrapPi(math.Pi+0.5), 1e-9)
	assert.InDelta(t, 0.5, wrapPi(0.5), 1e-9)
}
