package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sensehat "github.com/relabs-tech/sensehat_computer"
)

func TestFromOrientationConvertsToDegrees(t *testing.T) {
	p := FromOrientation(sensehat.Orientation{
		Roll:  sensehat.AngleFromRadians(math.Pi / 2),
		Pitch: sensehat.AngleFromRadians(-math.Pi / 4),
		Yaw:   sensehat.AngleFromRadians(math.Pi),
	})

	assert.InDelta(t, 90.0, p.Roll, 1e-9)
	assert.InDelta(t, -45.0, p.Pitch, 1e-9)
	assert.InDelta(t, 180.0, p.Yaw, 1e-9)
}

func TestMockSourceStaysBounded(t *testing.T) {
	src := NewMockSource()

	for i := 0; i < 10; i++ {
		p, err := src.Next()
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(p.Roll), 20.0)
		assert.LessOrEqual(t, math.Abs(p.Pitch), 15.0)
		assert.GreaterOrEqual(t, p.Yaw, 0.0)
		assert.Less(t, p.Yaw, 360.0)
	}
}
