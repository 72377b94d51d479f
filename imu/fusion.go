package imu

import "math"

// TiltFromAccel computes roll and pitch (radians) from the gravity
// vector:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func TiltFromAccel(a Vector3) (roll, pitch float64) {
	roll = math.Atan2(a.Y, a.Z)
	pitch = math.Atan2(-a.X, math.Sqrt(a.Y*a.Y+a.Z*a.Z))
	return roll, pitch
}

// HeadingFromCompass computes yaw (radians) from the magnetic field
// vector, de-rotated by the current roll and pitch so the heading
// stays usable when the board is tilted.
func HeadingFromCompass(m Vector3, roll, pitch float64) float64 {
	sr, cr := math.Sin(roll), math.Cos(roll)
	sp, cp := math.Sin(pitch), math.Cos(pitch)

	mx := m.X*cp + m.Z*sp
	my := m.X*sr*sp + m.Y*cr - m.Z*sr*cp
	return math.Atan2(-my, mx)
}

// blendAngle moves a toward b by fraction t along the shortest arc,
// so blending works across the ±π wrap.
func blendAngle(a, b, t float64) float64 {
	return wrapPi(a + t*wrapPi(b-a))
}

// wrapPi normalizes an angle to (-π, π].
func wrapPi(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
