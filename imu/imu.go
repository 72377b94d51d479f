// Package imu fuses raw inertial samples into an orientation estimate
// and exposes the result as a plain snapshot.
//
// The heavy lifting a full AHRS stack would do (Kalman filtering,
// runtime calibration, bias tracking) is deliberately not here; the
// engine blends accelerometer tilt and tilt-compensated compass heading
// into a gyro-integrated prior, weighted by the slerp power.
package imu

import "time"

// Vector3 is a plain 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sample is one raw reading from an IMU chip. Units: gyro in rad/s,
// accel in g, compass in µT. A channel's Valid flag is set only when
// the chip had fresh data for it.
type Sample struct {
	Time time.Time

	Gyro      Vector3
	GyroValid bool

	Accel      Vector3
	AccelValid bool

	Compass      Vector3
	CompassValid bool
}

// Source provides raw samples. Poll reads only the requested channels
// and must not block waiting for data: a channel whose data-ready flag
// is clear comes back with its Valid flag unset.
type Source interface {
	Poll(gyro, accel, compass bool) (Sample, error)
}

// Data is the full fused snapshot, one validity flag per field. The
// pressure, temperature and humidity fields are filled in by whoever
// owns the environment chips; the engine only produces the inertial
// part.
type Data struct {
	Timestamp time.Time `json:"timestamp"`

	FusionPoseValid bool    `json:"fusion_pose_valid"`
	FusionPose      Vector3 `json:"fusion_pose"` // roll/pitch/yaw, radians

	GyroValid bool    `json:"gyro_valid"`
	Gyro      Vector3 `json:"gyro"` // rad/s

	AccelValid bool    `json:"accel_valid"`
	Accel      Vector3 `json:"accel"` // g

	CompassValid bool    `json:"compass_valid"`
	Compass      Vector3 `json:"compass"` // µT

	PressureValid bool    `json:"pressure_valid"`
	Pressure      float64 `json:"pressure"` // hPa

	TemperatureValid bool    `json:"temperature_valid"`
	Temperature      float64 `json:"temperature"` // °C

	HumidityValid bool    `json:"humidity_valid"`
	Humidity      float64 `json:"humidity"` // percent
}
