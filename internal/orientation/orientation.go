package orientation

import sensehat "github.com/relabs-tech/sensehat_computer"

// Pose is the wire representation of an orientation: degrees, because
// every consumer (console, web, display) shows degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: the hat, the
// mock source, maybe a replay source later.
type Source interface {
	Next() (Pose, error)
}

// FromOrientation converts a fused orientation to the wire pose.
func FromOrientation(o sensehat.Orientation) Pose {
	return Pose{
		Roll:  o.Roll.Degrees(),
		Pitch: o.Pitch.Degrees(),
		Yaw:   o.Yaw.Degrees(),
	}
}
