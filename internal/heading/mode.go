package heading

import "compass_apiserver/internal/sensor"

// Mode selects which sensor vectors the estimator derives orientation from.
type Mode int

const (
	ModeUnselected Mode = iota - 1
	ModeAccelMag
	ModeGravityMag
	ModeRotationVector
)

func (m Mode) String() string {
	switch m {
	case ModeAccelMag:
		return "accel+mag"
	case ModeGravityMag:
		return "gravity+mag"
	case ModeRotationVector:
		return "rotation-vector"
	default:
		return "unselected"
	}
}

// Types returns the sensor types a session in mode m listens to.
func (m Mode) Types() []sensor.Type {
	switch m {
	case ModeAccelMag:
		return []sensor.Type{sensor.TypeMagneticField, sensor.TypeAccelerometer}
	case ModeGravityMag:
		return []sensor.Type{sensor.TypeMagneticField, sensor.TypeGravity}
	case ModeRotationVector:
		return []sensor.Type{sensor.TypeRotationVector}
	default:
		return nil
	}
}

// modePriority is the order in which modes are probed.
var modePriority = []Mode{ModeRotationVector, ModeGravityMag, ModeAccelMag}

// SelectMode returns the highest priority mode whose sensors are all
// available, or ModeUnselected.
func SelectMode(available func(sensor.Type) bool) Mode {
	for _, m := range modePriority {
		ok := true
		for _, t := range m.Types() {
			ok = ok && available(t)
		}
		if ok {
			return m
		}
	}
	return ModeUnselected
}
