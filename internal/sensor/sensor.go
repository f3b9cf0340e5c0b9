package sensor

import (
	"fmt"
	"strings"
)

// Type identifies the kind of vector a sensor reports.
type Type int

const (
	TypeMagneticField Type = iota
	TypeAccelerometer
	TypeGravity
	TypeRotationVector
)

// VectorLen is the maximum number of components carried for each type.
var VectorLen = map[Type]int{
	TypeMagneticField:  3,
	TypeAccelerometer:  3,
	TypeGravity:        3,
	TypeRotationVector: 5,
}

var typeNames = [...]string{"magnetic_field", "accelerometer", "gravity", "rotation_vector"}

// AllTypes lists every sensor type in declaration order.
var AllTypes = []Type{TypeMagneticField, TypeAccelerometer, TypeGravity, TypeRotationVector}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType parses the config spelling of a sensor type.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sensor type %q", s)
}

// Event is a single typed reading pushed by a sensor.
type Event struct {
	Type     Type
	Values   []float32
	SensorID string
	Seq      uint64
	SysTicks int64
}

type Sensor interface {
	Read() ([]Event, error)
	Reset() error
	Close() error
	Open() error
	ID() string
	Types() []Type
	Seq() uint64
}

// Interrupter is implemented by sensors whose blocking Read can be aborted
// from another goroutine.
type Interrupter interface {
	Interrupt()
}

// Opener creates the sensors available for a session.
type Opener func() ([]Sensor, error)

// Provides reports whether s reports events of type t.
func Provides(s Sensor, t Type) bool {
	for _, st := range s.Types() {
		if st == t {
			return true
		}
	}
	return false
}
