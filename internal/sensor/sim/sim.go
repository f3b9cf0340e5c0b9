// Package sim provides a simulated orientation sensor for running the compass
// without hardware. The device lies flat and turns at a constant rate.
package sim

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/sensor"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

const StandardGravity = 9.80665

var ErrClosed = errors.New("simulated sensor closed")

type simSensor struct {
	opt      config.SimulateOpt
	types    []sensor.Type
	clock    clock.Clock
	start    time.Time
	interval time.Duration
	seq      uint64
	open     atomic.Bool
	mu       sync.Mutex
	stop     chan struct{}
}

// NewSensor creates an opened simulated sensor. The heading starts at
// opt.Heading degrees and advances opt.Rate degrees per second.
func NewSensor(opt config.SimulateOpt, clk clock.Clock) (sensor.Sensor, error) {
	types, err := config.ParseTypes(opt.Sensors)
	if err != nil {
		return nil, err
	}
	if opt.IntervalMs <= 0 {
		opt.IntervalMs = config.DefaultSimIntervalMs
	}
	if opt.Field == 0 {
		opt.Field = config.DefaultSimFieldStrength
	}
	if opt.ID == "" {
		opt.ID = config.DefaultSimID
	}
	s := &simSensor{
		opt:      opt,
		types:    types,
		clock:    clk,
		interval: time.Duration(opt.IntervalMs) * time.Millisecond,
	}
	return s, s.Open()
}

func (s *simSensor) ID() string           { return s.opt.ID }
func (s *simSensor) Types() []sensor.Type { return s.types }
func (s *simSensor) Seq() uint64          { return atomic.LoadUint64(&s.seq) }

func (s *simSensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open.Swap(true) {
		return nil
	}
	s.start = s.clock.Now()
	s.stop = make(chan struct{})
	atomic.StoreUint64(&s.seq, 0)
	return nil
}

func (s *simSensor) Close() error {
	s.Interrupt()
	return nil
}

// Interrupt closes the sensor and wakes a sleeping Read.
func (s *simSensor) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open.Swap(false) {
		close(s.stop)
	}
}

func (s *simSensor) Reset() error {
	if !s.open.Load() {
		return ErrClosed
	}
	return nil
}

// Heading returns the simulated heading in degrees at t.
func (s *simSensor) Heading(t time.Time) float64 {
	h := s.opt.Heading + s.opt.Rate*t.Sub(s.start).Seconds()
	return math.Mod(math.Mod(h, 360)+360, 360)
}

// Read waits one interval and returns one event per simulated type.
func (s *simSensor) Read() ([]sensor.Event, error) {
	s.mu.Lock()
	stop, open := s.stop, s.open.Load()
	s.mu.Unlock()
	if !open {
		return nil, ErrClosed
	}

	timer := s.clock.Timer(s.interval)
	select {
	case <-stop:
		timer.Stop()
		return nil, ErrClosed
	case <-timer.C:
	}
	now := s.clock.Now()
	seq := atomic.AddUint64(&s.seq, 1) - 1
	return Sample(s.ID(), s.types, s.Heading(now), s.opt.Field, s.opt.Dip, seq, now.UnixNano()), nil
}

// Vectors returns what a flat device facing heading degrees reports: the
// magnetic field (uT) for a field of the given strength and dip, gravity,
// and the rotation vector (x, y, z, w).
func Vectors(heading, field, dip float64) (mag, grav, rot []float32) {
	h := heading * math.Pi / 180
	d := dip * math.Pi / 180
	horizontal := field * math.Cos(d)
	mag = []float32{
		float32(-horizontal * math.Sin(h)),
		float32(horizontal * math.Cos(h)),
		float32(-field * math.Sin(d)),
	}
	grav = []float32{0, 0, StandardGravity}
	rot = []float32{0, 0, float32(-math.Sin(h / 2)), float32(math.Cos(h / 2))}
	return mag, grav, rot
}

// Sample builds the events of the requested types for heading.
func Sample(id string, types []sensor.Type, heading, field, dip float64, seq uint64, ticks int64) []sensor.Event {
	mag, grav, rot := Vectors(heading, field, dip)
	events := make([]sensor.Event, 0, len(types))
	for _, t := range types {
		var values []float32
		switch t {
		case sensor.TypeMagneticField:
			values = mag
		case sensor.TypeAccelerometer, sensor.TypeGravity:
			values = append([]float32(nil), grav...)
		case sensor.TypeRotationVector:
			values = rot
		default:
			continue
		}
		events = append(events, sensor.Event{Type: t, Values: values, SensorID: id, Seq: seq, SysTicks: ticks})
	}
	return events
}
