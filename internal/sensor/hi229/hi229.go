package hi229

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/sensor"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const MaxReadNum = 4096
const BufferSize = 4096
const MaxEventNum = 300
const DefaultBaudRate = 115200

// StandardGravity converts the device's G readings to m/s^2.
const StandardGravity = 9.80665

var ErrPortNotOpen = errors.New("port not open")

// port is the subset of *serial.Port the sensor needs.
type port interface {
	Read(b []byte) (int, error)
	Flush() error
	Close() error
}

var openPort = func(name string, baud int) (port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: time.Second * 5,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Read cannot be called by two goroutines at the same time. Interrupt and
// Close may be called while a Read is blocked.
type hi229Sensor struct {
	id    string
	opt   config.IMUOpt
	types []sensor.Type
	mu    sync.Mutex
	port  port
	dec   decoder
	buf   [BufferSize]byte
	seq   uint64
	now   func() time.Time
}

func (s *hi229Sensor) Seq() uint64 {
	return s.seq
}

func (s *hi229Sensor) ID() string {
	return s.id
}

func (s *hi229Sensor) Types() []sensor.Type {
	return s.types
}

// Close closes the serial port
func (s *hi229Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	if err != nil {
		return err
	}
	s.port = nil
	return nil
}

// Interrupt closes the serial port, failing a blocked Read.
func (s *hi229Sensor) Interrupt() {
	if err := s.Close(); err != nil {
		log.Debugf("sensor %s: interrupt: %v", s.id, err)
	}
}

func (s *hi229Sensor) current() port {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Open opens the serial port
func (s *hi229Sensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	p, err := openPort(s.opt.Name, s.opt.Baud)
	if err != nil {
		log.Warnln(err)
		return err
	}
	s.port = p
	s.seq = 0
	s.dec = decoder{}
	return s.port.Flush()
}

// Reset resets the serial port cache
func (s *hi229Sensor) Reset() error {
	p := s.current()
	if p == nil {
		return ErrPortNotOpen
	}
	return p.Flush()
}

func (s *hi229Sensor) enabled(t sensor.Type) bool {
	for _, st := range s.types {
		if st == t {
			return true
		}
	}
	return false
}

// events converts the last decoded frame to sensor events.
func (s *hi229Sensor) events(dst []sensor.Event, ticks int64) []sensor.Event {
	f := &s.dec.frame
	emit := func(t sensor.Type, values []float32) {
		dst = append(dst, sensor.Event{
			Type:     t,
			Values:   values,
			SensorID: s.id,
			Seq:      s.seq,
			SysTicks: ticks,
		})
	}
	if f.hasMag && s.enabled(sensor.TypeMagneticField) {
		emit(sensor.TypeMagneticField, []float32{f.Mag[0], f.Mag[1], f.Mag[2]})
	}
	if f.hasAcc && s.enabled(sensor.TypeAccelerometer) {
		emit(sensor.TypeAccelerometer, []float32{
			f.Acc[0] * StandardGravity,
			f.Acc[1] * StandardGravity,
			f.Acc[2] * StandardGravity,
		})
	}
	if f.hasQuat && s.enabled(sensor.TypeRotationVector) {
		// rotation vector order is x, y, z, w
		emit(sensor.TypeRotationVector, []float32{f.Quat[1], f.Quat[2], f.Quat[3], f.Quat[0]})
	}
	s.seq++
	return dst
}

// Read reads the serial port and returns the decoded events
func (s *hi229Sensor) Read() ([]sensor.Event, error) {
	p := s.current()
	if p == nil {
		return nil, ErrPortNotOpen
	}
	results := make([]sensor.Event, 0, MaxEventNum)
	count := 0
	for count < MaxReadNum {
		n, err := p.Read(s.buf[:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errors.New("port cannot be read")
		}
		count += n
		ticks := s.now().UnixNano()
		for i := 0; i < n; i++ {
			if s.dec.input(s.buf[i]) == 1 {
				results = s.events(results, ticks)
			}
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, errors.New("IMU_FAIL")
}

var _ sensor.Interrupter = (*hi229Sensor)(nil)

// NewSensor creates and opens a HI229 sensor. The device reports magnetic
// field, accelerometer and rotation vector unless disabled in opt.
func NewSensor(opt config.IMUOpt) (sensor.Sensor, error) {
	if opt.Baud == 0 {
		opt.Baud = DefaultBaudRate
	}
	disabled, err := config.ParseTypes(opt.Disable)
	if err != nil {
		return nil, err
	}
	s := &hi229Sensor{
		id:  opt.ID,
		opt: opt,
		now: time.Now,
	}
	for _, t := range []sensor.Type{sensor.TypeMagneticField, sensor.TypeAccelerometer, sensor.TypeRotationVector} {
		skip := false
		for _, d := range disabled {
			skip = skip || d == t
		}
		if !skip {
			s.types = append(s.types, t)
		}
	}

	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// ProbePort reports whether a device on name produces any data at the
// default baud rate.
func ProbePort(name string) bool {
	p, err := openPort(name, DefaultBaudRate)
	if err != nil {
		return false
	}
	defer func() { _ = p.Close() }()
	time.Sleep(time.Millisecond * 100)

	buffer := make([]byte, BufferSize)
	n, _ := p.Read(buffer)
	return n > 0
}
