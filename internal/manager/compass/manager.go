package compass

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/display"
	"compass_apiserver/internal/heading"
	"compass_apiserver/internal/manager"
	"compass_apiserver/internal/needle"
	"compass_apiserver/internal/sensor"
	"compass_apiserver/internal/sensor/hi229"
	"compass_apiserver/internal/sensor/sim"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const BufLen = 1024
const EventBufLen = 256
const readRetryInterval = 10 * time.Millisecond

var (
	ErrNotReady  = errors.New("not ready")
	ErrNoNewData = errors.New("no new data")
	ErrNoSensors = errors.New("no sensors configured")
	ErrNoPorts   = errors.New("no valid ports found")
)

// SessionManager runs one heading session at a time: it owns the sensors,
// feeds the estimator from a single goroutine and publishes every update to
// the surface, the needle animator and a ring buffer of records.
type SessionManager struct {
	opt     *config.CompassOpt
	open    sensor.Opener
	surface display.Surface
	clock   clock.Clock

	estimator *heading.Estimator
	animator  *needle.Animator

	lock            sync.RWMutex
	sensors         []sensor.Sensor
	listeners       map[sensor.Type]string
	mode            heading.Mode
	session         string
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	manuallyStopped bool
	faulted         atomic.Bool
	lastAccess      atomic.Int64

	ringLock   sync.RWMutex
	ringBuffer []heading.Record
	counter    int64
	first      int64
	text       string
}

var _ manager.Manager = (*SessionManager)(nil)

// NewManager creates a stopped manager. surface may be nil when nothing is
// displayed locally.
func NewManager(opt *config.CompassOpt, open sensor.Opener, surface display.Surface, clk clock.Clock) *SessionManager {
	if clk == nil {
		clk = clock.New()
	}
	m := &SessionManager{
		opt:        opt,
		open:       open,
		surface:    surface,
		clock:      clk,
		estimator:  heading.NewEstimator(heading.ModeUnselected),
		animator:   needle.NewAnimator(clk, opt.AnimationDuration()),
		mode:       heading.ModeUnselected,
		ringBuffer: make([]heading.Record, BufLen),
	}
	m.touch()
	return m
}

// DefaultOpener opens a HI229 for every configured IMU with a port name and
// the simulated sensor when enabled.
func DefaultOpener(opt *config.CompassOpt, clk clock.Clock) sensor.Opener {
	return func() ([]sensor.Sensor, error) {
		var res []sensor.Sensor
		closeAll := func() {
			for _, s := range res {
				_ = s.Close()
			}
		}
		for _, imu := range opt.IMU {
			if imu.Name == "" {
				log.Debugf("imu %s has no port name, skipping", imu.ID)
				continue
			}
			s, err := hi229.NewSensor(imu)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("failed to create sensor %s on %s: %w", imu.ID, imu.Name, err)
			}
			res = append(res, s)
			clk.Sleep(time.Millisecond * 50) // wait for stable
		}
		if opt.Simulate.Enabled {
			s, err := sim.NewSensor(opt.Simulate, clk)
			if err != nil {
				closeAll()
				return nil, err
			}
			res = append(res, s)
		}
		return res, nil
	}
}

func (m *SessionManager) touch() {
	m.lastAccess.Store(m.clock.Now().UnixNano())
}

// Animator returns the needle animator driven by this manager.
func (m *SessionManager) Animator() *needle.Animator {
	return m.animator
}

// register picks, for every type of mode, the first sensor providing it.
func register(mode heading.Mode, sensors []sensor.Sensor) map[sensor.Type]string {
	listeners := make(map[sensor.Type]string)
	for _, t := range mode.Types() {
		for _, s := range sensors {
			if sensor.Provides(s, t) {
				listeners[t] = s.ID()
				break
			}
		}
	}
	return listeners
}

// Start opens the sensors, selects the operation mode and begins a session.
// Starting a running manager only clears the manually stopped flag.
func (m *SessionManager) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.touch()

	if m.sensors != nil {
		m.manuallyStopped = false
		return nil
	}

	sensors, err := m.open()
	if err != nil {
		return err
	}
	if len(sensors) == 0 {
		return ErrNoSensors
	}

	ids := make(map[string]struct{}, len(sensors))
	for _, s := range sensors {
		if _, ok := ids[s.ID()]; ok {
			for _, rs := range sensors {
				_ = rs.Close()
			}
			return errors.New("duplicate sensor id: " + s.ID())
		}
		ids[s.ID()] = struct{}{}
	}

	mode := heading.SelectMode(func(t sensor.Type) bool {
		for _, s := range sensors {
			if sensor.Provides(s, t) {
				return true
			}
		}
		return false
	})

	m.sensors = sensors
	m.mode = mode
	m.session = uuid.NewString()
	m.listeners = register(mode, sensors)
	m.estimator.SetMode(mode)
	m.faulted.Store(false)
	m.manuallyStopped = false
	m.ctx, m.cancel = context.WithCancel(context.Background())

	if mode == heading.ModeUnselected {
		log.Warnf("session %s: no usable sensor combination, heading will not update", m.session)
		return nil
	}

	events := make(chan sensor.Event, EventBufLen)
	for _, s := range sensors {
		accept := make(map[sensor.Type]bool)
		for t, id := range m.listeners {
			if id == s.ID() {
				accept[t] = true
			}
		}
		if len(accept) == 0 {
			continue
		}
		m.wg.Add(1)
		go m.readLoop(m.ctx, s, accept, events)
	}
	m.wg.Add(1)
	go m.consume(m.ctx, m.session, mode, events)

	log.Infof("session %s started in mode %s", m.session, mode)
	return nil
}

// readLoop forwards the accepted events of s until ctx is done. EOF marks the
// session faulted.
func (m *SessionManager) readLoop(ctx context.Context, s sensor.Sensor, accept map[sensor.Type]bool, events chan<- sensor.Event) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := s.Read()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				log.Warnf("sensor %v disconnected", s.ID())
				m.faulted.Store(true)
				return
			}
			log.Debugf("sensor %v error: %v", s.ID(), err)
			select {
			case <-ctx.Done():
				return
			case <-m.clock.After(readRetryInterval):
			}
			continue
		}

		for _, ev := range res {
			if !accept[ev.Type] {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// consume is the only goroutine touching the estimator during a session.
func (m *SessionManager) consume(ctx context.Context, session string, mode heading.Mode, events <-chan sensor.Event) {
	defer m.wg.Done()

	diagLastCheck := m.clock.Now()
	diagEvents, diagUpdates := 0, 0
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			diagEvents++
			if m.process(session, mode, ev) {
				diagUpdates++
			}
		}

		if d := m.clock.Since(diagLastCheck); d >= 10*time.Second {
			log.Debugf("session %s eps: %3.1f, ups: %3.1f", session,
				float64(diagEvents)/d.Seconds(), float64(diagUpdates)/d.Seconds())
			diagLastCheck = m.clock.Now()
			diagEvents, diagUpdates = 0, 0
		}
	}
}

func (m *SessionManager) process(session string, mode heading.Mode, ev sensor.Event) bool {
	az, ok := m.estimator.Update(ev)
	if !ok {
		return false
	}

	previous := m.animator.Previous()
	anim := m.animator.Animate(az)
	text := heading.Format(az)
	if m.surface != nil {
		m.surface.SetAzimuthText(text)
	}

	m.ringLock.Lock()
	defer m.ringLock.Unlock()
	m.text = text
	m.ringBuffer[m.counter%BufLen] = heading.Record{
		Session:  session,
		Seq:      uint64(m.counter),
		Azimuth:  az,
		Previous: previous,
		Text:     text,
		Mode:     mode,
		From:     anim.From,
		To:       anim.To,
		Duration: anim.Duration,
		SensorID: ev.SensorID,
		SysTicks: ev.SysTicks,
	}
	m.counter++
	return true
}

// Stop ends the session: listeners are removed, sensors closed and the mode
// reset to unselected. The estimator keeps its cached vectors and azimuth.
func (m *SessionManager) Stop() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.touch()
	m.manuallyStopped = true

	if m.sensors == nil {
		return nil
	}
	m.cancel()
	for _, s := range m.sensors {
		if i, ok := s.(sensor.Interrupter); ok {
			i.Interrupt()
		}
	}
	m.wg.Wait()

	var err error
	for _, s := range m.sensors {
		err = multierr.Append(err, s.Close())
	}
	log.Infof("session %s stopped", m.session)

	m.sensors = nil
	m.listeners = nil
	m.mode = heading.ModeUnselected
	m.estimator.SetMode(heading.ModeUnselected)
	m.faulted.Store(false)

	// sequence numbers keep growing so cursors of this session stay below
	// the first record of the next one
	m.ringLock.Lock()
	m.first = m.counter
	m.ringLock.Unlock()
	return err
}

func (m *SessionManager) Restart() error {
	if err := m.Stop(); err != nil {
		log.Warnln("stop before restart:", err)
	}
	return m.Start()
}

// Read returns the records published after cursor and the new cursor. A
// negative cursor returns only the latest record. Record sequence numbers
// grow across sessions, so a cursor from an earlier session reads the
// current session from its start.
func (m *SessionManager) Read(cursor int64) (int64, []heading.Record, error) {
	m.touch()
	m.ringLock.RLock()
	defer m.ringLock.RUnlock()

	if m.counter == m.first {
		return cursor, nil, ErrNotReady
	}
	if cursor < 0 {
		cursor = m.counter - 1
		return cursor, []heading.Record{m.ringBuffer[cursor%BufLen]}, nil
	}
	if cursor < m.first || cursor >= m.counter {
		cursor = m.first - 1
	}
	if cursor+1 >= m.counter {
		return cursor, nil, ErrNoNewData
	}

	start := cursor + 1
	if m.counter-start > BufLen {
		start = m.counter - BufLen
	}
	res := make([]heading.Record, 0, m.counter-start)
	for i := start; i < m.counter; i++ {
		res = append(res, m.ringBuffer[i%BufLen])
	}
	return m.counter - 1, res, nil
}

func (m *SessionManager) Running() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.sensors != nil && !m.faulted.Load()
}

func (m *SessionManager) Faulted() bool {
	return m.faulted.Load()
}

func (m *SessionManager) ManuallyStopped() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.manuallyStopped
}

func (m *SessionManager) Mode() heading.Mode {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.mode
}

func (m *SessionManager) Session() string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.session
}

// Azimuth returns the last computed azimuth, kept across sessions.
func (m *SessionManager) Azimuth() int {
	return m.animator.Previous()
}

// Text returns the azimuth text last shown, empty until a heading has been
// computed.
func (m *SessionManager) Text() string {
	m.ringLock.RLock()
	defer m.ringLock.RUnlock()
	return m.text
}

// ListDev returns the ids of the sensors of the current session.
func (m *SessionManager) ListDev() ([]string, error) {
	m.touch()
	m.lock.RLock()
	defer m.lock.RUnlock()

	res := make([]string, len(m.sensors))
	for i, s := range m.sensors {
		res[i] = s.ID()
	}
	return res, nil
}

func listSerialPorts() ([]string, error) {
	var ports []string
	switch runtime.GOOS {
	case "windows":
		for i := 1; i <= 256; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	case "linux":
		// usually /dev/ttyUSB*
		files, err := os.ReadDir("/dev")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if strings.Contains(file.Name(), "tty") && strings.Contains(file.Name(), "USB") {
				ports = append(ports, "/dev/"+file.Name())
			}
		}
	case "darwin":
		files, err := os.ReadDir("/dev")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if name := file.Name(); strings.HasPrefix(name, "tty.") {
				ports = append(ports, "/dev/"+name)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return ports, nil
}

var probePort = hi229.ProbePort

// ProbeDev lists the serial ports on which a HI229 is streaming.
func (m *SessionManager) ProbeDev() ([]string, error) {
	ports, err := listSerialPorts()
	if err != nil {
		return nil, err
	}
	var validPorts []string
	for _, name := range ports {
		if probePort(name) {
			validPorts = append(validPorts, name)
		}
	}
	if len(validPorts) == 0 {
		return nil, ErrNoPorts
	}
	return validPorts, nil
}

// TrySleep stops a running session nobody has read for the idle timeout.
func (m *SessionManager) TrySleep() error {
	timeout := m.opt.IdleTimeout()
	if timeout <= 0 || !m.Running() {
		return nil
	}
	idle := m.clock.Now().Sub(time.Unix(0, m.lastAccess.Load()))
	if idle <= timeout {
		return nil
	}
	log.Infof("idle for %v, enter sleep mode", idle.Truncate(time.Second))
	return m.Stop()
}

// Daemon keeps m running until ctx is done: faulted sessions are restarted,
// sessions that were not stopped on purpose are started and idle ones are
// put to sleep.
func Daemon(ctx context.Context, m manager.Manager, clk clock.Clock) {
	ticker := clk.Ticker(time.Second)
	defer ticker.Stop()
	// the same start error repeats every tick until the setup changes
	var lastErr string
	logStart := func(err error) {
		switch {
		case err == nil:
			lastErr = ""
		case err.Error() != lastErr:
			lastErr = err.Error()
			log.Errorln(err)
		default:
			log.Debugln(err)
		}
	}
	for {
		if m.Faulted() {
			log.Infoln("session is faulted, restarting")
			logStart(m.Restart())
		} else if !m.Running() && !m.ManuallyStopped() {
			logStart(m.Start())
		}
		if err := m.TrySleep(); err != nil {
			log.Errorln(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
