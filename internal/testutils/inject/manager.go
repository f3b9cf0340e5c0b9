// Package inject provides managers whose methods can be replaced in tests.
package inject

import (
	"compass_apiserver/internal/heading"
	"compass_apiserver/internal/manager"
)

// Manager is an injected manager.
type Manager struct {
	manager.Manager
	StartFunc           func() error
	StopFunc            func() error
	RestartFunc         func() error
	ReadFunc            func(cursor int64) (int64, []heading.Record, error)
	RunningFunc         func() bool
	ManuallyStoppedFunc func() bool
	FaultedFunc         func() bool
	ModeFunc            func() heading.Mode
	SessionFunc         func() string
	AzimuthFunc         func() int
	TextFunc            func() string
	ListDevFunc         func() ([]string, error)
	ProbeDevFunc        func() ([]string, error)
	TrySleepFunc        func() error
}

// Start calls the injected Start or the real version.
func (m *Manager) Start() error {
	if m.StartFunc == nil {
		return m.Manager.Start()
	}
	return m.StartFunc()
}

// Stop calls the injected Stop or the real version.
func (m *Manager) Stop() error {
	if m.StopFunc == nil {
		return m.Manager.Stop()
	}
	return m.StopFunc()
}

// Restart calls the injected Restart or the real version.
func (m *Manager) Restart() error {
	if m.RestartFunc == nil {
		return m.Manager.Restart()
	}
	return m.RestartFunc()
}

// Read calls the injected Read or the real version.
func (m *Manager) Read(cursor int64) (int64, []heading.Record, error) {
	if m.ReadFunc == nil {
		return m.Manager.Read(cursor)
	}
	return m.ReadFunc(cursor)
}

// Running calls the injected Running or the real version.
func (m *Manager) Running() bool {
	if m.RunningFunc == nil {
		return m.Manager.Running()
	}
	return m.RunningFunc()
}

// ManuallyStopped calls the injected ManuallyStopped or the real version.
func (m *Manager) ManuallyStopped() bool {
	if m.ManuallyStoppedFunc == nil {
		return m.Manager.ManuallyStopped()
	}
	return m.ManuallyStoppedFunc()
}

// Faulted calls the injected Faulted or the real version.
func (m *Manager) Faulted() bool {
	if m.FaultedFunc == nil {
		return m.Manager.Faulted()
	}
	return m.FaultedFunc()
}

// Mode calls the injected Mode or the real version.
func (m *Manager) Mode() heading.Mode {
	if m.ModeFunc == nil {
		return m.Manager.Mode()
	}
	return m.ModeFunc()
}

// Session calls the injected Session or the real version.
func (m *Manager) Session() string {
	if m.SessionFunc == nil {
		return m.Manager.Session()
	}
	return m.SessionFunc()
}

// Azimuth calls the injected Azimuth or the real version.
func (m *Manager) Azimuth() int {
	if m.AzimuthFunc == nil {
		return m.Manager.Azimuth()
	}
	return m.AzimuthFunc()
}

// Text calls the injected Text or the real version.
func (m *Manager) Text() string {
	if m.TextFunc == nil {
		return m.Manager.Text()
	}
	return m.TextFunc()
}

// ListDev calls the injected ListDev or the real version.
func (m *Manager) ListDev() ([]string, error) {
	if m.ListDevFunc == nil {
		return m.Manager.ListDev()
	}
	return m.ListDevFunc()
}

// ProbeDev calls the injected ProbeDev or the real version.
func (m *Manager) ProbeDev() ([]string, error) {
	if m.ProbeDevFunc == nil {
		return m.Manager.ProbeDev()
	}
	return m.ProbeDevFunc()
}

// TrySleep calls the injected TrySleep or the real version.
func (m *Manager) TrySleep() error {
	if m.TrySleepFunc == nil {
		return m.Manager.TrySleep()
	}
	return m.TrySleepFunc()
}
