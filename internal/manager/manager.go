package manager

import "compass_apiserver/internal/heading"

type Manager interface {
	Start() error
	Stop() error
	Restart() error
	Read(int64) (int64, []heading.Record, error)
	Running() bool
	ManuallyStopped() bool
	Faulted() bool
	Mode() heading.Mode
	Session() string
	Azimuth() int
	Text() string
	ListDev() ([]string, error)
	ProbeDev() ([]string, error)
	TrySleep() error
}
