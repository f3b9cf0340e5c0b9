package heading

import "time"

// Record is one published heading update. From and To are the screen
// rotation endpoints of the needle animation started for it.
type Record struct {
	Session  string
	Seq      uint64
	Azimuth  int
	Previous int
	Text     string
	Mode     Mode
	From     float64
	To       float64
	Duration time.Duration
	SensorID string
	SysTicks int64
}
