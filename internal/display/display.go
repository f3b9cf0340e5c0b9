package display

import "sync"

// Surface shows the azimuth text and the needle rotation.
type Surface interface {
	SetAzimuthText(text string)
	SetRotation(deg float64)
}

// Recorder is a Surface that keeps the last values it was given. It backs
// headless sessions so the latest text stays observable.
type Recorder struct {
	mu       sync.RWMutex
	text     string
	rotation float64
	updates  int
}

func (r *Recorder) SetAzimuthText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	r.updates++
}

func (r *Recorder) SetRotation(deg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotation = deg
}

func (r *Recorder) Text() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.text
}

func (r *Recorder) Rotation() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rotation
}

// Updates counts SetAzimuthText calls.
func (r *Recorder) Updates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updates
}
