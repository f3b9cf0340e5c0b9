// Package needle animates the compass needle between azimuths.
package needle

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultDuration is the length of one needle animation.
const DefaultDuration = 250 * time.Millisecond

// Path returns the heading endpoints to animate between so that the needle
// turns at most 180 degrees. One endpoint may be shifted by 360.
func Path(old, next int) (from, to float64) {
	if math.Abs(float64(next-old)) > 180 {
		if old < next {
			return float64(old + 360), float64(next)
		}
		return float64(old), float64(next + 360)
	}
	return float64(old), float64(next)
}

// ScreenRotation converts a clockwise heading to a counter-clockwise screen
// rotation.
func ScreenRotation(heading float64) float64 {
	return -heading
}

// Animation is a timed rotation between two screen angles.
type Animation struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Progress returns the fraction of the animation elapsed at t, in [0, 1].
func (a Animation) Progress(t time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	p := float64(t.Sub(a.Start)) / float64(a.Duration)
	return math.Max(0, math.Min(1, p))
}

// Done reports whether the animation has reached its end at t.
func (a Animation) Done(t time.Time) bool {
	return a.Progress(t) >= 1
}

// At returns the rotation at t using accelerate-decelerate easing.
func (a Animation) At(t time.Time) float64 {
	p := a.Progress(t)
	if p >= 1 {
		return a.To
	}
	eased := math.Cos((p+1)*math.Pi)/2 + 0.5
	return a.From + (a.To-a.From)*eased
}

// Rotator receives screen rotations.
type Rotator interface {
	SetRotation(deg float64)
}

// Animator keeps the previously displayed azimuth and the current animation.
// Starting a new animation cancels the one in flight.
type Animator struct {
	mu       sync.Mutex
	clock    clock.Clock
	duration time.Duration
	previous int
	current  Animation
	started  bool
}

func NewAnimator(clk clock.Clock, duration time.Duration) *Animator {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Animator{clock: clk, duration: duration}
}

// SetDuration changes the duration of animations started afterwards.
func (a *Animator) SetDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.duration = d
}

func (a *Animator) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Previous returns the azimuth the needle was last sent to.
func (a *Animator) Previous() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.previous
}

// Animate starts rotating from the previous azimuth to azimuth along the
// shorter path and records azimuth as the new previous value.
func (a *Animator) Animate(azimuth int) Animation {
	a.mu.Lock()
	defer a.mu.Unlock()

	from, to := Path(a.previous, azimuth)
	a.current = Animation{
		From:     ScreenRotation(from),
		To:       ScreenRotation(to),
		Start:    a.clock.Now(),
		Duration: a.duration,
	}
	a.started = true
	a.previous = azimuth
	return a.current
}

// Current returns the animation in flight or the last finished one.
func (a *Animator) Current() (Animation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.started
}

// Rotation returns the screen rotation at the current clock time.
func (a *Animator) Rotation() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return ScreenRotation(float64(a.previous))
	}
	return a.current.At(a.clock.Now())
}

// Run pushes the rotation to r every frame until ctx is done.
func (a *Animator) Run(ctx context.Context, r Rotator, frame time.Duration) error {
	ticker := a.clock.Ticker(frame)
	defer ticker.Stop()

	last := math.NaN()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rot := a.Rotation()
			if rot != last {
				r.SetRotation(rot)
				last = rot
			}
		}
	}
}
