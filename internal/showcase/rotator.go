// Package showcase drives the rotating product display.
package showcase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sleekspace/storefront/internal/model"
)

// ErrSlideOutOfRange is returned by GoTo for an invalid slide index.
var ErrSlideOutOfRange = errors.New("showcase: slide index out of range")

// Rotator cycles through an ordered slide list on a fixed interval, with
// manual-override navigation. Manual navigation resets the autoplay timer.
type Rotator struct {
	interval time.Duration
	bump     chan struct{}

	mu     sync.Mutex
	slides []model.Slide
	idx    int
}

// New creates a Rotator over slides. A non-positive interval falls back
// to 5 seconds.
func New(slides []model.Slide, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Rotator{
		interval: interval,
		bump:     make(chan struct{}, 1),
		slides:   slides,
	}
}

// Start runs the autoplay loop until ctx is done.
func (r *Rotator) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *Rotator) loop(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.advance(1)
		case <-r.bump:
			t.Reset(r.interval)
		}
	}
}

func (r *Rotator) advance(step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.slides)
	if n == 0 {
		return
	}
	r.idx = ((r.idx+step)%n + n) % n
}

// poke resets the autoplay timer after a manual override.
func (r *Rotator) poke() {
	select {
	case r.bump <- struct{}{}:
	default:
	}
}

// Next advances to the following slide, wrapping at the end.
func (r *Rotator) Next() {
	r.advance(1)
	r.poke()
}

// Prev moves to the previous slide, wrapping at the start.
func (r *Rotator) Prev() {
	r.advance(-1)
	r.poke()
}

// GoTo jumps to the slide at index i.
func (r *Rotator) GoTo(i int) error {
	r.mu.Lock()
	if i < 0 || i >= len(r.slides) {
		r.mu.Unlock()
		return ErrSlideOutOfRange
	}
	r.idx = i
	r.mu.Unlock()
	r.poke()
	return nil
}

// Current returns the displayed slide and its index. ok is false when the
// slide list is empty.
func (r *Rotator) Current() (s model.Slide, idx int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		return model.Slide{}, 0, false
	}
	return r.slides[r.idx], r.idx, true
}

// Slides returns a copy of the slide list in display order.
func (r *Rotator) Slides() []model.Slide {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Slide, len(r.slides))
	copy(out, r.slides)
	return out
}
