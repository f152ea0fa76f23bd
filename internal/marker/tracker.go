package marker

import (
	"sync"

	"github.com/asada-m/read-digits/pkg/geometry"

	"gocv.io/x/gocv"
)

// Tracker re-detects the display quad on every frame. Handheld still series
// drift between shots, so a single reference detection is not enough; when a
// frame's markers cannot be read, the quad from the last successful
// detection stands in. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	detect func(gocv.Mat) (geometry.Quad, error)
	last   geometry.Quad
	seen   bool
}

// NewTracker creates a tracker detecting the given marker ids.
func NewTracker(ids IDs) *Tracker {
	det := NewDetector()
	return &Tracker{detect: func(m gocv.Mat) (geometry.Quad, error) {
		return det.DetectQuad(m, ids)
	}}
}

// Quad detects the display quad in frame. On detection failure the last
// successfully detected quad is returned; the error surfaces only while no
// frame has ever detected.
func (t *Tracker) Quad(frame gocv.Mat) (geometry.Quad, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, err := t.detect(frame)
	if err != nil {
		if t.seen {
			return t.last, nil
		}
		return geometry.Quad{}, err
	}
	t.last, t.seen = q, true
	return q, nil
}

// Current returns the most recently detected quad, if any frame has
// detected yet.
func (t *Tracker) Current() (geometry.Quad, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.seen
}
