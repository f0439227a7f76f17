package tracker

import (
	"errors"
	"sync"
)

var (
	// ErrNotTracking indicates an operation that needs an active hike.
	ErrNotTracking = errors.New("tracking is not active")
	// ErrAlreadyTracking indicates Start was called twice.
	ErrAlreadyTracking = errors.New("tracking already active")
)

// Snapshot is the live state shown while a hike is being tracked.
type Snapshot struct {
	Tracking   bool    `json:"tracking"`
	Seconds    int64   `json:"seconds"`
	Elapsed    string  `json:"elapsed"`
	DistanceKm float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
	SpeedKmh   float64 `json:"speed_kmh"`
	Points     int     `json:"points"`
}

// Summary describes a finished hike.
type Summary struct {
	Seconds    int64
	Elapsed    string
	DistanceKm float64
	Distance   string
	Route      []Point
}

// Tracker integrates a stream of samples into a running distance total.
// Distance is a plain sum of consecutive haversine legs with no smoothing.
type Tracker struct {
	mu       sync.Mutex
	tracking bool
	seconds  int64
	distance float64
	speed    float64
	previous *Point
	route    []Point
}

// New returns an idle tracker.
func New() *Tracker {
	return &Tracker{}
}

// Start begins accumulating.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		return ErrAlreadyTracking
	}
	t.resetLocked()
	t.tracking = true
	return nil
}

// Observe folds a location sample into the running totals and returns the distance it added.
func (t *Tracker) Observe(sample Sample) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking {
		return 0, ErrNotTracking
	}

	added := 0.0
	if t.previous != nil {
		added = Haversine(*t.previous, sample.Point)
		t.distance += added
	}
	t.speed = SpeedKmh(sample.Speed)

	current := sample.Point
	t.previous = &current
	t.route = append(t.route, current)

	return added, nil
}

// Tick advances the elapsed counter by one second while tracking.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tracking {
		t.seconds++
	}
}

// Snapshot returns the current totals.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		Tracking:   t.tracking,
		Seconds:    t.seconds,
		Elapsed:    FormatElapsed(t.seconds),
		DistanceKm: t.distance,
		Distance:   FormatDistance(t.distance),
		SpeedKmh:   t.speed,
		Points:     len(t.route),
	}
}

// Stop ends the hike, returns its summary and resets every counter.
func (t *Tracker) Stop() (Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking {
		return Summary{}, ErrNotTracking
	}

	summary := Summary{
		Seconds:    t.seconds,
		Elapsed:    FormatElapsed(t.seconds),
		DistanceKm: t.distance,
		Distance:   FormatDistance(t.distance),
		Route:      append([]Point(nil), t.route...),
	}

	t.resetLocked()
	return summary, nil
}

func (t *Tracker) resetLocked() {
	t.tracking = false
	t.seconds = 0
	t.distance = 0
	t.speed = 0
	t.previous = nil
	t.route = nil
}
