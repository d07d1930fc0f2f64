package sensor

import "sync"

// State is the latest-value store shared by the poller, the capture engine
// and the web server. Readings that have never arrived stay nil and render
// as JSON null.
type State struct {
	mu          sync.Mutex
	temperature *float32
	humidity    *float32
	brightness  *float32
	loudness    *float32
}

// Snapshot is the wire view of State.
type Snapshot struct {
	Temperature *float32 `json:"temperature"`
	Humidity    *float32 `json:"humidity"`
	Brightness  *float32 `json:"brightness"`
	Loudness    *float32 `json:"loudness"`
}

// ApplyReading stores the non-nil fields of a climate reading.
func (s *State) ApplyReading(r Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Temperature != nil {
		t := *r.Temperature
		s.temperature = &t
	}
	if r.Humidity != nil {
		h := *r.Humidity
		s.humidity = &h
	}
}

// SetLoudness stores the capture engine's most recent block level.
func (s *State) SetLoudness(level float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := level
	s.loudness = &l
}

// Snapshot returns the current readings. The rig has no brightness sensor,
// so that field stays nil.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Temperature: s.temperature,
		Humidity:    s.humidity,
		Brightness:  s.brightness,
		Loudness:    s.loudness,
	}
}
