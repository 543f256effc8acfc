package monitor

import (
	"sync"
	"time"

	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
)

type State int

const (
	StatePlanned State = iota
	StateActive
	StateDeviated
	StateHazardDetected
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateActive:
		return "active"
	case StateDeviated:
		return "deviated"
	case StateHazardDetected:
		return "hazard_detected"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Terminal reports whether the journey can no longer accept position updates.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

type AlertKind int

const (
	AlertDeviation AlertKind = iota
	AlertHazard
)

func (k AlertKind) String() string {
	if k == AlertDeviation {
		return "deviation"
	}
	return "hazard"
}

// Alert is a single traveler-facing warning raised by a status check.
type Alert struct {
	Kind      AlertKind `json:"-"`
	Type      string    `json:"type"`
	JourneyID string    `json:"journey_id"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Journey is the mutable tracking state of one active trip. All fields
// behind mu change only while a status check or reroute holds the lock, so
// concurrent updates for the same journey serialize instead of interleaving.
type Journey struct {
	ID   string
	Mode fusion.Mode

	mu          sync.Mutex
	route       routeassembler.Route
	state       State
	progressIdx int
	lastAlert   map[AlertKind]time.Time
	routeSeq    uint64
}

func NewJourney(id string, mode fusion.Mode, route routeassembler.Route) *Journey {
	return &Journey{
		ID:        id,
		Mode:      mode,
		route:     route,
		state:     StatePlanned,
		lastAlert: make(map[AlertKind]time.Time),
	}
}

func (j *Journey) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Journey) Route() routeassembler.Route {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.route
}

// canAlert applies the per-kind cooldown: repeated findings of the same kind
// are swallowed until the cooldown elapses.
func (j *Journey) canAlert(kind AlertKind, now time.Time, cooldown time.Duration) bool {
	last, ok := j.lastAlert[kind]
	if ok && now.Sub(last) < cooldown {
		return false
	}
	j.lastAlert[kind] = now
	return true
}
