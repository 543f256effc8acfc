package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/datastructure"
	"github.com/saaj376/SafeTrace/pkg/fusion"
	"github.com/saaj376/SafeTrace/pkg/geo"
	"github.com/saaj376/SafeTrace/pkg/routeassembler"
	"github.com/saaj376/SafeTrace/pkg/server"
)

const (
	// DefaultDeviationThresholdMeters is how far off the planned polyline a
	// traveler may drift before the journey counts as deviated. Also used as
	// the arrival radius around the destination.
	DefaultDeviationThresholdMeters = 50.0

	// DefaultHazardLookaheadNodes is how many upcoming route nodes a status
	// check scans for hazards.
	DefaultHazardLookaheadNodes = 5

	// DefaultHazardRiskScore is the precomputed risk score at or above which
	// an upcoming node counts as a hazard.
	DefaultHazardRiskScore = 7.0

	// DefaultAlertCooldown suppresses repeat alerts of the same kind.
	DefaultAlertCooldown = 60 * time.Second
)

type RiskProvider interface {
	Score(nodeID int32, hour int) float64
}

// CheckResult is the outcome of one position update.
type CheckResult struct {
	JourneyID       string  `json:"journey_id"`
	State           string  `json:"state"`
	DeviationMeters float64 `json:"deviation_meters"`
	Arrived         bool    `json:"arrived"`
	NeedsReroute    bool    `json:"needs_reroute"`
	Alerts          []Alert `json:"alerts"`
}

// Monitor tracks active journeys and evaluates every incoming position
// against the planned route: off-route distance, upcoming hazards and
// arrival at the destination.
type Monitor struct {
	risk      RiskProvider
	densities crowd.Provider
	logger    *slog.Logger

	deviationThresholdM float64
	hazardLookahead     int
	hazardRiskScore     float64
	alertCooldown       time.Duration

	mu       sync.RWMutex
	journeys map[string]*Journey
}

func NewMonitor(risk RiskProvider, densities crowd.Provider, logger *slog.Logger) *Monitor {
	return &Monitor{
		risk:                risk,
		densities:           densities,
		logger:              logger,
		deviationThresholdM: DefaultDeviationThresholdMeters,
		hazardLookahead:     DefaultHazardLookaheadNodes,
		hazardRiskScore:     DefaultHazardRiskScore,
		alertCooldown:       DefaultAlertCooldown,
		journeys:            make(map[string]*Journey),
	}
}

// SetThresholds overrides the default detection parameters. Zero values keep
// the current setting.
func (m *Monitor) SetThresholds(deviationM float64, lookahead int, hazardScore float64, cooldown time.Duration) {
	if deviationM > 0 {
		m.deviationThresholdM = deviationM
	}
	if lookahead > 0 {
		m.hazardLookahead = lookahead
	}
	if hazardScore > 0 {
		m.hazardRiskScore = hazardScore
	}
	if cooldown > 0 {
		m.alertCooldown = cooldown
	}
}

// StartJourney registers a planned route for tracking and activates it.
func (m *Monitor) StartJourney(id string, mode fusion.Mode, route routeassembler.Route) (*Journey, error) {
	if id == "" {
		return nil, server.NewErrorf(server.ErrBadParamInput, "journey id must not be empty")
	}
	if len(route.Coordinates) == 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "journey route must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.journeys[id]; ok {
		return nil, server.NewErrorf(server.ErrConflict, "journey %s is already being tracked", id)
	}
	j := NewJourney(id, mode, route)
	j.state = StateActive
	m.journeys[id] = j

	m.logger.Info("journey started", slog.String("journey_id", id),
		slog.String("mode", mode.String()), slog.Float64("distance_km", route.DistanceKm))
	return j, nil
}

func (m *Monitor) Get(id string) (*Journey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.journeys[id]
	if !ok {
		return nil, server.NewErrorf(server.ErrNotFound, "journey %s is not being tracked", id)
	}
	return j, nil
}

// CheckStatus evaluates one reported position. Deviation wins over hazard:
// an off-route traveler is warned about the deviation first, the hazard scan
// along a route they left would be noise.
func (m *Monitor) CheckStatus(journeyID string, lat, lon float64, at time.Time) (CheckResult, error) {
	j, err := m.Get(journeyID)
	if err != nil {
		return CheckResult{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return CheckResult{}, server.NewErrorf(server.ErrConflict,
			"journey %s already ended in state %s", journeyID, j.state)
	}

	pos := datastructure.NewCoordinate(lat, lon)
	result := CheckResult{JourneyID: journeyID}

	dest := j.route.Coordinates[len(j.route.Coordinates)-1]
	if geo.CalculateHaversineDistance(lat, lon, dest.Lat, dest.Lon)*1000.0 <= m.deviationThresholdM {
		j.state = StateCompleted
		result.State = j.state.String()
		result.Arrived = true
		m.logger.Info("journey completed", slog.String("journey_id", journeyID))
		return result, nil
	}

	j.progressIdx = m.advanceProgress(j, pos)
	result.DeviationMeters = geo.MinDistanceToPolyline(pos, j.route.Coordinates)

	switch {
	case result.DeviationMeters > m.deviationThresholdM:
		j.state = StateDeviated
		result.NeedsReroute = true
		if j.canAlert(AlertDeviation, at, m.alertCooldown) {
			result.Alerts = append(result.Alerts, Alert{
				Kind:      AlertDeviation,
				Type:      AlertDeviation.String(),
				JourneyID: journeyID,
				Message:   "you have left the planned route",
				At:        at,
			})
		}
	case m.hazardAhead(j, at):
		j.state = StateHazardDetected
		result.NeedsReroute = true
		if j.canAlert(AlertHazard, at, m.alertCooldown) {
			result.Alerts = append(result.Alerts, Alert{
				Kind:      AlertHazard,
				Type:      AlertHazard.String(),
				JourneyID: journeyID,
				Message:   "elevated risk ahead on the planned route",
				At:        at,
			})
		}
	default:
		j.state = StateActive
	}

	result.State = j.state.String()
	return result, nil
}

// advanceProgress finds the closest route vertex at or after the current
// progress marker. Progress never moves backwards, so loops in the route do
// not confuse the hazard window.
func (m *Monitor) advanceProgress(j *Journey, pos datastructure.Coordinate) int {
	best := j.progressIdx
	bestDist := geo.CalculateHaversineDistance(pos.Lat, pos.Lon,
		j.route.Coordinates[best].Lat, j.route.Coordinates[best].Lon)
	for i := j.progressIdx + 1; i < len(j.route.Coordinates); i++ {
		c := j.route.Coordinates[i]
		d := geo.CalculateHaversineDistance(pos.Lat, pos.Lon, c.Lat, c.Lon)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// hazardAhead scans the lookahead window past the progress marker. A node
// with a risk score at or above the hazard threshold is always a hazard; in
// stealth mode a crowded upcoming segment is one as well.
func (m *Monitor) hazardAhead(j *Journey, at time.Time) bool {
	hour := at.Hour()
	end := j.progressIdx + m.hazardLookahead
	if end > len(j.route.NodeIDs)-1 {
		end = len(j.route.NodeIDs) - 1
	}

	for i := j.progressIdx + 1; i <= end; i++ {
		if m.risk.Score(j.route.NodeIDs[i], hour) >= m.hazardRiskScore {
			return true
		}
	}

	if j.Mode == fusion.ModeStealth && m.densities != nil {
		for i := j.progressIdx; i < end && i < len(j.route.Segments); i++ {
			if m.densities.Density(j.route.Segments[i].EdgeID) == crowd.High {
				return true
			}
		}
	}
	return false
}

// Complete force-finishes a journey regardless of position.
func (m *Monitor) Complete(journeyID string) error {
	return m.endJourney(journeyID, StateCompleted)
}

// Abort cancels tracking for a journey.
func (m *Monitor) Abort(journeyID string) error {
	return m.endJourney(journeyID, StateAborted)
}

func (m *Monitor) endJourney(journeyID string, final State) error {
	j, err := m.Get(journeyID)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return server.NewErrorf(server.ErrConflict,
			"journey %s already ended in state %s", journeyID, j.state)
	}
	j.state = final
	m.logger.Info("journey ended", slog.String("journey_id", journeyID), slog.String("state", final.String()))
	return nil
}
