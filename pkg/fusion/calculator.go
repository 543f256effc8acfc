package fusion

import (
	"time"

	"github.com/saaj376/SafeTrace/pkg/crowd"
	"github.com/saaj376/SafeTrace/pkg/datastructure"
)

const (
	// WeightEpsilon floors every computed edge weight. The search
	// algorithm requires strictly positive weights.
	WeightEpsilon = 1.0

	// riskWeightScale converts a 0-10 risk score into seconds of penalty
	// before mode sensitivity is applied.
	riskWeightScale = 10.0
)

// RiskProvider is the historical risk lookup consumed by fusion.
type RiskProvider interface {
	Score(nodeID int32, hour int) float64
}

// EnvironmentProvider supplies the multiplicative darkness and weather
// factors for a point in time.
type EnvironmentProvider interface {
	Penalty(t time.Time) (darkness float64, weather float64)
}

// WeightFunc prices one edge. It is evaluated lazily during traversal; the
// engine never materializes a re-weighted graph copy.
type WeightFunc func(edge datastructure.Edge) float64

// Calculator fuses historical risk, environmental penalties and crowd
// density into per-edge traversal costs.
type Calculator struct {
	graph *datastructure.Graph
	risk  RiskProvider
	env   EnvironmentProvider
}

func NewCalculator(graph *datastructure.Graph, risk RiskProvider, env EnvironmentProvider) *Calculator {
	return &Calculator{graph: graph, risk: risk, env: env}
}

// Bind fixes mode, time and a crowd snapshot, returning a pure weight
// function. Everything captured is immutable: the hour, the environmental
// factors, the mode parameters and the density snapshot are resolved here,
// once, so concurrent searches sharing the graph need no locking.
func (c *Calculator) Bind(mode Mode, at time.Time, densities crowd.Provider) WeightFunc {
	params := mode.Params()
	hour := at.Hour()
	darkness, weather := c.env.Penalty(at)

	return func(edge datastructure.Edge) float64 {
		fromRisk := c.risk.Score(edge.FromNodeID, hour)
		toRisk := c.risk.Score(edge.ToNodeID, hour)
		riskComponent := (fromRisk + toRisk) / 2.0 * darkness * weather

		crowdAdjustment := crowdAdjust(params, densities.Density(edge.EdgeID))

		weight := edge.TravelCost + params.RiskSensitivity*riskWeightScale*riskComponent + crowdAdjustment
		if weight < WeightEpsilon {
			return WeightEpsilon
		}
		return weight
	}
}

func crowdAdjust(params ModeParams, level crowd.Level) float64 {
	if level == crowd.Unknown {
		// no signal is neutral, never a penalty or bonus
		return 0.0
	}
	switch params.CrowdRule {
	case CrowdPenalize:
		return params.CrowdCoefficient * level.Fraction()
	case CrowdReward:
		return -params.CrowdCoefficient * level.Fraction()
	case CrowdPenalizeIsolation:
		return params.CrowdCoefficient * (1.0 - level.Fraction())
	default:
		return 0.0
	}
}
