package fusion

import "fmt"

// Mode is a named weighting profile. The set is closed: routing matches
// exhaustively over these four and nothing else.
type Mode int

const (
	ModeSafe Mode = iota
	ModeBalanced
	ModeStealth
	ModeEscort
)

func (m Mode) String() string {
	switch m {
	case ModeSafe:
		return "safe"
	case ModeBalanced:
		return "balanced"
	case ModeStealth:
		return "stealth"
	case ModeEscort:
		return "escort"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "safe":
		return ModeSafe, nil
	case "balanced":
		return ModeBalanced, nil
	case "stealth":
		return ModeStealth, nil
	case "escort":
		return ModeEscort, nil
	}
	return 0, fmt.Errorf("invalid routing mode %q, must be one of: safe, balanced, stealth, escort", s)
}

func Modes() []Mode {
	return []Mode{ModeSafe, ModeBalanced, ModeStealth, ModeEscort}
}

// CrowdRule determines how crowd density enters the edge weight.
type CrowdRule int

const (
	// CrowdNeutral ignores density.
	CrowdNeutral CrowdRule = iota
	// CrowdPenalize prices density in: busier is costlier.
	CrowdPenalize
	// CrowdReward treats density as reduced risk: busier is cheaper.
	CrowdReward
	// CrowdPenalizeIsolation prices the absence of a crowd: emptier is
	// costlier.
	CrowdPenalizeIsolation
)

// ModeParams is the fixed parameter tuple of a mode.
type ModeParams struct {
	RiskSensitivity  float64
	CrowdCoefficient float64
	CrowdRule        CrowdRule
}

// Params returns the tuning of a mode. This switch is the single place
// mode parameters live; it covers every mode and must stay exhaustive.
func (m Mode) Params() ModeParams {
	switch m {
	case ModeSafe:
		return ModeParams{RiskSensitivity: 0.8, CrowdCoefficient: 15.0, CrowdRule: CrowdReward}
	case ModeBalanced:
		return ModeParams{RiskSensitivity: 0.5, CrowdCoefficient: 0.0, CrowdRule: CrowdNeutral}
	case ModeStealth:
		return ModeParams{RiskSensitivity: 0.2, CrowdCoefficient: 75.0, CrowdRule: CrowdPenalize}
	case ModeEscort:
		return ModeParams{RiskSensitivity: 1.0, CrowdCoefficient: 15.0, CrowdRule: CrowdPenalizeIsolation}
	}
	// unreachable for the closed set above
	panic(fmt.Sprintf("unknown routing mode %d", int(m)))
}
