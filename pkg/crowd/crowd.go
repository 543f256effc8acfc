package crowd

// Level is the quantized crowd density of a road segment. Unknown means the
// tracker has no recent signal for the segment's cell; fusion treats it as
// neutral.
type Level int

const (
	Unknown Level = iota
	Low
	Medium
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Fraction maps a level to the share of peak density it represents.
func (l Level) Fraction() float64 {
	switch l {
	case Low:
		return 1.0 / 3.0
	case Medium:
		return 2.0 / 3.0
	case High:
		return 1.0
	default:
		return 0.0
	}
}

func quantize(score float64) Level {
	switch {
	case score < 1.0/3.0:
		return Low
	case score < 2.0/3.0:
		return Medium
	default:
		return High
	}
}

// Provider exposes the current crowd-density level per edge.
type Provider interface {
	Density(edgeID int32) Level
}
