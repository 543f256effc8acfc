package risk

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	// DefaultScore is returned for a (node, hour) pair absent from the
	// table. Risk absence must never block routing.
	DefaultScore = 1.0

	// UnloadedScore is the pessimistic default used when no table could be
	// loaded at all.
	UnloadedScore = 2.0

	MinScore = 0.0
	MaxScore = 10.0
)

type Record struct {
	NodeID int32
	Hour   int
	Score  float64
}

// Provider is the historical risk lookup table: score by (node, hour-of-day).
// Built once at load time, read-only afterwards.
type Provider struct {
	scores map[int64]float64
	loaded bool
}

func key(nodeID int32, hour int) int64 {
	return int64(nodeID)*24 + int64(hour)
}

// NewProvider builds the table from records. Scores are clamped to
// [MinScore, MaxScore].
func NewProvider(records []Record) *Provider {
	scores := make(map[int64]float64, len(records))
	for _, r := range records {
		score := r.Score
		if score < MinScore {
			score = MinScore
		}
		if score > MaxScore {
			score = MaxScore
		}
		scores[key(r.NodeID, r.Hour%24)] = score
	}
	return &Provider{scores: scores, loaded: true}
}

// NewEmptyProvider reports UnloadedScore for every lookup. Used when the
// risk table file is missing so routing still works.
func NewEmptyProvider() *Provider {
	return &Provider{scores: map[int64]float64{}, loaded: false}
}

// Score returns the risk score for a node at the given hour-of-day.
// Missing entries resolve to DefaultScore, not an error.
func (p *Provider) Score(nodeID int32, hour int) float64 {
	if !p.loaded {
		return UnloadedScore
	}
	if score, ok := p.scores[key(nodeID, hour%24)]; ok {
		return score
	}
	return DefaultScore
}

func (p *Provider) Loaded() bool {
	return p.loaded
}

func (p *Provider) NumRecords() int {
	return len(p.scores)
}

// LoadCSV reads a risk table with header node_id,hour,precomputed_risk.
func LoadCSV(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading risk csv header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("risk csv must have columns node_id,hour,precomputed_risk")
	}

	records := make([]Record, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading risk csv row: %w", err)
		}

		nodeID, err := strconv.ParseInt(row[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid node_id %q: %w", row[0], err)
		}
		hour, err := strconv.Atoi(row[1])
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("invalid hour %q", row[1])
		}
		score, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid risk score %q: %w", row[2], err)
		}

		records = append(records, Record{NodeID: int32(nodeID), Hour: hour, Score: score})
	}

	return NewProvider(records), nil
}
