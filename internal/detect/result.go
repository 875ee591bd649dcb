package detect

import (
	"fmt"

	"github.com/coreman2200/arcaluminis-wiring/internal/wiring"
)

type Level int

const (
	Weak Level = iota
	Medium
	Strong
)

func (l Level) String() string {
	switch l {
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	case Weak:
		return "weak"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	for _, v := range []Level{Weak, Medium, Strong} {
		if v.String() == string(b) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("detect: unknown level %q", b)
}

// Votes counts how consecutive lines relate to each other.
type Votes struct {
	Reversed int `json:"reversed"`
	Forward  int `json:"forward"`
}

func (v Votes) Total() int { return v.Reversed + v.Forward }

// Ratio is the reversed share of all votes, 0 without votes.
func (v Votes) Ratio() float64 {
	if v.Total() == 0 {
		return 0
	}
	return float64(v.Reversed) / float64(v.Total())
}

// Signals is the evidence behind a Result.
type Signals struct {
	Corners [4]int `json:"corners"`
	Modes   [4]int `json:"modes"`
	Rows    Votes  `json:"rows"`
	Columns Votes  `json:"columns"`
	Marker  bool   `json:"marker"`
}

func (s Signals) Corner(c wiring.Corner) int { return s.Corners[c] }
func (s Signals) Mode(m wiring.Mode) int     { return s.Modes[m] }

type Result struct {
	Spec       wiring.Spec `json:"spec"`
	Confidence float64     `json:"confidence"`
	Level      Level       `json:"level"`
	Score      int         `json:"score"`
	// Fallback is set when Spec is the unverified default.
	Fallback bool    `json:"fallback"`
	Hinted   bool    `json:"hinted,omitempty"`
	Signals  Signals `json:"signals"`
}
