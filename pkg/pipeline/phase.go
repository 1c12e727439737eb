package pipeline

import "fmt"

// Phase is the orchestrator's position in the stage sequence. Phases only
// move forward within a run.
type Phase int

const (
	PhaseDesignAnalysis Phase = iota
	PhaseGenUI
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseDesignAnalysis:
		return "design-analysis"
	case PhaseGenUI:
		return "gen-ui"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "design-analysis":
		*p = PhaseDesignAnalysis
	case "gen-ui":
		*p = PhaseGenUI
	case "completed":
		*p = PhaseCompleted
	default:
		return fmt.Errorf("unknown phase %q", string(text))
	}
	return nil
}
