package pipeline

import (
	"time"

	"github.com/zen-systems/genui/pkg/stage"
)

// IntermediateResults holds stage outputs recorded during a run. Entries are
// added as stages complete and are not removed until the next run starts.
type IntermediateResults struct {
	DesignAnalysis *stage.DesignOutput `json:"designAnalysis,omitempty"`
	GenUI          *stage.UIOutput     `json:"genUI,omitempty"`
}

// Clone returns a deep copy.
func (r IntermediateResults) Clone() IntermediateResults {
	return IntermediateResults{
		DesignAnalysis: r.DesignAnalysis.Clone(),
		GenUI:          r.GenUI.Clone(),
	}
}

// ExecutionContext is the run state of an orchestrator.
type ExecutionContext struct {
	StartTime           time.Time           `json:"startTime"`
	CurrentPhase        Phase               `json:"currentPhase"`
	IntermediateResults IntermediateResults `json:"intermediateResults"`
}

// Clone returns a deep copy.
func (c ExecutionContext) Clone() ExecutionContext {
	return ExecutionContext{
		StartTime:           c.StartTime,
		CurrentPhase:        c.CurrentPhase,
		IntermediateResults: c.IntermediateResults.Clone(),
	}
}

func newExecutionContext(start time.Time) ExecutionContext {
	return ExecutionContext{StartTime: start, CurrentPhase: PhaseDesignAnalysis}
}
