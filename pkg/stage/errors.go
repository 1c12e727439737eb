package stage

import (
	"errors"
	"fmt"
)

// Stage names used in errors, logs and metrics.
const (
	NameDesignAnalysis = "design-analysis"
	NameUIGeneration   = "ui-generation"
)

var (
	// ErrEmptyContent is returned when a stage is called without content.
	ErrEmptyContent = errors.New("content is required")
	// ErrEmptyDesign is returned when UI generation is called without a design.
	ErrEmptyDesign = errors.New("design is required")
)

// StageExecutionError tags a failure with the stage it came from.
type StageExecutionError struct {
	Stage     string
	Streaming bool
	Err       error
}

func (e *StageExecutionError) Error() string {
	if e == nil {
		return "stage execution failed"
	}
	label := stageLabel(e.Stage)
	if e.Streaming {
		return fmt.Sprintf("%s streaming failed: %v", label, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", label, e.Err)
}

func (e *StageExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MalformedOutputError reports UI-generation output that is not valid JSON.
// Raw holds the model text as received.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	if e == nil {
		return "malformed output"
	}
	return fmt.Sprintf("UI generation failed: malformed JSON output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StageOf returns the stage name carried by err, if any.
func StageOf(err error) (string, bool) {
	var stageErr *StageExecutionError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	var malformed *MalformedOutputError
	if errors.As(err, &malformed) {
		return NameUIGeneration, true
	}
	return "", false
}

func stageLabel(name string) string {
	switch name {
	case NameDesignAnalysis:
		return "Design analysis"
	case NameUIGeneration:
		return "UI generation"
	case "":
		return "Stage"
	default:
		return name
	}
}
