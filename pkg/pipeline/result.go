package pipeline

import (
	"encoding/json"
	"time"

	"github.com/zen-systems/genui/pkg/schema"
)

// Result is the outcome of a generation run. Data is set only on success;
// ExecutionTime is always set.
type Result struct {
	Success       bool
	Data          *schema.Document
	Error         string
	ExecutionTime time.Duration
}

type resultJSON struct {
	Success       bool             `json:"success"`
	Data          *schema.Document `json:"data,omitempty"`
	Error         string           `json:"error,omitempty"`
	ExecutionTime int64            `json:"executionTime"`
}

// MarshalJSON encodes ExecutionTime in milliseconds.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Success:       r.Success,
		Data:          r.Data,
		Error:         r.Error,
		ExecutionTime: r.ExecutionTime.Milliseconds(),
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var v resultJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Result{
		Success:       v.Success,
		Data:          v.Data,
		Error:         v.Error,
		ExecutionTime: time.Duration(v.ExecutionTime) * time.Millisecond,
	}
	return nil
}

func success(doc *schema.Document, start time.Time) Result {
	return Result{Success: true, Data: doc, ExecutionTime: elapsed(start)}
}

func failure(err error, start time.Time) Result {
	return Result{Success: false, Error: err.Error(), ExecutionTime: elapsed(start)}
}

func elapsed(start time.Time) time.Duration {
	d := time.Since(start)
	if d < 0 {
		return 0
	}
	return d
}
