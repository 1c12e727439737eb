package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGeneration(t *testing.T) {
	before := testutil.ToFloat64(GenerationTotal.WithLabelValues("test-mode", StatusError))
	ObserveGeneration("test-mode", false, 150*time.Millisecond)
	after := testutil.ToFloat64(GenerationTotal.WithLabelValues("test-mode", StatusError))
	assert.Equal(t, before+1, after)
}

func TestObserveStage(t *testing.T) {
	ObserveStage("test-stage", true, time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(StageDuration, "genui_stage_duration_seconds"))
}
