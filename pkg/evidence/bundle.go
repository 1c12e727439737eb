package evidence

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/zen-systems/genui/pkg/artifact"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/stage"
)

// maxInlineOutput is the longest stage output stored verbatim; longer
// outputs are stored as a hash.
const maxInlineOutput = 4096

// Run describes a finished pipeline run to record.
type Run struct {
	Mode    string
	Content string
	Models  pipeline.ModelsConfig
	Result  pipeline.Result
	Context pipeline.ExecutionContext
}

// Record writes the bundle for run under baseDir/<new run id> and returns
// the run directory.
func Record(fs afero.Fs, baseDir string, run Run) (string, error) {
	w, err := NewWriter(fs, baseDir, uuid.NewString())
	if err != nil {
		return "", err
	}

	record := RunRecord{
		ID:              filepath.Base(w.RunDir()),
		Timestamp:       run.Context.StartTime.UTC(),
		Mode:            run.Mode,
		InputHash:       artifact.HashString(run.Content),
		DesignModel:     run.Models.DesignModel.Model,
		UIModel:         run.Models.UIModel.Model,
		Success:         run.Result.Success,
		Error:           run.Result.Error,
		ExecutionMillis: run.Result.ExecutionTime.Milliseconds(),
		FinalPhase:      run.Context.CurrentPhase.String(),
		ToolVersions:    map[string]string{"go": runtime.Version()},
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if err := w.WriteRun(record); err != nil {
		return "", err
	}

	results := run.Context.IntermediateResults
	if d := results.DesignAnalysis; d != nil {
		if err := w.WriteStage(stageRecord(stage.NameDesignAnalysis, d.Artifact)); err != nil {
			return "", err
		}
	}
	if u := results.GenUI; u != nil {
		if err := w.WriteStage(stageRecord(stage.NameUIGeneration, u.Artifact)); err != nil {
			return "", err
		}
	}
	if run.Result.Success && run.Result.Data != nil {
		if err := w.WriteUI(run.Result.Data); err != nil {
			return "", err
		}
	}

	if err := w.WriteManifest(); err != nil {
		return "", err
	}

	return w.RunDir(), nil
}

func stageRecord(name string, art *artifact.Artifact) StageRecord {
	rec := StageRecord{Name: name}
	if art == nil {
		return rec
	}
	rec.Provider = art.Provider
	rec.Model = art.Model
	rec.PromptHash = art.PromptHash
	rec.OutputLength = len(art.Content)
	rec.CreatedAt = art.CreatedAt
	if len(art.Content) <= maxInlineOutput {
		rec.Output = art.Content
	} else {
		rec.OutputHash = artifact.HashString(art.Content)
	}
	return rec
}
