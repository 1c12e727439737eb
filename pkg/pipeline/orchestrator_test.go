package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/stage"
)

type fixture struct {
	design *adapter.MockClient
	ui     *adapter.MockClient
	orch   *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		design: &adapter.MockClient{Response: adapter.MockDesign},
		ui:     &adapter.MockClient{Response: adapter.MockDocument},
	}
	factory := adapter.NewFactory(
		adapter.MockProvider("design", f.design, "design-1"),
		adapter.MockProvider("ui", f.ui, "ui-1"),
	)
	f.orch = New(
		WithFactory(factory),
		WithDefaults(ModelsConfig{
			DesignModel: adapter.Config{APIKey: "design-key", Model: "design-1"},
			UIModel:     adapter.Config{APIKey: "ui-key", Model: "ui-1"},
		}),
	)
	return f
}

type runFunc func(o *Orchestrator, ctx context.Context, p Params) Result

var modes = map[string]runFunc{
	ModeStandard: (*Orchestrator).Generate,
	ModeComposed: (*Orchestrator).GenerateComposed,
}

func TestPhasesAdvanceInOrder(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			var seen []Phase
			f.design.Handler = func(context.Context, string, adapter.CallOptions) (string, error) {
				seen = append(seen, f.orch.ExecutionContext().CurrentPhase)
				return "spec", nil
			}
			f.ui.Handler = func(context.Context, string, adapter.CallOptions) (string, error) {
				seen = append(seen, f.orch.ExecutionContext().CurrentPhase)
				return `{"root":{"id":"r","type":"container"}}`, nil
			}

			res := run(f.orch, context.Background(), Params{Content: "Welcome to X"})
			if !res.Success {
				t.Fatalf("expected success, got %q", res.Error)
			}
			seen = append(seen, f.orch.ExecutionContext().CurrentPhase)

			want := []Phase{PhaseDesignAnalysis, PhaseGenUI, PhaseCompleted}
			if len(seen) != len(want) {
				t.Fatalf("phases = %v, want %v", seen, want)
			}
			for i := range want {
				if seen[i] != want[i] {
					t.Fatalf("phases = %v, want %v", seen, want)
				}
			}
		})
	}
}

func TestSuccessRecordsBothResults(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			res := run(f.orch, context.Background(), Params{Content: "Welcome to X"})
			if !res.Success || res.Data == nil || res.Error != "" {
				t.Fatalf("unexpected result: %+v", res)
			}

			ir := f.orch.IntermediateResults()
			if ir.DesignAnalysis == nil || ir.GenUI == nil {
				t.Fatalf("expected both intermediate results, got %+v", ir)
			}
			if !ir.GenUI.Document.Equal(res.Data) {
				t.Fatalf("genUI output differs from result data")
			}
		})
	}
}

func TestExecutionTimeNonNegative(t *testing.T) {
	f := newFixture()
	f.design.Handler = func(context.Context, string, adapter.CallOptions) (string, error) {
		time.Sleep(5 * time.Millisecond)
		return "spec", nil
	}

	before := time.Now()
	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	wall := time.Since(before)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.ExecutionTime < 5*time.Millisecond || res.ExecutionTime > wall {
		t.Fatalf("execution time %v outside [5ms, %v]", res.ExecutionTime, wall)
	}

	f.ui.Err = errors.New("boom")
	res = f.orch.Generate(context.Background(), Params{Content: "c"})
	if res.Success || res.ExecutionTime < 5*time.Millisecond {
		t.Fatalf("unexpected failure result: %+v", res)
	}
}

func TestDesignFailure(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.design.Err = errors.New("model overloaded")

			res := run(f.orch, context.Background(), Params{Content: "c"})
			if res.Success || res.Data != nil {
				t.Fatalf("expected failure, got %+v", res)
			}
			if res.Error != "Design analysis failed: model overloaded" {
				t.Fatalf("error = %q", res.Error)
			}

			ir := f.orch.IntermediateResults()
			if ir.GenUI != nil || ir.DesignAnalysis != nil {
				t.Fatalf("expected no intermediate results, got %+v", ir)
			}
			if len(f.ui.Calls()) != 0 {
				t.Fatalf("ui stage must not run")
			}
			if phase := f.orch.ExecutionContext().CurrentPhase; phase != PhaseDesignAnalysis {
				t.Fatalf("phase = %v", phase)
			}
		})
	}
}

func TestUIFailureKeepsDesignAnalysis(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.ui.Err = errors.New("timeout")

			res := run(f.orch, context.Background(), Params{Content: "c"})
			if res.Success {
				t.Fatalf("expected failure")
			}
			if res.Error != "UI generation failed: timeout" {
				t.Fatalf("error = %q", res.Error)
			}

			ir := f.orch.IntermediateResults()
			if ir.DesignAnalysis == nil {
				t.Fatalf("expected design analysis to be kept")
			}
			if ir.GenUI != nil {
				t.Fatalf("unexpected genUI result")
			}
			if phase := f.orch.ExecutionContext().CurrentPhase; phase != PhaseGenUI {
				t.Fatalf("phase = %v", phase)
			}
		})
	}
}

func TestUnsupportedModelMakesNoCalls(t *testing.T) {
	f := newFixture()
	res := f.orch.Generate(context.Background(), Params{
		Content:      "c",
		ModelsConfig: &ModelsConfig{UIModel: adapter.Config{Model: "gpt-3"}},
	})
	if res.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Error, "unsupported model") {
		t.Fatalf("error = %q", res.Error)
	}
	if n := len(f.design.Calls()) + len(f.ui.Calls()); n != 0 {
		t.Fatalf("expected no model calls, got %d", n)
	}
}

func TestMissingCredential(t *testing.T) {
	f := newFixture()
	f.orch.defaults.DesignModel.APIKey = ""

	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	if res.Success || !strings.Contains(res.Error, adapter.ErrMissingCredential.Error()) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.design.Calls()) != 0 {
		t.Fatalf("expected no model calls")
	}
}

func TestDesignTextPassedToUIStage(t *testing.T) {
	f := newFixture()
	f.design.Response = "\n  Dark palette, one column.  \n"

	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	prompts := f.ui.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one ui call, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "Design Specification: Dark palette, one column.\n") {
		t.Fatalf("design text not passed through:\n%s", prompts[0])
	}
}

func TestFallbackDesignContext(t *testing.T) {
	f := newFixture()
	f.orch.Generate(context.Background(), Params{Content: "Welcome to X"})

	prompts := f.design.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one design call")
	}
	if !strings.Contains(prompts[0], "Modern, clean design with good usability") {
		t.Fatalf("fallback design context missing:\n%s", prompts[0])
	}
	if !strings.Contains(prompts[0], "Welcome to X") {
		t.Fatalf("content missing")
	}
}

func TestMalformedUIOutput(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.ui.Response = "{not json"

			res := run(f.orch, context.Background(), Params{Content: "c"})
			if res.Success {
				t.Fatalf("expected failure")
			}
			if !strings.Contains(res.Error, "UI generation failed") {
				t.Fatalf("error = %q", res.Error)
			}
		})
	}
}

func TestOffShapeJSONAccepted(t *testing.T) {
	f := newFixture()
	f.ui.Response = `{"foo":1}`

	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if res.Data.String() != `{"foo":1}` {
		t.Fatalf("data = %s", res.Data)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	f := newFixture()
	f.orch.Generate(context.Background(), Params{Content: "c"})

	ec := f.orch.ExecutionContext()
	ec.CurrentPhase = PhaseDesignAnalysis
	ec.IntermediateResults.DesignAnalysis.Design = "mutated"
	ec.IntermediateResults.GenUI.Artifact.Content = "mutated"
	ec.IntermediateResults.GenUI = nil

	ir := f.orch.IntermediateResults()
	ir.DesignAnalysis.Design = "mutated too"

	fresh := f.orch.ExecutionContext()
	if fresh.CurrentPhase != PhaseCompleted {
		t.Fatalf("phase changed through copy")
	}
	if fresh.IntermediateResults.DesignAnalysis.Design == "mutated" || fresh.IntermediateResults.DesignAnalysis.Design == "mutated too" {
		t.Fatalf("design changed through copy")
	}
	if fresh.IntermediateResults.GenUI == nil || fresh.IntermediateResults.GenUI.Artifact.Content == "mutated" {
		t.Fatalf("genUI changed through copy")
	}
}

func TestResultDataIsCopy(t *testing.T) {
	f := newFixture()
	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	raw := res.Data.Raw()
	raw[0] = '['

	if err := res.Data.UnmarshalJSON([]byte(`{"other":true}`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.orch.IntermediateResults().GenUI.Document.Equal(res.Data) {
		t.Fatalf("result data aliases orchestrator state")
	}
}

func TestEachRunStartsFresh(t *testing.T) {
	f := newFixture()
	f.orch.Generate(context.Background(), Params{Content: "c"})
	first := f.orch.ExecutionContext()

	f.design.Err = errors.New("down")
	f.orch.Generate(context.Background(), Params{Content: "c"})
	second := f.orch.ExecutionContext()

	if second.IntermediateResults.DesignAnalysis != nil || second.IntermediateResults.GenUI != nil {
		t.Fatalf("stale intermediate results carried over")
	}
	if second.CurrentPhase != PhaseDesignAnalysis {
		t.Fatalf("phase = %v", second.CurrentPhase)
	}
	if second.StartTime.Before(first.StartTime) {
		t.Fatalf("start time not reset")
	}
}

func TestConcurrentRunRejected(t *testing.T) {
	f := newFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	f.design.Handler = func(context.Context, string, adapter.CallOptions) (string, error) {
		close(entered)
		<-release
		return "spec", nil
	}

	var wg sync.WaitGroup
	var first Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.orch.Generate(context.Background(), Params{Content: "c"})
	}()

	<-entered
	second := f.orch.Generate(context.Background(), Params{Content: "c"})
	if second.Success || second.Error != ErrRunInProgress.Error() {
		t.Fatalf("expected run-in-progress failure, got %+v", second)
	}
	if _, err := f.orch.GenerateStream(context.Background(), Params{Content: "c"}); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress from stream, got %v", err)
	}

	close(release)
	wg.Wait()
	if !first.Success {
		t.Fatalf("first run failed: %q", first.Error)
	}
}

func TestPanicRecovered(t *testing.T) {
	for name, run := range modes {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.ui.Handler = func(context.Context, string, adapter.CallOptions) (string, error) {
				panic("renderer exploded")
			}

			res := run(f.orch, context.Background(), Params{Content: "c"})
			if res.Success || !strings.Contains(res.Error, "renderer exploded") {
				t.Fatalf("unexpected result: %+v", res)
			}

			// The orchestrator is usable again afterwards.
			f.ui.Handler = nil
			if res := run(f.orch, context.Background(), Params{Content: "c"}); !res.Success {
				t.Fatalf("second run failed: %q", res.Error)
			}
		})
	}
}

func TestGenerateStream(t *testing.T) {
	f := newFixture()
	f.ui.Chunks = []string{`{"fo`, `o":`, `1}`}

	s, err := f.orch.GenerateStream(context.Background(), Params{Content: "c"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	text, err := adapter.Collect(s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if text != `{"foo":1}` {
		t.Fatalf("text = %q", text)
	}

	ec := f.orch.ExecutionContext()
	if ec.IntermediateResults.DesignAnalysis == nil {
		t.Fatalf("expected design analysis")
	}
	if ec.IntermediateResults.GenUI != nil {
		t.Fatalf("stream path must not record genUI")
	}
	if ec.CurrentPhase != PhaseGenUI {
		t.Fatalf("phase = %v", ec.CurrentPhase)
	}
	if calls := f.ui.Calls(); len(calls) != 1 || !calls[0].Stream || !calls[0].Options.JSON {
		t.Fatalf("ui calls = %+v", calls)
	}
}

func TestRunWhileStreamIsOpen(t *testing.T) {
	f := newFixture()
	f.ui.Chunks = []string{`{"fo`, `o":1}`}

	s, err := f.orch.GenerateStream(context.Background(), Params{Content: "c"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer s.Close()

	f.ui.Chunks = nil
	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	if !res.Success {
		t.Fatalf("run during open stream failed: %q", res.Error)
	}
	if ec := f.orch.ExecutionContext(); ec.IntermediateResults.GenUI == nil || ec.CurrentPhase != PhaseCompleted {
		t.Fatalf("expected the later run's context, got %+v", ec)
	}

	text, err := adapter.Collect(s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if text != `{"foo":1}` {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateStreamPropagatesErrors(t *testing.T) {
	f := newFixture()
	f.design.Err = errors.New("offline")

	s, err := f.orch.GenerateStream(context.Background(), Params{Content: "c"})
	if s != nil || err == nil {
		t.Fatalf("expected error")
	}
	var stageErr *stage.StageExecutionError
	if !errors.As(err, &stageErr) || stageErr.Stage != stage.NameDesignAnalysis {
		t.Fatalf("expected design-analysis stage error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "streaming generation failed: ") {
		t.Fatalf("error = %q", err.Error())
	}

	f.design.Err = nil
	f.ui.Err = errors.New("refused")
	_, err = f.orch.GenerateStream(context.Background(), Params{Content: "c"})
	if !errors.As(err, &stageErr) || stageErr.Stage != stage.NameUIGeneration || !stageErr.Streaming {
		t.Fatalf("expected ui streaming stage error, got %v", err)
	}
}

func TestAnalyzeLeavesContextAlone(t *testing.T) {
	f := newFixture()
	out, err := f.orch.Analyze(context.Background(), stage.DesignInput{Content: "c"}, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Design == "" {
		t.Fatalf("expected design text")
	}
	if f.orch.IntermediateResults().DesignAnalysis != nil {
		t.Fatalf("analyze must not record intermediate results")
	}
}

func TestResultJSON(t *testing.T) {
	f := newFixture()
	f.ui.Response = `{"foo":1}`
	res := f.orch.Generate(context.Background(), Params{Content: "c"})
	res.ExecutionTime = 1500 * time.Millisecond

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"success":true,"data":{"foo":1},"executionTime":1500}` {
		t.Fatalf("json = %s", b)
	}

	var back Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ExecutionTime != res.ExecutionTime || !back.Data.Equal(res.Data) {
		t.Fatalf("round trip mismatch: %+v", back)
	}

	fail, err := json.Marshal(Result{Error: "Design analysis failed: x", ExecutionTime: 2 * time.Millisecond})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(fail) != `{"success":false,"error":"Design analysis failed: x","executionTime":2}` {
		t.Fatalf("json = %s", fail)
	}
}

func TestModelsConfigMerge(t *testing.T) {
	base := ModelsConfig{
		DesignModel: adapter.Config{APIKey: "g", Model: DefaultDesignModel},
		UIModel:     adapter.Config{APIKey: "a", Model: DefaultUIModel},
	}
	merged := base.Merge(&ModelsConfig{
		DesignModel: adapter.Config{Model: "gemini-2.5-pro"},
		UIModel:     adapter.Config{APIKey: "override"},
	})
	if merged.DesignModel.APIKey != "g" || merged.DesignModel.Model != "gemini-2.5-pro" {
		t.Fatalf("design = %+v", merged.DesignModel)
	}
	if merged.UIModel.APIKey != "override" || merged.UIModel.Model != DefaultUIModel {
		t.Fatalf("ui = %+v", merged.UIModel)
	}
	if got := base.Merge(nil); got != base {
		t.Fatalf("nil override changed config")
	}
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{PhaseDesignAnalysis, PhaseGenUI, PhaseCompleted} {
		b, err := p.MarshalText()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Phase
		if err := back.UnmarshalText(b); err != nil || back != p {
			t.Fatalf("round trip %v -> %s -> %v (%v)", p, b, back, err)
		}
	}
	var p Phase
	if err := p.UnmarshalText([]byte("done")); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}
