package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/zen-systems/genui/pkg/stage"
)

// composedState flows through the chain nodes. err keeps the stage error
// as raised, since the chain wraps errors returned by nodes.
type composedState struct {
	params Params
	design *stage.DesignAnalysis
	ui     *stage.UIGeneration

	designOut *stage.DesignOutput
	uiOut     *stage.UIOutput
	err       error
}

// GenerateComposed runs the same two stages as Generate through a compiled
// eino chain. It updates the execution context exactly as Generate does.
func (o *Orchestrator) GenerateComposed(ctx context.Context, p Params) (res Result) {
	start := time.Now()
	if err := o.begin(start); err != nil {
		return failure(err, start)
	}
	defer o.end()

	ctx, span := o.tracer.Start(ctx, "pipeline.generate_composed")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Errorf("pipeline panic: %v", r), start)
			o.finish(span, ModeComposed, res)
		}
	}()

	res = o.invokeChain(ctx, p, start)
	o.finish(span, ModeComposed, res)
	return res
}

func (o *Orchestrator) invokeChain(ctx context.Context, p Params, start time.Time) Result {
	design, ui, err := o.buildStages(p.ModelsConfig)
	if err != nil {
		return failure(err, start)
	}

	runnable, err := o.getChain()
	if err != nil {
		return failure(err, start)
	}

	st := &composedState{params: p, design: design, ui: ui}
	out, err := runnable.Invoke(ctx, st)
	if st.err != nil {
		return failure(st.err, start)
	}
	if err != nil {
		return failure(err, start)
	}
	if out == nil || out.uiOut == nil {
		return failure(fmt.Errorf("composed pipeline produced no output"), start)
	}
	return success(out.uiOut.Document.Clone(), start)
}

func (o *Orchestrator) getChain() (compose.Runnable[*composedState, *composedState], error) {
	o.chainOnce.Do(func() {
		o.chain, o.chainErr = o.buildChain(context.Background())
	})
	return o.chain, o.chainErr
}

func (o *Orchestrator) buildChain(ctx context.Context) (compose.Runnable[*composedState, *composedState], error) {
	chain := compose.NewChain[*composedState, *composedState]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *composedState) (*composedState, error) {
			if st == nil {
				return nil, fmt.Errorf("state is nil")
			}
			o.advance(PhaseDesignAnalysis)
			out, err := o.analyze(ctx, st.design, stage.DesignInput{
				Content:       st.params.Content,
				DesignContext: st.params.Design,
			})
			if err != nil {
				st.err = err
				return nil, err
			}
			o.storeDesign(out)
			st.designOut = out
			return st, nil
		}),
		compose.WithNodeName("genui.design_analysis"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *composedState) (*composedState, error) {
			if st == nil || st.designOut == nil {
				return nil, fmt.Errorf("state is nil")
			}
			o.advance(PhaseGenUI)
			out, err := o.generateUI(ctx, st.ui, stage.UIInput{
				Content: st.params.Content,
				Design:  st.designOut.Design,
			})
			if err != nil {
				st.err = err
				return nil, err
			}
			o.storeUI(out)
			st.uiOut = out
			return st, nil
		}),
		compose.WithNodeName("genui.gen_ui"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *composedState) (*composedState, error) {
			if st == nil || st.uiOut == nil {
				return nil, fmt.Errorf("state is nil")
			}
			o.advance(PhaseCompleted)
			return st, nil
		}),
		compose.WithNodeName("genui.finalize"),
	)

	return chain.Compile(ctx)
}
