package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zen-systems/genui/pkg/evidence"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/stage"
)

type runFlags struct {
	design      string
	contentFile string
	designModel string
	uiModel     string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.design, "design", "d", "", "design context (brand, tone, layout preferences)")
	cmd.Flags().StringVarP(&f.contentFile, "content-file", "f", "", "read content from a file instead of the argument or stdin")
	cmd.Flags().StringVar(&f.designModel, "design-model", "", "model or alias for design analysis")
	cmd.Flags().StringVar(&f.uiModel, "ui-model", "", "model or alias for UI generation")
}

func generateCmd() *cobra.Command {
	var flags runFlags
	var composed bool
	var evidenceDir string
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate [content]",
		Short: "Generate a UI document",
		Long: `Runs design analysis and UI generation and prints the result as JSON.

	Content is taken from the argument, --content-file or stdin.
	Use --composed to run the stages as a composed chain.
	Use --evidence-dir to record the run (inputs hashed, stage outputs, final document).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args, flags.contentFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			t, shutdown, err := a.tracer(ctx)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			models := a.models(flags.designModel, flags.uiModel)
			orch := a.orchestrator(t, models)
			params := pipeline.Params{Content: content, Design: flags.design}

			mode := pipeline.ModeStandard
			var res pipeline.Result
			if composed {
				mode = pipeline.ModeComposed
				res = orch.GenerateComposed(ctx, params)
			} else {
				res = orch.Generate(ctx, params)
			}

			if evidenceDir != "" {
				dir, err := evidence.Record(afero.NewOsFs(), evidenceDir, evidence.Run{
					Mode:    mode,
					Content: content,
					Models:  models,
					Result:  res,
					Context: orch.ExecutionContext(),
				})
				if err != nil {
					printFailure(cmd.ErrOrStderr(), "failed to record evidence: %v", err)
				} else {
					printNote(cmd.ErrOrStderr(), "evidence: %s", dir)
				}
			}

			if err := writeResult(cmd.OutOrStdout(), outputFile, res); err != nil {
				return err
			}

			if !res.Success {
				printFailure(cmd.ErrOrStderr(), "%s", res.Error)
				return errors.New(res.Error)
			}
			printSuccess(cmd.ErrOrStderr(), "generated UI in %s (%s → %s)",
				res.ExecutionTime.Round(time.Millisecond), models.DesignModel.Model, models.UIModel.Model)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&composed, "composed", false, "run the stages as a composed chain")
	cmd.Flags().StringVar(&evidenceDir, "evidence-dir", "", "directory to record run evidence in")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the result to a file instead of stdout")

	return cmd
}

func writeResult(stdout io.Writer, path string, res pipeline.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func streamCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "stream [content]",
		Short: "Generate a UI document, printing the UI stage output as it arrives",
		Long: `Runs design analysis to completion, then streams the UI model's raw
	output to stdout. The streamed document is validated once complete.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args, flags.contentFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			t, shutdown, err := a.tracer(ctx)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			orch := a.orchestrator(t, a.models(flags.designModel, flags.uiModel))
			stream, err := orch.GenerateStream(ctx, pipeline.Params{Content: content, Design: flags.design})
			if err != nil {
				printFailure(cmd.ErrOrStderr(), "%v", err)
				return err
			}
			defer stream.Close()

			out := cmd.OutOrStdout()
			var buf strings.Builder
			for {
				chunk, err := stream.Recv()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					fmt.Fprintln(out)
					printFailure(cmd.ErrOrStderr(), "%v", err)
					return err
				}
				buf.WriteString(chunk)
				fmt.Fprint(out, chunk)
			}
			fmt.Fprintln(out)

			if _, err := stage.Parse(buf.String()); err != nil {
				printFailure(cmd.ErrOrStderr(), "%v", err)
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "stream complete (%d bytes)", buf.Len())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func analyzeCmd() *cobra.Command {
	var designContext string
	var contentFile string
	var designModel string

	cmd := &cobra.Command{
		Use:   "analyze [content]",
		Short: "Run design analysis only and print the design specification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args, contentFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			t, shutdown, err := a.tracer(ctx)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			models := a.models(designModel, "")
			out, err := a.orchestrator(t, models).Analyze(ctx, stage.DesignInput{
				Content:       content,
				DesignContext: designContext,
			}, nil)
			if err != nil {
				printFailure(cmd.ErrOrStderr(), "%v", err)
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.Design)
			printNote(cmd.ErrOrStderr(), "model: %s", models.DesignModel.Model)
			return nil
		},
	}

	cmd.Flags().StringVarP(&designContext, "design", "d", "", "design context (defaults to a neutral modern style)")
	cmd.Flags().StringVarP(&contentFile, "content-file", "f", "", "read content from a file")
	cmd.Flags().StringVar(&designModel, "design-model", "", "model or alias for design analysis")

	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [run-dir]",
		Short: "Verify an evidence bundle against its manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := evidence.Verify(afero.NewOsFs(), args[0])
			if err != nil {
				printFailure(cmd.ErrOrStderr(), "%v", err)
				return err
			}
			printSuccess(cmd.OutOrStdout(), "run %s verified (%d files)", m.RunID, len(m.Hashes))
			return nil
		},
	}
}
