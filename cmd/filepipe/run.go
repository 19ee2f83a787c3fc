package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/filepipe/pkg/filepipe"
	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

type runFlags struct {
	pipelineFile    string
	root            string
	recursive       bool
	continueOnError bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.pipelineFile, "pipeline", "p", defaultPipelinePath(), "pipeline definition file (.yaml or .toml)")
	cmd.Flags().StringVar(&f.root, "root", ".", "directory whose entries the pipeline runs over")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "list entries recursively")
	cmd.Flags().BoolVar(&f.continueOnError, "continue-on-error", false, "keep running after a failed step")
}

func defaultPipelinePath() string {
	return filepath.Join(xdg.ConfigHome, "filepipe", "pipeline.yaml")
}

func newRunCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a pipeline over a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPreviewCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what a pipeline would do without applying changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func newValidateCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline definition against a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, entries, err := buildPipeline(cmd.Context(), flags)
			if err != nil {
				return err
			}
			vr := pipeline.Validate(cmd.Context(), entries)
			renderValidation(vr)
			if !vr.Valid {
				return fmt.Errorf("pipeline is invalid")
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func buildPipeline(ctx context.Context, flags runFlags) (*filepipe.Pipeline, []*core.FileEntry, error) {
	def, err := filepipe.LoadDefinition(flags.pipelineFile)
	if err != nil {
		return nil, nil, err
	}

	level, err := filepipe.LogLevelFromString(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger := filepipe.NewLogger(os.Stderr, level)

	fsys := filepipe.NewOSFileSystem(flags.root)
	opts := filepipe.DefaultOptions()
	opts.StopOnError = !flags.continueOnError

	pipeline := filepipe.NewPipeline(fsys, opts, filepipe.NewLoggerAdapter(&logger))
	if err := def.Build(filepipe.DefaultRegistry(), pipeline); err != nil {
		return nil, nil, err
	}

	entries, err := fsys.List(ctx, ".", flags.recursive)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", flags.root, err)
	}
	return pipeline, entries, nil
}

func runPipeline(ctx context.Context, flags runFlags, preview bool) error {
	pipeline, entries, err := buildPipeline(ctx, flags)
	if err != nil {
		return err
	}

	var result *core.PipelineResult
	if preview {
		result = pipeline.Preview(ctx, entries)
	} else {
		result = pipeline.Execute(ctx, entries)
	}
	renderResult(result, preview)
	if !result.Success {
		return fmt.Errorf("pipeline failed: %s", result.Summary)
	}
	return nil
}

func renderValidation(vr *core.ValidationResult) {
	for _, w := range vr.Warnings {
		pterm.Warning.Println(w)
	}
	for _, e := range vr.Errors {
		pterm.Error.Println(e.Error())
	}
	if vr.Valid {
		pterm.Success.Println("pipeline is valid")
	}
}

func renderResult(result *core.PipelineResult, preview bool) {
	for _, step := range result.Steps {
		header := fmt.Sprintf("step %d: %s: %s", step.Step, step.Name, step.Result.Message)
		if step.Result.Success {
			pterm.Success.Println(header)
		} else {
			pterm.Error.Println(header)
		}

		if len(step.Result.Changes) > 0 {
			rows := pterm.TableData{{"Kind", "From", "To", "Applied"}}
			for _, c := range step.Result.Changes {
				rows = append(rows, []string{
					c.Kind.String(), c.OriginalPath, c.NewPath, fmt.Sprintf("%t", c.Applied),
				})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		}
		for _, msg := range step.Result.Errors {
			pterm.Error.Println("  " + msg)
		}
	}
	if preview {
		pterm.Info.Println(result.Summary)
	} else if result.Success {
		pterm.Success.Println(result.Summary)
	} else {
		pterm.Error.Println(result.Summary)
	}
}
