package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/swatch/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Analyze scrapes a URL, prints the analysis and optionally saves it.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.holders(ctx); err != nil {
		return err
	}

	target := cmd.StringArg("url")
	r.logger.Info("analyzing", "url", target)

	if err := r.analysis.FetchData(ctx, target); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := formatter.Export(format, r.analysis.Data())
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if !cmd.Bool("save") {
		return nil
	}

	if err := r.analysis.SaveData(ctx); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return r.writePlainln("✓ Saved (%d sites in your account)", len(r.analysis.Previews()))
}
