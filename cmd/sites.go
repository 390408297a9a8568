package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/swatch/internal/formatter"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/desertthunder/swatch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SitesList prints the saved-site previews of the current user.
func (r *Runner) SitesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.holders(ctx); err != nil {
		return err
	}
	if err := r.analysis.FetchPreviews(ctx); err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	previews := r.analysis.Previews()
	if cmd.Bool("json") {
		return r.writeJSON(previews, true)
	}

	if len(previews) == 0 {
		return r.writePlain("No saved sites yet\n")
	}

	r.writePlainHeader(fmt.Sprintf("Saved Sites (%d)", len(previews)))
	for _, p := range previews {
		r.writePlain("%-26s %s\n", p.ID, p.Label())
	}
	return nil
}

// SitesShow loads a saved site and prints it in the chosen format.
func (r *Runner) SitesShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.selectSite(ctx, cmd.StringArg("id")); err != nil {
		return err
	}

	out, err := formatter.Export(format, r.analysis.Data())
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SitesDelete removes a saved site and prints the remaining count.
func (r *Runner) SitesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if err := r.holders(ctx); err != nil {
		return err
	}

	if err := r.analysis.DeleteData(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return r.writePlain("✓ Deleted %s (%d sites remaining)\n", id, len(r.analysis.Previews()))
}

// SitesExport writes one saved site, or every saved site with --all, to files.
func (r *Runner) SitesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")

	if cmd.Bool("all") {
		return r.exportAll(ctx, format, output, int(cmd.Int("workers")))
	}

	if err := r.selectSite(ctx, cmd.StringArg("id")); err != nil {
		return err
	}
	result := r.analysis.Data()

	if format == formatter.FormatMarkdown {
		export, err := formatter.WriteMarkdownExport(ctx, result, output)
		if err != nil {
			return err
		}
		for _, w := range export.Warnings {
			r.logger.Warn(w)
		}
		r.writePlain("✓ Exported to %s\n", export.Directory)
		for _, f := range export.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	path, err := formatter.WriteExport(format, result, output)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Exported to %s\n", path)
}

func (r *Runner) exportAll(ctx context.Context, format formatter.Format, dir string, workers int) error {
	token, err := r.token(ctx)
	if err != nil {
		return err
	}
	if err := r.analysis.FetchPreviews(ctx); err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	previews := r.analysis.Previews()
	if len(previews) == 0 {
		return r.writePlain("No saved sites to export\n")
	}
	ids := make([]string, len(previews))
	for i, p := range previews {
		ids[i] = string(p.ID)
	}

	progress := make(chan tasks.ProgressUpdate, len(ids)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.exportEngine().BulkExport(ctx, progress, token, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: workers,
		RateLimit:  r.config.API.RateLimit,
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d sites to %s", result.SuccessfulExports, result.TotalSites, result.OutputDirectory)
	if result.FailedExports > 0 {
		var failed []string
		for _, res := range result.Results {
			if !res.Success {
				failed = append(failed, res.SiteID)
			}
		}
		return fmt.Errorf("%w: %d exports failed (%s)", shared.ErrAPIRequest, result.FailedExports, strings.Join(failed, ", "))
	}
	return nil
}

func (r *Runner) selectSite(ctx context.Context, id string) error {
	if err := r.holders(ctx); err != nil {
		return err
	}
	if err := r.analysis.SelectSite(ctx, id); err != nil {
		return fmt.Errorf("failed to load site: %w", err)
	}
	return nil
}
