package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/swatch/internal/formatter"
	"github.com/desertthunder/swatch/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk site exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: md, csv, txt, json
	OutputDir  string           // Base output directory (default: swatch_export_{epoch})
	NumWorkers int              // Concurrent fetches (default: 4, max: 10)
	RateLimit  float64          // Requests per second (default: 5)
}

// BulkExport exports saved sites concurrently with rate limiting and progress tracking.
//
// Per-site failures are recorded in the result; only cancellation or an
// unwritable output directory abort the run.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	token string,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: site fetcher not initialized", shared.ErrServiceUnavailable)
	}
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("swatch_export_%d", e.now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSites:      len(ids),
		OutputDirectory: opts.OutputDir,
		Format:          string(opts.Format),
		ExportedAt:      e.now().UTC(),
		Results:         make([]SiteExportResult, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	e.sendProgress(prog, startingUpdate(len(ids)))

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)

	for i, id := range ids {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			res := e.exportSite(gctx, token, id, opts)

			mu.Lock()
			defer mu.Unlock()
			result.Results[i] = res
			completed++
			if res.Success {
				result.SuccessfulExports++
				e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.SiteName, len(res.Files)))
			} else {
				result.FailedExports++
				e.logger.Warn("site export failed", "id", id, "error", res.Error)
				e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.SiteName, res.Error))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished", "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportSite fetches one site and writes it in the requested format.
func (e *ExportEngine) exportSite(ctx context.Context, token, id string, opts BulkExportOpts) SiteExportResult {
	result := SiteExportResult{
		SiteID:   id,
		SiteName: fmt.Sprintf("Unknown (%s)", id),
		Files:    []string{},
	}

	details, err := e.fetcher.SiteDetails(ctx, token, id)
	if err != nil {
		result.Error = fmt.Errorf("failed to fetch site: %w", err)
		return result
	}

	analysis := details.Result()
	result.SiteName = formatter.Title(analysis)
	name := formatter.Slug(id)

	switch opts.Format {
	case formatter.FormatMarkdown:
		md, err := formatter.WriteMarkdownExport(ctx, analysis, filepath.Join(opts.OutputDir, name))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = md.Files
		result.Warnings = md.Warnings
	default:
		path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.%s", name, opts.Format))
		written, err := formatter.WriteExport(opts.Format, analysis, path)
		if err != nil {
			result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
			return result
		}
		result.Files = []string{written}
	}

	result.Success = true
	return result
}
