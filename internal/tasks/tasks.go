// package tasks implements bulk operations over saved sites.
package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
)

// SiteFetcher loads a saved site. Satisfied by services.Client.
type SiteFetcher interface {
	SiteDetails(ctx context.Context, token, id string) (*models.SiteDetails, error)
}

// SiteExportResult is the outcome for a single site.
type SiteExportResult struct {
	SiteID   string   `json:"site_id"`
	SiteName string   `json:"site_name"`
	Success  bool     `json:"success"`
	Files    []string `json:"files,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    error    `json:"-"`
	Message  string   `json:"error,omitempty"`
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	TotalSites        int                `json:"total_sites"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	Format            string             `json:"format"`
	ExportedAt        time.Time          `json:"exported_at"`
	Results           []SiteExportResult `json:"results"`
	ManifestPath      string             `json:"-"`
}

// ExportEngine runs bulk exports against a [SiteFetcher].
type ExportEngine struct {
	fetcher SiteFetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewExportEngine creates an engine. A nil logger discards output.
func NewExportEngine(fetcher SiteFetcher, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ExportEngine{
		fetcher: fetcher,
		logger:  shared.WithLogger(logger, "component", "export"),
		now:     time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// writeManifest records the result as indented JSON at path.
func writeManifest(result *BulkExportResult, path string) error {
	for i := range result.Results {
		if err := result.Results[i].Error; err != nil {
			result.Results[i].Message = err.Error()
		}
	}

	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
