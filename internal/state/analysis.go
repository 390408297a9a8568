package state

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/services"
	"github.com/desertthunder/swatch/internal/shared"
)

// SessionSource reports the current session. [*SessionHolder] satisfies it.
type SessionSource interface {
	Current() (models.Session, bool)
}

// AnalysisSnapshot is a point-in-time copy of an [AnalysisHolder].
type AnalysisSnapshot struct {
	Data         models.AnalysisResult
	Previews     []models.PreviewSummary
	SelectedSite *models.SiteDetails
}

// AnalysisHolder owns the displayed analysis, the saved previews and the selected site.
//
// Concurrent fetches are not de-duplicated; the response applied last wins.
type AnalysisHolder struct {
	client  services.Client
	session SessionSource
	logger  *log.Logger

	mu       sync.RWMutex
	data     models.AnalysisResult
	previews []models.PreviewSummary
	selected *models.SiteDetails

	subs listeners
}

// NewAnalysisHolder creates a holder with an empty analysis and no previews.
func NewAnalysisHolder(client services.Client, session SessionSource, logger *log.Logger) *AnalysisHolder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AnalysisHolder{
		client:   client,
		session:  session,
		logger:   shared.WithLogger(logger, "component", "analysis"),
		data:     models.EmptyAnalysis(),
		previews: []models.PreviewSummary{},
	}
}

// FetchData requests a fresh analysis of url and replaces the held result.
//
// An empty url returns [shared.ErrMissingArgument] without a request. On
// failure the held result is unchanged.
func (h *AnalysisHolder) FetchData(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		h.logger.Error("url is required for fetching data")
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	resp, err := h.client.Scrape(ctx, url)
	if err != nil {
		h.logger.Error("error fetching data", "url", url, "error", err)
		return err
	}
	if resp.Error != "" {
		h.logger.Error("failed to fetch data", "url", url, "error", resp.Error)
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, resp.Error)
	}

	result := resp.Result(url)

	h.mu.Lock()
	h.data = result
	h.mu.Unlock()

	h.logger.Debug("analysis updated", "url", url, "colors", len(result.ColorPalette))
	h.subs.notify()
	return nil
}

// SelectSite loads a saved site and makes it both the selected site and the displayed analysis.
func (h *AnalysisHolder) SelectSite(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		h.logger.Error("site id is required for fetching full data")
		return fmt.Errorf("%w: site id", shared.ErrMissingArgument)
	}
	session, err := h.requireSession()
	if err != nil {
		return err
	}

	details, err := h.client.SiteDetails(ctx, session.Token, id)
	if err != nil {
		h.logger.Error("error fetching full site data", "id", id, "error", err)
		return err
	}

	site := details.Clone()
	result := site.Result()

	h.mu.Lock()
	h.data = result
	h.selected = &site
	h.mu.Unlock()

	h.subs.notify()
	return nil
}

// SaveData stores the held analysis under the current user and refreshes the previews on 201.
func (h *AnalysisHolder) SaveData(ctx context.Context) error {
	session, err := h.requireSession()
	if err != nil {
		return err
	}

	h.mu.RLock()
	req := models.NewSaveRequest(h.data)
	h.mu.RUnlock()

	status, err := h.client.Save(ctx, session.Token, req)
	if err != nil {
		h.logger.Error("error saving data", "error", err)
		return err
	}
	if status != http.StatusCreated {
		h.logger.Warn("save not confirmed", "status", status)
		return nil
	}

	return h.FetchPreviews(ctx)
}

// DeleteData removes a saved site and refreshes the previews on 200.
//
// The list is replaced by the server's next response, never edited locally.
func (h *AnalysisHolder) DeleteData(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: site id", shared.ErrMissingArgument)
	}
	session, err := h.requireSession()
	if err != nil {
		return err
	}

	status, err := h.client.Delete(ctx, session.Token, id)
	if err != nil {
		h.logger.Error("error deleting data", "id", id, "error", err)
		return err
	}
	if status != http.StatusOK {
		h.logger.Warn("delete not confirmed", "id", id, "status", status)
		return nil
	}

	return h.FetchPreviews(ctx)
}

// FetchPreviews replaces the preview list with the server's. On failure the previous list is kept.
func (h *AnalysisHolder) FetchPreviews(ctx context.Context) error {
	session, err := h.requireSession()
	if err != nil {
		return err
	}

	previews, err := h.client.Previews(ctx, session.Token)
	if err != nil {
		h.logger.Error("failed to fetch site previews", "error", err)
		return err
	}

	h.mu.Lock()
	h.previews = append([]models.PreviewSummary{}, previews...)
	h.mu.Unlock()

	h.subs.notify()
	return nil
}

// Reset drops the previews and the selected site.
func (h *AnalysisHolder) Reset() {
	h.mu.Lock()
	h.previews = []models.PreviewSummary{}
	h.selected = nil
	h.mu.Unlock()
	h.subs.notify()
}

// Data returns a copy of the displayed analysis.
func (h *AnalysisHolder) Data() models.AnalysisResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data.Clone()
}

// Previews returns a copy of the saved-site previews.
func (h *AnalysisHolder) Previews() []models.PreviewSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.PreviewSummary{}, h.previews...)
}

// SelectedSite returns a copy of the selected site, or nil.
func (h *AnalysisHolder) SelectedSite() *models.SiteDetails {
	return h.Snapshot().SelectedSite
}

// Snapshot returns a copy of the held state.
func (h *AnalysisHolder) Snapshot() AnalysisSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := AnalysisSnapshot{
		Data:     h.data.Clone(),
		Previews: append([]models.PreviewSummary{}, h.previews...),
	}
	if h.selected != nil {
		site := h.selected.Clone()
		snap.SelectedSite = &site
	}
	return snap
}

// Subscribe registers fn to be called after every change. The returned func unregisters it.
func (h *AnalysisHolder) Subscribe(fn func()) func() {
	return h.subs.add(fn)
}

func (h *AnalysisHolder) requireSession() (models.Session, error) {
	if h.session != nil {
		if session, ok := h.session.Current(); ok {
			return session, nil
		}
	}
	h.logger.Error("user not authenticated")
	return models.Session{}, shared.ErrNotAuthenticated
}
