// API service for the design-analysis HTTP API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "http://localhost:5000"
	requestIDHeader = "X-Request-ID"
)

var _ Client = (*APIService)(nil)

// APIService implements [Client] over net/http.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Option configures an [APIService].
type Option func(*APIService)

// WithRateLimit throttles outgoing requests to rps per second with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *APIService) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *log.Logger) Option {
	return func(a *APIService) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAPIService creates a new API service instance.
//
// An empty baseURL falls back to http://localhost:5000 and a nil client to [http.DefaultClient].
func NewAPIService(baseURL string, client *http.Client, opts ...Option) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the API root requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
//
// A non-empty token is sent as a bearer credential.
func (a *APIService) Get(ctx context.Context, path, token string) (*APIResponse, error) {
	return a.send(ctx, http.MethodGet, path, token, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path, token string, data []byte) (*APIResponse, error) {
	return a.send(ctx, http.MethodPost, path, token, data)
}

// Scrape calls POST /api/scrape.
func (a *APIService) Scrape(ctx context.Context, target string) (*models.ScrapeResponse, error) {
	var out models.ScrapeResponse
	if _, err := a.doJSON(ctx, http.MethodPost, "/api/scrape", "", map[string]string{"url": target}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login calls POST /api/login.
func (a *APIService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if _, err := a.doJSON(ctx, http.MethodPost, "/api/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register calls POST /api/register.
func (a *APIService) Register(ctx context.Context, username, email, password string) (*MessageResponse, error) {
	var out MessageResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if _, err := a.doJSON(ctx, http.MethodPost, "/api/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout calls POST /api/logout with the bearer token.
func (a *APIService) Logout(ctx context.Context, token string) error {
	_, err := a.doJSON(ctx, http.MethodPost, "/api/logout", token, struct{}{}, nil)
	return err
}

// Save calls POST /api/save.
func (a *APIService) Save(ctx context.Context, token string, req models.SaveRequest) (int, error) {
	return a.doJSON(ctx, http.MethodPost, "/api/save", token, req, nil)
}

// Previews calls GET /api/saved-sites-preview.
func (a *APIService) Previews(ctx context.Context, token string) ([]models.PreviewSummary, error) {
	var out []models.PreviewSummary
	if _, err := a.doJSON(ctx, http.MethodGet, "/api/saved-sites-preview", token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.PreviewSummary{}
	}
	return out, nil
}

// SiteDetails calls GET /api/site-details/{id}.
func (a *APIService) SiteDetails(ctx context.Context, token, id string) (*models.SiteDetails, error) {
	var out models.SiteDetails
	if _, err := a.doJSON(ctx, http.MethodGet, "/api/site-details/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, siteError(id, err)
	}
	return &out, nil
}

// Delete calls DELETE /api/delete/{id}.
func (a *APIService) Delete(ctx context.Context, token, id string) (int, error) {
	status, err := a.doJSON(ctx, http.MethodDelete, "/api/delete/"+url.PathEscape(id), token, nil, nil)
	return status, siteError(id, err)
}

// siteError marks a 404 for a site id with [shared.ErrSiteNotFound], keeping the [*APIError] in the chain.
func siteError(id string, err error) error {
	if StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", shared.ErrSiteNotFound, id, err)
	}
	return err
}

// doJSON encodes in, sends the request, maps non-2xx statuses to [*APIError] and decodes the body into out.
func (a *APIService) doJSON(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = data
	}

	resp, err := a.send(ctx, method, path, token, payload)
	if err != nil {
		return 0, err
	}

	if !resp.OK() {
		return resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
			Body:       resp.Body,
		}
	}

	if out != nil && len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func (a *APIService) send(ctx context.Context, method, path, token string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := a.clientFor(token).Do(req)
	if err != nil {
		a.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	a.logger.Debug("request complete",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// clientFor returns the base client, or a copy whose transport adds the bearer header.
func (a *APIService) clientFor(token string) *http.Client {
	if token == "" {
		return a.httpClient
	}

	c := *a.httpClient
	c.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   a.httpClient.Transport,
	}
	return &c
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, s := range []string{payload.Message, payload.Error, payload.Detail} {
		if s != "" {
			return s
		}
	}
	return ""
}
