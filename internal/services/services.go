// package services defines interface Client for the design-analysis HTTP API
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
)

// Client defines the remote operations the state holders depend on.
//
// Methods taking a token send it as a bearer credential.
type Client interface {
	// Scrape requests a fresh analysis of url.
	Scrape(ctx context.Context, url string) (*models.ScrapeResponse, error)

	// Login exchanges credentials for a token and user record.
	Login(ctx context.Context, email, password string) (*LoginResponse, error)

	// Register creates an account. The account must be verified before it can log in.
	Register(ctx context.Context, username, email, password string) (*MessageResponse, error)

	// Logout invalidates token on the server.
	Logout(ctx context.Context, token string) error

	// Save stores an analysis under the token's account and returns the response status code.
	Save(ctx context.Context, token string, req models.SaveRequest) (int, error)

	// Previews lists the saved analyses of the token's account.
	Previews(ctx context.Context, token string) ([]models.PreviewSummary, error)

	// SiteDetails fetches one saved analysis.
	SiteDetails(ctx context.Context, token, id string) (*models.SiteDetails, error)

	// Delete removes one saved analysis and returns the response status code.
	Delete(ctx context.Context, token, id string) (int, error)
}

// LoginResponse is the body of POST /api/login.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: status %d", shared.ErrAPIRequest, e.StatusCode)
}

// Unwrap lets errors.Is match [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// StatusCode extracts the HTTP status of an [*APIError] in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message extracts the server message of an [*APIError] in err's chain.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
