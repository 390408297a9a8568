package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/services"
)

// fakeClient is a [services.Client] whose endpoints are swapped per test.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	scrape      func(ctx context.Context, url string) (*models.ScrapeResponse, error)
	login       func(ctx context.Context, email, password string) (*services.LoginResponse, error)
	register    func(ctx context.Context, username, email, password string) (*services.MessageResponse, error)
	logout      func(ctx context.Context, token string) error
	save        func(ctx context.Context, token string, req models.SaveRequest) (int, error)
	previews    func(ctx context.Context, token string) ([]models.PreviewSummary, error)
	siteDetails func(ctx context.Context, token, id string) (*models.SiteDetails, error)
	delete      func(ctx context.Context, token, id string) (int, error)
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) Scrape(ctx context.Context, url string) (*models.ScrapeResponse, error) {
	f.record("scrape")
	if f.scrape == nil {
		return &models.ScrapeResponse{}, nil
	}
	return f.scrape(ctx, url)
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*services.LoginResponse, error) {
	f.record("login")
	if f.login == nil {
		return nil, &services.APIError{StatusCode: http.StatusInternalServerError}
	}
	return f.login(ctx, email, password)
}

func (f *fakeClient) Register(ctx context.Context, username, email, password string) (*services.MessageResponse, error) {
	f.record("register")
	if f.register == nil {
		return &services.MessageResponse{}, nil
	}
	return f.register(ctx, username, email, password)
}

func (f *fakeClient) Logout(ctx context.Context, token string) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx, token)
}

func (f *fakeClient) Save(ctx context.Context, token string, req models.SaveRequest) (int, error) {
	f.record("save")
	if f.save == nil {
		return http.StatusCreated, nil
	}
	return f.save(ctx, token, req)
}

func (f *fakeClient) Previews(ctx context.Context, token string) ([]models.PreviewSummary, error) {
	f.record("previews")
	if f.previews == nil {
		return []models.PreviewSummary{}, nil
	}
	return f.previews(ctx, token)
}

func (f *fakeClient) SiteDetails(ctx context.Context, token, id string) (*models.SiteDetails, error) {
	f.record("site-details")
	if f.siteDetails == nil {
		return nil, errors.New("not found")
	}
	return f.siteDetails(ctx, token, id)
}

func (f *fakeClient) Delete(ctx context.Context, token, id string) (int, error) {
	f.record("delete")
	if f.delete == nil {
		return http.StatusOK, nil
	}
	return f.delete(ctx, token, id)
}

// staticSession is a [SessionSource] with a fixed answer.
type staticSession struct {
	session models.Session
}

func (s staticSession) Current() (models.Session, bool) {
	return s.session, s.session.Valid()
}

func signedIn() staticSession {
	return staticSession{session: models.Session{UserID: "1", Username: "ana", Token: "tok"}}
}

func TestListeners(t *testing.T) {
	var l listeners
	calls := 0
	remove := l.add(func() { calls++ })

	l.notify()
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	remove()
	l.notify()
	if calls != 1 {
		t.Errorf("expected listener to be removed, got %d calls", calls)
	}
}
