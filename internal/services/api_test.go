package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
	tu "github.com/desertthunder/swatch/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != "http://localhost:5000" {
				t.Errorf("expected default baseURL 'http://localhost:5000', got %s", srv.BaseURL())
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Rate Limit Option", func(t *testing.T) {
			if srv := NewAPIService("", nil, WithRateLimit(0, 1)); srv.limiter != nil {
				t.Error("expected no limiter for zero rate")
			}
			srv := NewAPIService("", nil, WithRateLimit(2, 0))
			if srv.limiter == nil {
				t.Fatal("expected limiter to be configured")
			}
			if srv.limiter.Burst() != 1 {
				t.Errorf("expected burst clamped to 1, got %d", srv.limiter.Burst())
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Sends Request ID And Bearer", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.Header.Get("X-Request-ID") == "" {
					t.Error("expected X-Request-ID header")
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("expected bearer header, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test", "tok")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected ok JSON response, got %+v", resp)
			}
		})

		t.Run("Without Token Omits Authorization", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "" {
					t.Errorf("expected no Authorization header, got %q", got)
				}
				w.Write([]byte("plain"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/test", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if resp.JSONData != nil {
				t.Error("expected JSONData to be nil for invalid JSON")
			}
		})

		t.Run("Non-2xx Is Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/missing", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected OK to be false")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Post(context.Background(), "/test\x00invalid", "", []byte("data"))

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIService("http://example.com", client).Post(context.Background(), "/test", "", []byte("data"))
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Post(context.Background(), "/test", "", []byte("data"))
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewAPIService(server.URL, nil).Post(ctx, "/test", "", []byte("data")); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Scrape", func(t *testing.T) {
		t.Run("Decodes Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/scrape" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["url"] != "https://example.com" {
					t.Errorf("expected url in body, got %v", body)
				}
				w.Write([]byte(`{"color_palette":["#fff","#000"],"contrast_ratio":21,"harmony_score":0.5,"best_trait":"Contrast","analysis":"ok","website_name":"Example"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Scrape(context.Background(), "https://example.com")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(resp.ColorPalette) != 2 {
				t.Errorf("expected 2 colors, got %d", len(resp.ColorPalette))
			}
			if resp.ContrastRatio == nil || *resp.ContrastRatio != 21 {
				t.Errorf("expected contrast 21, got %v", resp.ContrastRatio)
			}
		})

		t.Run("Error Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"scrape failed"}`))
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Scrape(context.Background(), "https://example.com")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if StatusCode(err) != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", StatusCode(err))
			}
			if Message(err) != "scrape failed" {
				t.Errorf("expected message 'scrape failed', got %q", Message(err))
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Decodes Token And User", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"token":"abc","user":{"id":7,"username":"ana"}}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Login(context.Background(), "a@b.c", "pw")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Token != "abc" || resp.User.ID != "7" || resp.User.Username != "ana" {
				t.Errorf("unexpected login response %+v", resp)
			}
		})

		t.Run("Forbidden Carries Message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"message":"Email not verified"}`))
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Login(context.Background(), "a@b.c", "pw")
			if StatusCode(err) != http.StatusForbidden {
				t.Errorf("expected 403, got %d", StatusCode(err))
			}
			if Message(err) != "Email not verified" {
				t.Errorf("expected server message, got %q", Message(err))
			}
		})
	})

	t.Run("Register", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["username"] != "ana" || body["email"] != "a@b.c" || body["password"] != "pw" {
				t.Errorf("unexpected register body %v", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"check your email"}`))
		}))
		defer server.Close()

		resp, err := NewAPIService(server.URL, nil).Register(context.Background(), "ana", "a@b.c", "pw")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Message != "check your email" {
			t.Errorf("expected message, got %q", resp.Message)
		}
	})

	t.Run("Site Not Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Site not found"}`))
		}))
		defer server.Close()

		ctx := context.Background()
		srv := NewAPIService(server.URL, nil)

		_, err := srv.SiteDetails(ctx, "tok", "missing")
		if !errors.Is(err, shared.ErrSiteNotFound) || StatusCode(err) != http.StatusNotFound {
			t.Errorf("expected site not found with 404, got %v", err)
		}
		if Message(err) != "Site not found" {
			t.Errorf("expected server message kept, got %q", Message(err))
		}

		status, err := srv.Delete(ctx, "tok", "missing")
		if !errors.Is(err, shared.ErrSiteNotFound) || status != http.StatusNotFound {
			t.Errorf("expected site not found with 404, got %d (%v)", status, err)
		}
	})

	t.Run("Authenticated Endpoints", func(t *testing.T) {
		var seen []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			seen = append(seen, r.Method+" "+r.URL.Path)
			switch {
			case r.URL.Path == "/api/saved-sites-preview":
				w.Write([]byte(`[{"_id":"1","website_name":"One"}]`))
			case strings.HasPrefix(r.URL.Path, "/api/site-details/"):
				w.Write([]byte(`{"_id":"1","url":"https://one.example","color_palette":["#111"]}`))
			case r.URL.Path == "/api/save":
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"message":"saved"}`))
			case strings.HasPrefix(r.URL.Path, "/api/delete/"):
				w.Write([]byte(`{"message":"deleted"}`))
			default:
				w.Write([]byte(`{"message":"ok"}`))
			}
		}))
		defer server.Close()

		ctx := context.Background()
		srv := NewAPIService(server.URL, nil)

		previews, err := srv.Previews(ctx, "tok")
		if err != nil || len(previews) != 1 || previews[0].ID != "1" {
			t.Errorf("unexpected previews %v (err %v)", previews, err)
		}

		details, err := srv.SiteDetails(ctx, "tok", "1")
		if err != nil || details.URL != "https://one.example" {
			t.Errorf("unexpected details %+v (err %v)", details, err)
		}

		status, err := srv.Save(ctx, "tok", models.SaveRequest{URL: "https://one.example"})
		if err != nil || status != http.StatusCreated {
			t.Errorf("expected 201, got %d (err %v)", status, err)
		}

		status, err = srv.Delete(ctx, "tok", "a/b")
		if err != nil || status != http.StatusOK {
			t.Errorf("expected 200, got %d (err %v)", status, err)
		}

		if err := srv.Logout(ctx, "tok"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}

		if _, err := srv.Previews(ctx, "wrong"); StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 for bad token, got %v", err)
		}

		want := []string{
			"GET /api/saved-sites-preview",
			"GET /api/site-details/1",
			"POST /api/save",
			"DELETE /api/delete/a/b",
			"POST /api/logout",
		}
		if strings.Join(seen, ",") != strings.Join(want, ",") {
			t.Errorf("expected requests %v, got %v", want, seen)
		}
	})

	t.Run("Previews Null Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		}))
		defer server.Close()

		previews, err := NewAPIService(server.URL, nil).Previews(context.Background(), "tok")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if previews == nil || len(previews) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", previews)
		}
	})

	t.Run("Decode Failure", func(t *testing.T) {
		client := &http.Client{
			Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{not json")),
				Header:     http.Header{},
			}, nil),
		}

		_, err := NewAPIService("http://example.com", client).Previews(context.Background(), "tok")
		if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("expected decode error, got %v", err)
		}
	})
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"m"}`, "m"},
		{"error field", `{"error":"e"}`, "e"},
		{"detail field", `{"detail":"d"}`, "d"},
		{"message wins", `{"message":"m","error":"e"}`, "m"},
		{"plain text", "  boom \n", "boom"},
		{"empty object", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("errorMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
