package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret#123"

func newStubServer(t *testing.T, opts ...StubOption) (*StubAPI, *services.APIService) {
	t.Helper()
	stub := NewStubAPI(nil, opts...)
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return stub, services.NewAPIService(srv.URL, srv.Client())
}

func TestStubAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("Scrape", func(t *testing.T) {
		_, client := newStubServer(t)

		first, err := client.Scrape(ctx, "https://example.com/page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _ := client.Scrape(ctx, "https://example.com/other")

		if len(first.ColorPalette) != paletteSize {
			t.Errorf("expected %d colors, got %d", paletteSize, len(first.ColorPalette))
		}
		if first.ColorPalette[0] != second.ColorPalette[0] {
			t.Error("expected the same host to produce the same palette")
		}
		if first.ContrastRatio == nil || *first.ContrastRatio < 1 || *first.ContrastRatio > 21 {
			t.Errorf("contrast out of range: %v", first.ContrastRatio)
		}

		if _, err := client.Scrape(ctx, ""); services.StatusCode(err) != http.StatusBadRequest {
			t.Errorf("expected 400 for empty url, got %v", err)
		}
		if _, err := client.Scrape(ctx, "ftp://example.com"); services.StatusCode(err) != http.StatusInternalServerError {
			t.Errorf("expected 500 for unsupported url, got %v", err)
		}
	})

	t.Run("Registration And Verification", func(t *testing.T) {
		stub, client := newStubServer(t)

		resp, err := client.Register(ctx, "ana", "Ana@Example.com", testPassword)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Message != MsgRegistered || resp.UserID == "" {
			t.Errorf("unexpected register response %+v", resp)
		}

		_, err = client.Login(ctx, "ana@example.com", testPassword)
		if services.StatusCode(err) != http.StatusForbidden || services.Message(err) != MsgEmailNotVerified {
			t.Fatalf("expected 403 before verification, got %v", err)
		}

		token, ok := stub.VerificationToken("ana@example.com")
		if !ok {
			t.Fatal("expected a verification token")
		}
		raw, err := client.Get(ctx, "/api/verify-email/"+token, "")
		if err != nil || !raw.OK() {
			t.Fatalf("verification failed: %v %+v", err, raw)
		}
		raw, _ = client.Get(ctx, "/api/verify-email/"+token, "")
		if !raw.OK() {
			t.Errorf("expected repeat verification to succeed, got %d", raw.StatusCode)
		}

		login, err := client.Login(ctx, "ana@example.com", testPassword)
		if err != nil {
			t.Fatalf("expected login after verification, got %v", err)
		}
		if login.Token == "" || login.User.Username != "ana" || string(login.User.ID) != resp.UserID {
			t.Errorf("unexpected login response %+v", login)
		}
	})

	t.Run("Registration Errors", func(t *testing.T) {
		_, client := newStubServer(t, WithAutoVerify(true))
		if _, err := client.Register(ctx, "ana", "ana@example.com", testPassword); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tests := []struct {
			name     string
			username string
			email    string
			password string
			message  string
		}{
			{"weak password", "bob", "bob@example.com", "short", "Password must be at least 8 characters long."},
			{"no special", "bob", "bob@example.com", "Password123", "Password must contain at least one special character."},
			{"duplicate username", "ana", "other@example.com", testPassword, "Username already exists"},
			{"duplicate email", "bob", "ANA@example.com", testPassword, "Email already exists"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := client.Register(ctx, tt.username, tt.email, tt.password)
				if services.StatusCode(err) != http.StatusBadRequest {
					t.Fatalf("expected 400, got %v", err)
				}
				if services.Message(err) != tt.message {
					t.Errorf("expected %q, got %q", tt.message, services.Message(err))
				}
			})
		}
	})

	t.Run("Invalid Login", func(t *testing.T) {
		_, client := newStubServer(t, WithAutoVerify(true))
		client.Register(ctx, "ana", "ana@example.com", testPassword)

		if _, err := client.Login(ctx, "ana@example.com", "Wrong#123"); services.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 for wrong password, got %v", err)
		}
		if _, err := client.Login(ctx, "nobody@example.com", testPassword); services.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 for unknown user, got %v", err)
		}
	})

	t.Run("Passwords Are Stored As Bcrypt Hashes", func(t *testing.T) {
		stub, client := newStubServer(t, WithAutoVerify(true))
		if _, err := client.Register(ctx, "ana", "ana@example.com", testPassword); err != nil {
			t.Fatalf("register failed: %v", err)
		}

		stub.mu.Lock()
		user := stub.users[stub.byEmail["ana@example.com"]]
		stub.mu.Unlock()

		if string(user.password) == testPassword {
			t.Fatal("expected password not to be stored in plain text")
		}
		if cost, err := bcrypt.Cost(user.password); err != nil || cost != passwordCost {
			t.Errorf("expected bcrypt hash with cost %d, got %d (%v)", passwordCost, cost, err)
		}
		if !passwordMatches(user, testPassword) || passwordMatches(user, "Wrong#123") {
			t.Error("expected only the registered password to match")
		}
		if _, err := client.Login(ctx, "ana@example.com", testPassword); err != nil {
			t.Errorf("expected login with registered password, got %v", err)
		}
	})

	t.Run("Saved Sites", func(t *testing.T) {
		_, client := newStubServer(t, WithAutoVerify(true))
		client.Register(ctx, "ana", "ana@example.com", testPassword)
		client.Register(ctx, "bob", "bob@example.com", testPassword)
		ana, _ := client.Login(ctx, "ana@example.com", testPassword)
		bob, _ := client.Login(ctx, "bob@example.com", testPassword)

		if _, err := client.Previews(ctx, ""); services.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %v", err)
		}

		req := models.SaveRequest{
			URL:          "https://www.example.com",
			ColorPalette: []string{"#000000", "#ffffff"},
			BestTrait:    "High contrast",
			Analysis:     "Crisp",
		}
		status, err := client.Save(ctx, ana.Token, req)
		if err != nil || status != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%v)", status, err)
		}

		previews, err := client.Previews(ctx, ana.Token)
		if err != nil || len(previews) != 1 {
			t.Fatalf("expected one preview, got %v (%v)", previews, err)
		}
		if previews[0].WebsiteName != "example.com" {
			t.Errorf("expected website name from host, got %q", previews[0].WebsiteName)
		}
		id := string(previews[0].ID)

		if others, _ := client.Previews(ctx, bob.Token); len(others) != 0 {
			t.Errorf("expected bob to see no sites, got %v", others)
		}

		details, err := client.SiteDetails(ctx, ana.Token, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if details.URL != req.URL || details.Data == nil || details.Data.Analysis != "Crisp" || details.CreatedAt == "" {
			t.Errorf("unexpected details %+v", details)
		}

		if _, err := client.SiteDetails(ctx, bob.Token, id); services.StatusCode(err) != http.StatusForbidden {
			t.Errorf("expected 403 for other user's site, got %v", err)
		}
		if _, err := client.Delete(ctx, bob.Token, id); services.StatusCode(err) != http.StatusForbidden {
			t.Errorf("expected 403 deleting other user's site, got %v", err)
		}

		status, err = client.Delete(ctx, ana.Token, id)
		if err != nil || status != http.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", status, err)
		}
		if _, err := client.Delete(ctx, ana.Token, id); services.StatusCode(err) != http.StatusNotFound {
			t.Errorf("expected 404 on second delete, got %v", err)
		}
		if remaining, _ := client.Previews(ctx, ana.Token); len(remaining) != 0 {
			t.Errorf("expected no previews after delete, got %v", remaining)
		}
	})

	t.Run("Logout Invalidates Token", func(t *testing.T) {
		_, client := newStubServer(t, WithAutoVerify(true))
		client.Register(ctx, "ana", "ana@example.com", testPassword)
		login, _ := client.Login(ctx, "ana@example.com", testPassword)

		raw, err := client.Get(ctx, "/api/home", login.Token)
		if err != nil || !raw.OK() {
			t.Fatalf("expected home to succeed, got %v %+v", err, raw)
		}

		if err := client.Logout(ctx, login.Token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := client.Previews(ctx, login.Token); services.StatusCode(err) != http.StatusUnauthorized {
			t.Errorf("expected 401 after logout, got %v", err)
		}
	})
}

func TestPalette(t *testing.T) {
	t.Run("Contrast Ratio Bounds", func(t *testing.T) {
		if got := round2(contrastRatio("#000000", "#ffffff")); got != 21 {
			t.Errorf("black on white = %v, want 21", got)
		}
		if got := contrastRatio("#777777", "#777777"); got != 1 {
			t.Errorf("same color = %v, want 1", got)
		}
	})

	t.Run("Hue", func(t *testing.T) {
		tests := map[string]float64{"#ff0000": 0, "#00ff00": 120, "#0000ff": 240, "#808080": 0}
		for color, want := range tests {
			if got := hue(color); got != want {
				t.Errorf("hue(%s) = %v, want %v", color, got, want)
			}
		}
	})

	t.Run("Harmony", func(t *testing.T) {
		if got := hueHarmony([]string{"#ff0000", "#ff0000"}); got != 1 {
			t.Errorf("identical hues = %v, want 1", got)
		}
		if got := hueHarmony([]string{"#ff0000", "#00ffff"}); got != 0 {
			t.Errorf("opposite hues = %v, want 0", got)
		}
	})

	t.Run("Invalid Color", func(t *testing.T) {
		if _, _, _, ok := parseHex("#fff"); ok {
			t.Error("expected short hex to be rejected")
		}
	})
}
