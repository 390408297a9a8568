package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Response messages shared with the real backend.
const (
	MsgRegistered       = "User created successfully. Please check your email to verify your account."
	MsgLoginOK          = "Login successful"
	MsgInvalidLogin     = "Invalid email or password"
	MsgEmailNotVerified = "Email not verified. Please check your email to verify your account."
	MsgLogoutOK         = "Logout successful"
	MsgSaved            = "Data saved successfully"
	MsgDeleted          = "Data deleted successfully"
)

// passwordCost is the bcrypt work factor for stub accounts.
const passwordCost = bcrypt.MinCost

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

type stubUser struct {
	id       string
	username string
	email    string
	password []byte // bcrypt hash
	verified bool
}

// StubAPI is an in-memory implementation of the design-analysis API.
type StubAPI struct {
	logger     *log.Logger
	autoVerify bool
	now        func() time.Time

	mu           sync.Mutex
	users        map[string]*stubUser // by id
	byEmail      map[string]string    // email -> id
	tokens       map[string]string    // bearer token -> user id
	verification map[string]string    // verification token -> user id
	sites        map[string]models.SiteDetails
	order        []string // site ids in insertion order
}

// StubOption configures a [StubAPI].
type StubOption func(*StubAPI)

// WithAutoVerify marks accounts verified as soon as they register.
func WithAutoVerify(v bool) StubOption {
	return func(s *StubAPI) { s.autoVerify = v }
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) StubOption {
	return func(s *StubAPI) { s.now = now }
}

// NewStubAPI creates an empty stub.
func NewStubAPI(logger *log.Logger, opts ...StubOption) *StubAPI {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &StubAPI{
		logger:       logger,
		now:          time.Now,
		users:        map[string]*stubUser{},
		byEmail:      map[string]string{},
		tokens:       map[string]string{},
		verification: map[string]string{},
		sites:        map[string]models.SiteDetails{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds every endpoint to r.
func (s *StubAPI) Register(r Router) {
	auth := RequireBearer(s.lookupToken)

	r.Handle(http.MethodPost, "/api/scrape", http.HandlerFunc(s.scrape))
	r.Handle(http.MethodPost, "/api/register", http.HandlerFunc(s.register))
	r.Handle(http.MethodPost, "/api/login", http.HandlerFunc(s.login))
	r.Handle(http.MethodGet, "/api/verify-email/{token}", http.HandlerFunc(s.verifyEmail))
	r.Handle(http.MethodPost, "/api/logout", auth(http.HandlerFunc(s.logout)))
	r.Handle(http.MethodGet, "/api/home", auth(http.HandlerFunc(s.home)))
	r.Handle(http.MethodGet, "/api/saved-sites-preview", auth(http.HandlerFunc(s.previews)))
	r.Handle(http.MethodPost, "/api/save", auth(http.HandlerFunc(s.save)))
	r.Handle(http.MethodDelete, "/api/delete/{id}", auth(http.HandlerFunc(s.delete)))
	r.Handle(http.MethodGet, "/api/site-details/{id}", auth(http.HandlerFunc(s.siteDetails)))
}

// Handler returns a router serving the stub with request id, logging and recovery middleware.
func (s *StubAPI) Handler() http.Handler {
	router := NewBasicRouter()
	router.Use(RequestID(), Logger(s.logger), Recoverer(s.logger))
	s.Register(router)
	return router
}

// VerificationToken returns the pending verification token for email.
//
// The real backend mails it; the stub logs it and exposes it here.
func (s *StubAPI) VerificationToken(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return "", false
	}
	for token, uid := range s.verification {
		if uid == id {
			return token, true
		}
	}
	return "", false
}

func (s *StubAPI) lookupToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	return id, ok
}

func (s *StubAPI) scrape(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := decode(r, &body); err != nil || strings.TrimSpace(body.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("No URL provided"))
		return
	}

	u, err := url.Parse(strings.TrimSpace(body.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to process the website data"))
		return
	}

	result := analyzeHost(u.Hostname())
	writeJSON(w, http.StatusOK, map[string]any{
		"color_palette":  result.Palette,
		"contrast_ratio": result.Contrast,
		"harmony_score":  result.Harmony,
		"best_trait":     result.BestTrait,
		"analysis":       result.Analysis,
	})
}

func (s *StubAPI) register(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}

	var missing []string
	for _, field := range []string{"username", "password"} {
		if _, ok := body[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("Missing fields: "+strings.Join(missing, ", ")))
		return
	}

	username, email, password := body["username"], strings.ToLower(strings.TrimSpace(body["email"])), body["password"]
	if msg := validatePassword(password); msg != "" {
		writeJSON(w, http.StatusBadRequest, messageBody(msg))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to register user"))
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.username == username {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, messageBody("Username already exists"))
			return
		}
	}
	if _, taken := s.byEmail[email]; taken {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, messageBody("Email already exists"))
		return
	}

	user := &stubUser{
		id:       objectID(),
		username: username,
		email:    email,
		password: hash,
		verified: s.autoVerify,
	}
	s.users[user.id] = user
	s.byEmail[email] = user.id

	var verifyToken string
	if !user.verified {
		verifyToken = uuid.NewString()
		s.verification[verifyToken] = user.id
	}
	s.mu.Unlock()

	if verifyToken != "" {
		s.logger.Info("verification link", "email", email, "path", "/api/verify-email/"+verifyToken)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": MsgRegistered, "user_id": user.id})
}

func (s *StubAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}

	s.mu.Lock()
	user, ok := s.users[s.byEmail[strings.ToLower(strings.TrimSpace(body.Email))]]
	if !ok || !passwordMatches(user, body.Password) {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, messageBody(MsgInvalidLogin))
		return
	}
	if !user.verified {
		s.mu.Unlock()
		writeJSON(w, http.StatusForbidden, messageBody(MsgEmailNotVerified))
		return
	}

	token := uuid.NewString()
	s.tokens[token] = user.id
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": MsgLoginOK,
		"token":   token,
		"user": map[string]string{
			"id":       user.id,
			"username": user.username,
			"email":    user.email,
		},
	})
}

func (s *StubAPI) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	s.mu.Lock()
	id, ok := s.verification[token]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, messageBody("The confirmation link is invalid or has expired."))
		return
	}
	user := s.users[id]
	already := user.verified
	user.verified = true
	s.mu.Unlock()

	if already {
		writeJSON(w, http.StatusOK, messageBody("Account already verified. Please log in."))
		return
	}
	writeJSON(w, http.StatusOK, messageBody("You have confirmed your account. Thanks!"))
}

func (s *StubAPI) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, messageBody(MsgLogoutOK))
}

func (s *StubAPI) home(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.users[UserIDFrom(r.Context())]
	s.mu.Unlock()

	if user == nil {
		writeJSON(w, http.StatusUnauthorized, messageBody("Token is invalid!"))
		return
	}
	writeJSON(w, http.StatusOK, messageBody("Welcome "+user.username))
}

func (s *StubAPI) previews(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())

	s.mu.Lock()
	out := []models.PreviewSummary{}
	for _, id := range s.order {
		site := s.sites[id]
		if string(site.UserID) == userID {
			out = append(out, models.PreviewSummary{ID: site.ID, WebsiteName: site.WebsiteName, LogoURL: site.LogoURL})
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// saveBody is the save payload including the optional extras the backend folds into data.
type saveBody struct {
	models.SaveRequest
	WebsiteName   string           `json:"website_name"`
	LogoURL       string           `json:"logo_url"`
	Fonts         models.SiteFonts `json:"fonts"`
	Colors        []string         `json:"colors"`
	Technologies  []string         `json:"technologies"`
	ScreenshotURL string           `json:"screenshot_url"`
}

func (s *StubAPI) save(w http.ResponseWriter, r *http.Request) {
	var body saveBody
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid JSON body"))
		return
	}

	name := body.WebsiteName
	if name == "" {
		if u, err := url.Parse(body.URL); err == nil {
			name = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	contrast, harmony := body.ContrastRatio, body.HarmonyScore
	site := models.SiteDetails{
		ID:            models.ID(objectID()),
		UserID:        models.ID(UserIDFrom(r.Context())),
		URL:           body.URL,
		WebsiteName:   name,
		LogoURL:       body.LogoURL,
		ColorPalette:  body.ColorPalette,
		ContrastRatio: &contrast,
		HarmonyScore:  &harmony,
		BestTrait:     body.BestTrait,
		Analysis:      body.Analysis,
		Data: &models.SiteData{
			Fonts:         body.Fonts,
			Colors:        body.Colors,
			Technologies:  body.Technologies,
			Analysis:      body.Analysis,
			ScreenshotURL: body.ScreenshotURL,
		},
		CreatedAt: s.now().UTC().Format(http.TimeFormat),
	}

	s.mu.Lock()
	s.sites[string(site.ID)] = site
	s.order = append(s.order, string(site.ID))
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, messageBody(MsgSaved))
}

func (s *StubAPI) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	site, ok := s.sites[id]
	switch {
	case !ok:
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errorBody("Site data not found"))
		return
	case string(site.UserID) != UserIDFrom(r.Context()):
		s.mu.Unlock()
		writeJSON(w, http.StatusForbidden, errorBody("Unauthorized to delete this data"))
		return
	}
	delete(s.sites, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, messageBody(MsgDeleted))
}

func (s *StubAPI) siteDetails(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	site, ok := s.sites[id]
	s.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, errorBody("Site not found"))
	case string(site.UserID) != UserIDFrom(r.Context()):
		writeJSON(w, http.StatusForbidden, errorBody("Unauthorized access"))
	default:
		writeJSON(w, http.StatusOK, site)
	}
}

func validatePassword(password string) string {
	switch {
	case len(password) < 8:
		return "Password must be at least 8 characters long."
	case !upperRe.MatchString(password):
		return "Password must contain at least one uppercase letter."
	case !lowerRe.MatchString(password):
		return "Password must contain at least one lowercase letter."
	case !digitRe.MatchString(password):
		return "Password must contain at least one digit."
	case !specialRe.MatchString(password):
		return "Password must contain at least one special character."
	default:
		return ""
	}
}

func passwordMatches(u *stubUser, password string) bool {
	return bcrypt.CompareHashAndPassword(u.password, []byte(password)) == nil
}

// objectID returns a 24 hex character id shaped like the backend's record ids.
func objectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
