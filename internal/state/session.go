package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/models"
	"github.com/desertthunder/swatch/internal/services"
	"github.com/desertthunder/swatch/internal/shared"
)

// Messages shown in the session error field.
const (
	EmailNotVerifiedMessage   = "Email not verified. Please check your email to verify your account."
	InvalidCredentialsMessage = "Invalid email or password."
	LoginFailedMessage        = "Login failed. Please check your credentials."
	RegistrationFailedMessage = "Registration failed. Please check your credentials."
)

// SessionSnapshot is a point-in-time copy of a [SessionHolder].
type SessionSnapshot struct {
	Session       models.Session
	Authenticated bool
	Error         string
	Notice        string
}

// Message returns the error, or the notice when there is no error.
func (s SessionSnapshot) Message() string {
	if s.Error != "" {
		return s.Error
	}
	return s.Notice
}

// SessionHolder owns the authenticated session.
//
// A session is either fully present or absent. Login and logout are the only
// writers of the persisted copy.
type SessionHolder struct {
	client   services.Client
	storage  Storage
	navigate Navigator
	logger   *log.Logger

	mu      sync.RWMutex
	session models.Session
	errMsg  string
	notice  string

	subs listeners
}

// NewSessionHolder creates a holder with no session. Call [SessionHolder.Restore] to load a persisted one.
//
// A nil navigator is replaced by a no-op and a nil logger discards output.
func NewSessionHolder(client services.Client, storage Storage, navigate Navigator, logger *log.Logger) *SessionHolder {
	if navigate == nil {
		navigate = func(Route) {}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SessionHolder{
		client:   client,
		storage:  storage,
		navigate: navigate,
		logger:   shared.WithLogger(logger, "component", "session"),
	}
}

// Restore loads a persisted session without contacting the server.
//
// A half-present or undecodable record leaves the holder without a session.
func (h *SessionHolder) Restore(ctx context.Context) error {
	token, okToken, err := h.storage.Get(ctx, StorageKeyToken)
	if err != nil {
		return err
	}
	raw, okUser, err := h.storage.Get(ctx, StorageKeyUser)
	if err != nil {
		return err
	}
	if !okToken || !okUser || token == "" {
		h.logger.Debug("no persisted session")
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		h.logger.Warn("ignoring unreadable persisted user", "error", err)
		return nil
	}

	session, err := models.NewSession(token, user)
	if err != nil {
		h.logger.Warn("ignoring incomplete persisted session", "error", err)
		return nil
	}

	h.mu.Lock()
	h.session = session
	h.mu.Unlock()

	h.logger.Info("session restored", "user", session.Username)
	h.subs.notify()
	return nil
}

// Login authenticates against the API.
//
// Failures are reported through the error field; on success the session is
// persisted and the holder navigates home.
func (h *SessionHolder) Login(ctx context.Context, email, password string) {
	resp, err := h.client.Login(ctx, email, password)
	if err != nil {
		h.logger.Error("login failed", "status", services.StatusCode(err), "error", err)
		h.setMessages(loginFailure(err), "")
		return
	}

	if resp.Message == EmailNotVerifiedMessage {
		h.logger.Warn("login refused: email not verified")
		h.setMessages(resp.Message, "")
		return
	}

	session, err := models.NewSession(resp.Token, resp.User)
	if err != nil {
		h.logger.Error("login response incomplete", "error", err)
		h.setMessages(LoginFailedMessage, "")
		return
	}

	if err := h.persist(ctx, session); err != nil {
		h.logger.Warn("session not persisted", "error", err)
	}

	h.mu.Lock()
	h.session = session
	h.errMsg = ""
	h.notice = ""
	h.mu.Unlock()

	h.logger.Info("logged in", "user", session.Username)
	h.subs.notify()
	h.navigate(RouteHome)
}

// Register creates an account. It never establishes a session.
//
// The server's confirmation becomes the notice; failures set the error field.
func (h *SessionHolder) Register(ctx context.Context, username, email, password string) {
	resp, err := h.client.Register(ctx, username, email, password)
	if err != nil {
		h.logger.Error("registration failed", "status", services.StatusCode(err), "error", err)
		msg := RegistrationFailedMessage
		if services.StatusCode(err) == http.StatusBadRequest {
			msg = services.Message(err)
		}
		h.setMessages(msg, "")
		return
	}

	h.logger.Info("registered", "username", username)
	h.setMessages("", resp.Message)
}

// Logout invalidates the token remotely, then clears the session whatever the outcome.
func (h *SessionHolder) Logout(ctx context.Context) {
	h.mu.RLock()
	token := h.session.Token
	h.mu.RUnlock()

	if token != "" {
		if err := h.client.Logout(ctx, token); err != nil {
			h.logger.Error("remote logout failed", "error", err)
		}
	}

	if err := h.storage.Delete(ctx, StorageKeyToken, StorageKeyUser); err != nil {
		h.logger.Error("failed to clear persisted session", "error", err)
	}

	h.mu.Lock()
	h.session = models.Session{}
	h.mu.Unlock()

	h.logger.Info("logged out")
	h.subs.notify()
	h.navigate(RouteHome)
}

// ClearError resets the error and notice.
func (h *SessionHolder) ClearError() {
	h.setMessages("", "")
}

// Current returns the session and whether one is present.
func (h *SessionHolder) Current() (models.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session, h.session.Valid()
}

// Error returns the current error message.
func (h *SessionHolder) Error() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.errMsg
}

// Notice returns the current informational message.
func (h *SessionHolder) Notice() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.notice
}

// Snapshot returns a copy of the held state.
func (h *SessionHolder) Snapshot() SessionSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return SessionSnapshot{
		Session:       h.session,
		Authenticated: h.session.Valid(),
		Error:         h.errMsg,
		Notice:        h.notice,
	}
}

// Subscribe registers fn to be called after every change. The returned func unregisters it.
func (h *SessionHolder) Subscribe(fn func()) func() {
	return h.subs.add(fn)
}

func (h *SessionHolder) setMessages(errMsg, notice string) {
	h.mu.Lock()
	h.errMsg = errMsg
	h.notice = notice
	h.mu.Unlock()
	h.subs.notify()
}

func (h *SessionHolder) persist(ctx context.Context, session models.Session) error {
	user, err := json.Marshal(session.User())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	if err := h.storage.Set(ctx, StorageKeyToken, session.Token); err != nil {
		return err
	}
	if err := h.storage.Set(ctx, StorageKeyUser, string(user)); err != nil {
		// a token without a user record would restore to nothing
		_ = h.storage.Delete(ctx, StorageKeyToken)
		return err
	}
	return nil
}

func loginFailure(err error) string {
	switch services.StatusCode(err) {
	case http.StatusForbidden:
		return EmailNotVerifiedMessage
	case http.StatusUnauthorized:
		return InvalidCredentialsMessage
	default:
		return LoginFailedMessage
	}
}
