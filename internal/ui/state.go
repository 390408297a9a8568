package ui

import (
	"context"

	"github.com/desertthunder/swatch/internal/state"
)

// SessionState is what the views need from the session holder.
type SessionState interface {
	Snapshot() state.SessionSnapshot
	Login(ctx context.Context, email, password string)
	Register(ctx context.Context, username, email, password string)
	Logout(ctx context.Context)
	ClearError()
	Subscribe(fn func()) func()
}

// AnalysisState is what the views need from the analysis holder.
type AnalysisState interface {
	Snapshot() state.AnalysisSnapshot
	FetchData(ctx context.Context, url string) error
	SelectSite(ctx context.Context, id string) error
	SaveData(ctx context.Context) error
	DeleteData(ctx context.Context, id string) error
	FetchPreviews(ctx context.Context) error
	Reset()
	Subscribe(fn func()) func()
}

var (
	_ SessionState  = (*state.SessionHolder)(nil)
	_ AnalysisState = (*state.AnalysisHolder)(nil)
)

// Routes carries navigation requests from the holders to the running TUI.
type Routes struct {
	ch chan state.Route
}

// NewRoutes creates a buffered route channel.
func NewRoutes() *Routes {
	return &Routes{ch: make(chan state.Route, 8)}
}

// Navigate is a [state.Navigator]. It drops the request when the buffer is full.
func (r *Routes) Navigate(route state.Route) {
	select {
	case r.ch <- route:
	default:
	}
}
