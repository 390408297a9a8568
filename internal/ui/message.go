package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swatch/internal/state"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAnalysisFetched MsgKind = iota
	MsgSiteSelected
	MsgSaved
	MsgDeleted
	MsgPreviewsFetched
	MsgSessionChanged
	MsgRouteChanged
	MsgStateChanged
)

// Kind reports which operation produced the message.
func (m Msg) Kind() MsgKind { return m.kind }

// Err is the error returned by the operation, if any.
func (m Msg) Err() error { return m.err }

// analysisFetchedMsg is the constructor for [MsgAnalysisFetched]
func analysisFetchedMsg(url string, err error) Msg {
	return Msg{kind: MsgAnalysisFetched, data: url, err: err}
}

// siteSelectedMsg is the constructor for [MsgSiteSelected]
func siteSelectedMsg(id string, err error) Msg {
	return Msg{kind: MsgSiteSelected, data: id, err: err}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(err error) Msg {
	return Msg{kind: MsgSaved, err: err}
}

// deletedMsg is the constructor for [MsgDeleted]
func deletedMsg(id string, err error) Msg {
	return Msg{kind: MsgDeleted, data: id, err: err}
}

// previewsFetchedMsg is the constructor for [MsgPreviewsFetched]
func previewsFetchedMsg(err error) Msg {
	return Msg{kind: MsgPreviewsFetched, err: err}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]; wasAuthenticated is the state before the operation.
func sessionChangedMsg(wasAuthenticated bool) Msg {
	return Msg{kind: MsgSessionChanged, data: wasAuthenticated}
}

// routeChangedMsg is the constructor for [MsgRouteChanged]
func routeChangedMsg(route state.Route) Msg {
	return Msg{kind: MsgRouteChanged, data: route}
}

// stateChangedMsg is the constructor for [MsgStateChanged]
func stateChangedMsg() Msg {
	return Msg{kind: MsgStateChanged}
}
