package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/desertthunder/swatch/internal/state"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	AuthView
)

type focusArea int

const (
	focusURL focusArea = iota
	focusSidebar
)

type authMode int

const (
	loginMode authMode = iota
	registerMode
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// NotAuthenticatedAlert is shown when saving without a session.
const NotAuthenticatedAlert = "User is not authenticated"

const sidebarWidth = 40

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	session  SessionState
	analysis AnalysisState
	routes   *Routes

	// changes coalesces holder notifications; a pending signal covers any number of changes.
	changes     chan struct{}
	unsubscribe []func()

	width  int
	height int

	url         textinput.Model
	fields      []textinput.Model
	mode        authMode
	field       int
	previews    list.Model
	sidebarOpen bool
	focus       focusArea

	loading   string
	status    string
	statusErr bool

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model reading from the given holders.
//
// routes may be nil when nothing navigates.
func NewModel(ctx context.Context, session SessionState, analysis AnalysisState, routes *Routes) *Model {
	url := textinput.New()
	url.Placeholder = "https://example.com"
	url.Prompt = "URL › "
	url.CharLimit = 2048
	url.Focus()

	fields := make([]textinput.Model, 3)
	for i, label := range []string{"Username", "Email Address", "Password"} {
		in := textinput.New()
		in.Placeholder = label
		in.Prompt = label + ": "
		in.CharLimit = 256
		fields[i] = in
	}
	fields[fieldPassword].EchoMode = textinput.EchoPassword
	fields[fieldPassword].EchoCharacter = '•'

	previews := list.New(nil, list.NewDefaultDelegate(), sidebarWidth, 10)
	previews.Title = "Saved Sites"
	previews.SetShowHelp(false)
	previews.SetShowStatusBar(false)
	previews.SetFilteringEnabled(false)

	m := &Model{
		ctx:         ctx,
		view:        HomeView,
		session:     session,
		analysis:    analysis,
		routes:      routes,
		changes:     make(chan struct{}, 1),
		url:         url,
		fields:      fields,
		previews:    previews,
		sidebarOpen: true,
		help:        help.New(),
		keys:        newKeyMap(),
	}
	m.unsubscribe = []func(){session.Subscribe(m.changed), analysis.Subscribe(m.changed)}
	return m
}

// Close unregisters the model from both holders.
func (m *Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
}

// changed is the holder listener. It never blocks, so holders may notify from inside Update.
func (m *Model) changed() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Init starts the cursor blink, listens for navigation and holder changes, and loads the previews of a restored session.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForRoute(), m.waitForChange()}
	if m.session.Snapshot().Authenticated {
		cmds = append(cmds, m.fetchPreviews())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.previews.SetSize(sidebarWidth, max(msg.Height-8, 5))
		m.url.Width = max(msg.Width-sidebarWidth-16, 20)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case AuthView:
			return m.handleAuthKeys(msg)
		default:
			return m.handleHomeKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgAnalysisFetched:
		m.loading = ""
		if msg.err != nil {
			if errors.Is(msg.err, shared.ErrMissingArgument) {
				m.setStatus("Please enter a URL", true)
			} else {
				m.setStatus("Could not analyze "+msg.data.(string)+": "+msg.err.Error(), true)
			}
			return m, nil
		}
		m.setStatus("", false)

	case MsgSiteSelected:
		m.loading = ""
		if msg.err != nil {
			m.setStatus("Could not load saved site: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Loaded saved site", false)

	case MsgSaved:
		m.loading = ""
		switch {
		case errors.Is(msg.err, shared.ErrNotAuthenticated):
			m.setStatus(NotAuthenticatedAlert, true)
		case msg.err != nil:
			m.setStatus("Save failed: "+msg.err.Error(), true)
		default:
			m.setStatus("Saved", false)
		}
		m.syncPreviews()

	case MsgDeleted:
		m.loading = ""
		if msg.err != nil {
			m.setStatus("Delete failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Deleted", false)
		}
		m.syncPreviews()

	case MsgPreviewsFetched:
		m.syncPreviews()

	case MsgSessionChanged:
		m.loading = ""
		was, _ := msg.data.(bool)
		now := m.session.Snapshot().Authenticated
		if !now {
			m.resetFields()
		}
		m.syncPreviews()
		if !was && now {
			return m, m.fetchPreviews()
		}

	case MsgRouteChanged:
		route, _ := msg.data.(state.Route)
		m.navigate(route)
		return m, m.waitForRoute()
	case MsgStateChanged:
		m.syncPreviews()
		return m, m.waitForChange()
	}

	return m, nil
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.sidebar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen {
			m.setFocus(focusURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.focus):
		if m.sidebarOpen && m.focus == focusURL {
			m.setFocus(focusSidebar)
		} else {
			m.setFocus(focusURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.save):
		if !m.session.Snapshot().Authenticated {
			m.setStatus(NotAuthenticatedAlert, true)
			return m, nil
		}
		m.loading = "Saving..."
		return m, m.saveData()

	case key.Matches(msg, m.keys.account):
		if m.session.Snapshot().Authenticated {
			m.loading = "Logging out..."
			return m, m.logout()
		}
		m.openAuth()
		return m, textinput.Blink
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKeys(msg)
	}

	if key.Matches(msg, m.keys.submit) {
		target := m.url.Value()
		m.loading = "Analyzing..."
		return m, m.fetchData(target)
	}

	var cmd tea.Cmd
	m.url, cmd = m.url.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.session.Snapshot().Authenticated {
		if key.Matches(msg, m.keys.submit) {
			m.openAuth()
			return m, textinput.Blink
		}
		return m, nil
	}

	selected, ok := m.previews.SelectedItem().(previewItem)
	switch {
	case key.Matches(msg, m.keys.submit) && ok:
		m.loading = "Loading..."
		return m, m.selectSite(string(selected.preview.ID))
	case key.Matches(msg, m.keys.remove) && ok:
		m.loading = "Deleting..."
		return m, m.deleteData(string(selected.preview.ID))
	}

	var cmd tea.Cmd
	m.previews, cmd = m.previews.Update(msg)
	return m, cmd
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.session.ClearError()
		m.navigate(state.RouteHome)
		return m, nil

	case key.Matches(msg, m.keys.toggle):
		if m.mode == loginMode {
			m.mode = registerMode
		} else {
			m.mode = loginMode
		}
		m.session.ClearError()
		m.resetFields()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.submit):
		m.session.ClearError()
		m.loading = "Submitting..."
		if m.mode == loginMode {
			return m, m.login(m.fields[fieldEmail].Value(), m.fields[fieldPassword].Value())
		}
		return m, m.register(m.fields[fieldUsername].Value(), m.fields[fieldEmail].Value(), m.fields[fieldPassword].Value())

	case key.Matches(msg, m.keys.next):
		m.focusField(m.stepField(1))
		return m, nil

	case key.Matches(msg, m.keys.prev):
		m.focusField(m.stepField(-1))
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	return m, cmd
}

// updateInputs forwards non-key messages such as cursor blinks.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case AuthView:
		m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	default:
		m.url, cmd = m.url.Update(msg)
	}
	return m, cmd
}

func (m *Model) navigate(route state.Route) {
	switch route {
	case state.RouteAuth:
		m.openAuth()
	default:
		m.view = HomeView
		m.loading = ""
		m.setFocus(focusURL)
	}
}

func (m *Model) openAuth() {
	m.view = AuthView
	m.session.ClearError()
	m.resetFields()
	m.url.Blur()
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusURL {
		m.url.Focus()
	} else {
		m.url.Blur()
	}
}

// activeFields lists the fields of the current auth mode in display order.
func (m *Model) activeFields() []int {
	if m.mode == registerMode {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *Model) stepField(delta int) int {
	active := m.activeFields()
	pos := 0
	for i, f := range active {
		if f == m.field {
			pos = i
		}
	}
	pos = (pos + delta + len(active)) % len(active)
	return active[pos]
}

func (m *Model) focusField(field int) {
	m.field = field
	for i := range m.fields {
		if i == field {
			m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
}

func (m *Model) resetFields() {
	for i := range m.fields {
		m.fields[i].SetValue("")
	}
	m.focusField(m.activeFields()[0])
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) syncPreviews() {
	m.previews.SetItems(previewItems(m.analysis.Snapshot().Previews))
}

func (m *Model) waitForRoute() tea.Cmd {
	if m.routes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case route := <-m.routes.ch:
			return routeChangedMsg(route)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) fetchData(url string) tea.Cmd {
	return func() tea.Msg {
		return analysisFetchedMsg(url, m.analysis.FetchData(m.ctx, url))
	}
}

func (m *Model) selectSite(id string) tea.Cmd {
	return func() tea.Msg {
		return siteSelectedMsg(id, m.analysis.SelectSite(m.ctx, id))
	}
}

func (m *Model) saveData() tea.Cmd {
	return func() tea.Msg {
		return savedMsg(m.analysis.SaveData(m.ctx))
	}
}

func (m *Model) deleteData(id string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg(id, m.analysis.DeleteData(m.ctx, id))
	}
}

func (m *Model) fetchPreviews() tea.Cmd {
	return func() tea.Msg {
		return previewsFetchedMsg(m.analysis.FetchPreviews(m.ctx))
	}
}

func (m *Model) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		was := m.session.Snapshot().Authenticated
		m.session.Login(m.ctx, email, password)
		return sessionChangedMsg(was)
	}
}

func (m *Model) register(username, email, password string) tea.Cmd {
	return func() tea.Msg {
		was := m.session.Snapshot().Authenticated
		m.session.Register(m.ctx, username, email, password)
		return sessionChangedMsg(was)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout(m.ctx)
		m.analysis.Reset()
		return sessionChangedMsg(true)
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return stateChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}
