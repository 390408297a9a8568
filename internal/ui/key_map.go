package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	submit  key.Binding
	save    key.Binding
	focus   key.Binding
	sidebar key.Binding
	up      key.Binding
	down    key.Binding
	remove  key.Binding
	account key.Binding
	toggle  key.Binding
	next    key.Binding
	prev    key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		sidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "sidebar")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		remove:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		account: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "login/logout")),
		toggle:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "login/register")),
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.save, k.focus, k.sidebar},
		{k.up, k.down, k.remove},
		{k.account, k.toggle, k.back, k.quit},
	}
}
