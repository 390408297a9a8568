package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/swatch/internal/models"
)

// View renders the current screen.
func (m *Model) View() string {
	var body string
	switch m.view {
	case AuthView:
		body = m.renderAuth()
	default:
		body = m.renderHome()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(), styles.help.Render(m.help.View(m.keys)))
}

func (m *Model) renderHome() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		styles.title.Render("Swatch"),
		m.url.View(),
		"",
		m.renderAnalysis(m.analysis.Snapshot().Data),
	)
	main = styles.panel.Render(main)

	if !m.sidebarOpen {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

func (m *Model) renderSidebar() string {
	box := styles.sidebar
	if m.focus == focusSidebar {
		box = styles.focused
	}
	box = box.Width(sidebarWidth)

	snap := m.session.Snapshot()
	if !snap.Authenticated {
		return box.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.label.Render("Saved Sites"),
			"",
			"Please log in to view saved sites",
			"",
			styles.help.Render("ctrl+l to log in"),
		))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome, %s\n\n", snap.Session.Username)
	if len(m.previews.Items()) == 0 {
		b.WriteString("No saved sites yet\n")
	} else {
		b.WriteString(m.previews.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.help.Render("ctrl+l to log out"))
	return box.Render(b.String())
}

func (m *Model) renderAnalysis(data models.AnalysisResult) string {
	if m.loading != "" {
		return styles.warn.Render(m.loading)
	}
	if data.IsEmpty() {
		return styles.help.Render("Enter a URL and press enter to analyze its design.")
	}

	var b strings.Builder
	if data.WebsiteName != "" {
		b.WriteString(styles.label.Render(data.WebsiteName))
		b.WriteString("\n")
	}
	if data.SourceURL != "" {
		b.WriteString(data.SourceURL)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.label.Render("Color Palette"))
	b.WriteString("\n")
	if len(data.ColorPalette) == 0 {
		b.WriteString("No colors were extracted.")
	} else {
		swatches := make([]string, len(data.ColorPalette))
		for i, c := range data.ColorPalette {
			swatches[i] = Swatch(c)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, swatches...))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", styles.label.Render("Best Trait:"), data.BestTrait)
	fmt.Fprintf(&b, "%s %.2f\n", styles.label.Render("Harmony Score:"), data.HarmonyScore)
	fmt.Fprintf(&b, "%s %.2f\n\n", styles.label.Render("Contrast Ratio:"), data.ContrastRatio)
	b.WriteString(styles.label.Render("Analysis"))
	b.WriteString("\n")
	b.WriteString(data.Analysis)
	return b.String()
}

func (m *Model) renderAuth() string {
	title := "Login"
	toggle := "Don't have an account? ctrl+t to register"
	if m.mode == registerMode {
		title = "Register"
		toggle = "Already have an account? ctrl+t to log in"
	}

	lines := []string{styles.title.Render(title)}
	for _, f := range m.activeFields() {
		lines = append(lines, m.fields[f].View())
	}
	lines = append(lines, "")

	snap := m.session.Snapshot()
	switch {
	case m.loading != "":
		lines = append(lines, styles.warn.Render(m.loading))
	case snap.Error != "":
		lines = append(lines, styles.err.Render(snap.Error))
	case snap.Notice != "":
		lines = append(lines, styles.ok.Render(snap.Notice))
	}

	lines = append(lines, "", styles.help.Render(toggle))
	return styles.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return styles.err.Render(m.status)
	}
	return styles.ok.Render(m.status)
}
