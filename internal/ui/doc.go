// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [HomeView] : URL input, the current analysis with palette swatches, and a sidebar of saved sites
//  2. [AuthView] : Login/registration form
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// It reads state only through the [SessionState] and [AnalysisState] interfaces and keeps nothing but input
// contents, focus and the active view itself. Holder operations run inside [tea.Cmd] goroutines and report back
// with a message, so rendering never blocks on the network.
//
// Navigation requested by the session holder arrives through a [Routes] channel, the same way a long-running
// task would stream progress. Holder change notifications are collapsed into a one-slot channel and
// delivered the same way, resyncing the saved-sites list.
//
// Keyboard bindings are listed with charmbracelet/bubbles/help.
package ui
