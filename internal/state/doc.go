// Package state holds the client-side session and analysis state.
//
// [SessionHolder] owns the authenticated identity and its persisted copy.
// [AnalysisHolder] owns the displayed analysis, the saved-site previews and
// the selected site. Only the holders mutate their state; views read
// snapshots and call operations, and are notified through Subscribe.
package state
