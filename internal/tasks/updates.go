package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSite Phase = iota
	ExportSite
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchSite:
		return "fetch_site"
	case ExportSite:
		return "export_site"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func startingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSite,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d saved sites...", total),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSite,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSite,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Manifest written to " + path,
		Data:    path,
	}
}
