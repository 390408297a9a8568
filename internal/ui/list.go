package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/swatch/internal/models"
)

var _ list.Item = previewItem{}

// previewItem wraps [models.PreviewSummary] to implement [list.Item].
type previewItem struct {
	preview models.PreviewSummary
}

func (i previewItem) FilterValue() string { return i.preview.Label() }
func (i previewItem) Title() string       { return i.preview.Label() }
func (i previewItem) Description() string { return string(i.preview.ID) }

func previewItems(previews []models.PreviewSummary) []list.Item {
	items := make([]list.Item, len(previews))
	for i, p := range previews {
		items[i] = previewItem{preview: p}
	}
	return items
}
