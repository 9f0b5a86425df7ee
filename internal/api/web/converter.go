package web

import (
	"html/template"
	"math"
	"time"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/render"
)

var exportFormats = []entity.ExportFormat{
	entity.ExportFormatMarkdown,
	entity.ExportFormatPDF,
	entity.ExportFormatDOCX,
}

type pageView struct {
	Messages       []template.HTML
	IngestStatus   string
	IngestAlert    string
	Sources        string
	Pending        bool
	RefreshSeconds int
	Formats        []entity.ExportFormat
}

// toPageView converts a conversation into template data.
// Messages are rendered (and escaped) by the renderer, so they go in as template.HTML.
func toPageView(conv *entity.Conversation, renderer *render.HTMLRenderer, poll time.Duration) *pageView {
	msgs := make([]template.HTML, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, template.HTML(renderer.Message(m))) //nolint:gosec
	}

	return &pageView{
		Messages:       msgs,
		IngestStatus:   conv.IngestStatus,
		IngestAlert:    conv.IngestAlert,
		Sources:        conv.Sources,
		Pending:        conv.Pending(),
		RefreshSeconds: refreshSeconds(poll),
		Formats:        exportFormats,
	}
}

func refreshSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
