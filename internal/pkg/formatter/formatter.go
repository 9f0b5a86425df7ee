package formatter

import (
	"fmt"
	"time"

	"github.com/futig/rafiq-frontend/internal/entity"
)

const baseTitle = "Conversation Rafiq-AI"

// Entry is one line of a transcript
type Entry struct {
	Speaker string
	Text    string
	Time    time.Time
}

// Transcript is what gets exported: the messages plus the last sources panel
type Transcript struct {
	Title   string
	Entries []Entry
	Sources string
}

func (t *Transcript) title() string {
	if t.Title == "" {
		return baseTitle
	}
	return t.Title
}

type Formatter interface {
	Format(t *Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.ExportFormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.ExportFormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.ExportFormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}
