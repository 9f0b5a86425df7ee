package formatter

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(t *Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", t.title())

	for _, e := range t.Entries {
		if e.Speaker == "" {
			fmt.Fprintf(&buf, "> %s\n\n", strings.ReplaceAll(e.Text, "\n", "\n> "))
			continue
		}
		fmt.Fprintf(&buf, "**%s:** %s\n\n", e.Speaker, e.Text)
	}

	if t.Sources != "" {
		fmt.Fprintf(&buf, "## Sources\n\n```json\n%s\n```\n", t.Sources)
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
