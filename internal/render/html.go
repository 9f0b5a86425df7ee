package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/rafiq-frontend/internal/chatlog"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML neutralises the characters that matter inside element content.
// It must not be used for attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

const messageTemplate = `<div class="message %s" style="margin-bottom: 8px"><strong>%s:</strong> %s</div>`

// MessageHTML renders one chat log entry.
func MessageHTML(m chatlog.Message) string {
	return messageHTML(m, EscapeHTML(m.Text))
}

func messageHTML(m chatlog.Message, body string) string {
	role := m.Role
	if !role.Valid() {
		role = chatlog.RoleSystem
	}
	return fmt.Sprintf(messageTemplate, role, role.Label(), body)
}

// HTMLRenderer renders chat messages, optionally turning assistant answers from markdown into sanitised HTML.
type HTMLRenderer struct {
	markdown bool
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewHTMLRenderer(renderMarkdown bool) *HTMLRenderer {
	return &HTMLRenderer{
		markdown: renderMarkdown,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

func (r *HTMLRenderer) Message(m chatlog.Message) string {
	if r.markdown && m.Role == chatlog.RoleAssistant {
		return messageHTML(m, r.MarkdownHTML(m.Text))
	}
	return MessageHTML(m)
}

// MarkdownHTML converts markdown to HTML and strips anything the UGC policy does not allow.
// Conversion failures fall back to escaped text.
func (r *HTMLRenderer) MarkdownHTML(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return EscapeHTML(text)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}
