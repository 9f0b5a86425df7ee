package render

import (
	"strings"
	"testing"

	"github.com/futig/rafiq-frontend/internal/chatlog"
)

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<script>alert("x") && 1</script>`)
	want := `&lt;script&gt;alert("x") &amp;&amp; 1&lt;/script&gt;`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMessageHTML(t *testing.T) {
	tests := []struct {
		name string
		msg  chatlog.Message
		want string
	}{
		{
			name: "user",
			msg:  chatlog.Message{Role: chatlog.RoleUser, Text: "Salut"},
			want: `<div class="message user" style="margin-bottom: 8px"><strong>Vous:</strong> Salut</div>`,
		},
		{
			name: "assistant",
			msg:  chatlog.Message{Role: chatlog.RoleAssistant, Text: "Bonjour"},
			want: `<div class="message assistant" style="margin-bottom: 8px"><strong>Rafiq-AI:</strong> Bonjour</div>`,
		},
		{
			name: "system",
			msg:  chatlog.Message{Role: chatlog.RoleSystem, Text: MsgThinking},
			want: `<div class="message system" style="margin-bottom: 8px"><strong>:</strong> Rafiq-AI réfléchit...</div>`,
		},
		{
			name: "escaped",
			msg:  chatlog.Message{Role: chatlog.RoleUser, Text: "<script>x</script>"},
			want: `<div class="message user" style="margin-bottom: 8px"><strong>Vous:</strong> &lt;script&gt;x&lt;/script&gt;</div>`,
		},
		{
			name: "unknown role",
			msg:  chatlog.Message{Role: chatlog.Role(`x" onclick="y`), Text: "t"},
			want: `<div class="message system" style="margin-bottom: 8px"><strong>:</strong> t</div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageHTML(tt.msg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTMLRenderer_Markdown(t *testing.T) {
	r := NewHTMLRenderer(true)

	got := r.Message(chatlog.Message{Role: chatlog.RoleAssistant, Text: "**gras** <script>alert(1)</script>"})
	if !strings.Contains(got, "<strong>gras</strong>") {
		t.Errorf("markdown not rendered: %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("script survived sanitising: %q", got)
	}

	user := r.Message(chatlog.Message{Role: chatlog.RoleUser, Text: "**brut**"})
	if !strings.Contains(user, "**brut**") {
		t.Errorf("user text must stay literal: %q", user)
	}
}

func TestHTMLRenderer_PlainWhenDisabled(t *testing.T) {
	r := NewHTMLRenderer(false)
	m := chatlog.Message{Role: chatlog.RoleAssistant, Text: "**x**"}
	if got, want := r.Message(m), MessageHTML(m); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
