package entity

import (
	"time"

	"github.com/futig/rafiq-frontend/internal/chatlog"
)

// Conversation is the state behind one browser session or Telegram chat:
// the chat log, the sources panel and the ingestion status line.
type Conversation struct {
	ID       string      `json:"id"`
	Messages chatlog.Log `json:"messages"`
	Sources  string      `json:"sources"`

	IngestStatus string `json:"ingest_status"`
	IngestAlert  string `json:"ingest_alert,omitempty"`

	// Generations are bumped on every submission; only the latest one may update the state.
	ChatGeneration   uint64 `json:"chat_generation"`
	IngestGeneration uint64 `json:"ingest_generation"`
	ChatPending      bool   `json:"chat_pending"`
	IngestPending    bool   `json:"ingest_pending"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(id string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        id,
		Messages:  chatlog.Log{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Pending reports whether a chat or ingestion request is still in flight.
func (c *Conversation) Pending() bool {
	return c.ChatPending || c.IngestPending
}

// Clone returns a copy that shares no message storage with c.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append(chatlog.Log(nil), c.Messages...)
	return &out
}

func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// ExportFormat is a transcript export format
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "md"
	ExportFormatPDF      ExportFormat = "pdf"
	ExportFormatDOCX     ExportFormat = "docx"
)

func (f ExportFormat) Validate() error {
	switch f {
	case ExportFormatMarkdown, ExportFormatPDF, ExportFormatDOCX:
		return nil
	default:
		return ErrUnsupportedFormat
	}
}

// ExportedFile is a rendered transcript ready to be sent to the client.
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
