package entity

import (
	"encoding/json"
	"time"
)

type IngestAPIRequest struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name,omitempty"`
	URL        string `json:"url,omitempty"`
}

// IngestAPIResponse carries the status line shown to users together with the backend fields.
type IngestAPIResponse struct {
	Status  string  `json:"status"`
	Indexed *int    `json:"indexed,omitempty"`
	Source  *string `json:"source,omitempty"`
	Error   string  `json:"error,omitempty"`
}

type ChatAPIRequest struct {
	Question string `json:"question"`
}

// ChatAPIResponse mirrors what the page shows: the assistant message and the sources panel.
// Raw is the backend payload as received.
type ChatAPIResponse struct {
	Answer  string          `json:"answer"`
	Sources string          `json:"sources"`
	Raw     json.RawMessage `json:"raw,omitempty"`
	Error   string          `json:"error,omitempty"`
	Stale   bool            `json:"stale,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type MessageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Label     string    `json:"label"`
	Text      string    `json:"text"`
	Pending   bool      `json:"pending,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationDTO struct {
	ID           string       `json:"conversation_id"`
	Messages     []MessageDTO `json:"messages"`
	Sources      string       `json:"sources"`
	IngestStatus string       `json:"ingest_status"`
	Pending      bool         `json:"pending"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
