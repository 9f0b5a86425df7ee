package entity

import (
	"encoding/json"
)

// DefaultSourceName labels pasted text when no source name is given
const DefaultSourceName = "user-paste"

// IngestInput is what a user submits for ingestion, before validation.
type IngestInput struct {
	Text       string
	SourceName string
	URL        string
}

// IngestRequest is the body of the backend ingestion endpoint.
// The backend fetches URL itself when it is set.
type IngestRequest struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name"`
	URL        string `json:"url,omitempty"`
}

// IngestResponse fields are pointers because the backend may omit them.
type IngestResponse struct {
	Indexed *int    `json:"indexed"`
	Source  *string `json:"source"`
}

type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the decoded reply of the chat endpoint.
// Raw holds the whole payload, HasAnswer and HasSources record whether the keys were present at all.
type ChatResponse struct {
	Answer     json.RawMessage
	Sources    json.RawMessage
	Raw        json.RawMessage
	HasAnswer  bool
	HasSources bool
}

func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	*r = ChatResponse{Raw: raw}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Scalars and arrays carry no answer; they are echoed as they came.
		var probe any
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		return nil
	}

	r.Answer, r.HasAnswer = fields["answer"]
	r.Sources, r.HasSources = fields["sources"]
	return nil
}

func (r ChatResponse) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// HealthResponse is returned by the backend root route.
type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}
