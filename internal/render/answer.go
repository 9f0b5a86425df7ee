package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/futig/rafiq-frontend/internal/entity"
)

// IngestResult renders the status line after a successful ingestion.
func IngestResult(resp *entity.IngestResponse) string {
	indexed, source := missingField, missingField
	if resp != nil {
		if resp.Indexed != nil {
			indexed = strconv.Itoa(*resp.Indexed)
		}
		if resp.Source != nil {
			source = *resp.Source
		}
	}
	return fmt.Sprintf(MsgIngestDone, indexed, source)
}

// IngestError renders the status line after a failed ingestion.
func IngestError(err error) string {
	return MsgIngestFailed + err.Error()
}

// ChatError renders the assistant message that replaces a failed answer.
func ChatError(err error) string {
	return MsgChatFail + err.Error()
}

// AnswerText picks the assistant message for a chat reply.
// A truthy answer is shown as is, a missing one echoes the whole payload,
// and an empty, null, zero or false answer falls back to MsgNoAnswer.
func AnswerText(resp *entity.ChatResponse) string {
	if resp == nil {
		return MsgNoAnswer
	}

	if !resp.HasAnswer {
		return compactJSON(resp.Raw)
	}

	var value any
	if err := json.Unmarshal(resp.Answer, &value); err != nil || !truthy(value) {
		return MsgNoAnswer
	}

	if s, ok := value.(string); ok {
		return s
	}
	return compactJSON(resp.Answer)
}

// SourcesText renders the sources of a chat reply as JSON indented by two spaces.
// It returns an empty string when the reply has no sources key.
func SourcesText(resp *entity.ChatResponse) string {
	if resp == nil || !resp.HasSources {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Sources, "", "  "); err != nil {
		return string(resp.Sources)
	}
	return buf.String()
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
