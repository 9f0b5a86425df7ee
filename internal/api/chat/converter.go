package chat

import (
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
)

func toConversationDTO(conv *entity.Conversation) *entity.ConversationDTO {
	msgs := make([]entity.MessageDTO, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, entity.MessageDTO{
			ID:        m.ID.String(),
			Role:      string(m.Role),
			Label:     m.Role.Label(),
			Text:      m.Text,
			Pending:   m.Placeholder,
			CreatedAt: m.CreatedAt,
		})
	}

	return &entity.ConversationDTO{
		ID:           conv.ID,
		Messages:     msgs,
		Sources:      conv.Sources,
		IngestStatus: conv.IngestStatus,
		Pending:      conv.Pending(),
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
	}
}

func toIngestDTO(out *conversation.IngestOutcome) *entity.IngestAPIResponse {
	dto := &entity.IngestAPIResponse{Status: out.Status}
	if out.Response != nil {
		dto.Indexed = out.Response.Indexed
		dto.Source = out.Response.Source
	}
	if out.Err != nil {
		dto.Error = out.Err.Error()
	}
	return dto
}

func toChatDTO(out *conversation.Outcome) *entity.ChatAPIResponse {
	dto := &entity.ChatAPIResponse{
		Answer:  out.Answer,
		Sources: out.Sources,
		Raw:     out.Raw,
		Stale:   out.Stale,
	}
	if out.Err != nil {
		dto.Error = out.Err.Error()
	}
	return dto
}
