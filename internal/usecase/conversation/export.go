package conversation

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/formatter"
)

const exportFilePrefix = "rafiq-conversation"

// Export renders the conversation transcript, placeholders left out.
func (uc *ConversationUsecase) Export(ctx context.Context, id string, format entity.ExportFormat) (*entity.ExportedFile, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, format)
	}

	conv, err := uc.Conversation(ctx, id)
	if err != nil {
		return nil, err
	}

	transcript := toTranscript(conv)
	if len(transcript.Entries) == 0 {
		return nil, entity.ErrNothingToExport
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(transcript)
	if err != nil {
		return nil, fmt.Errorf("format transcript: %w", err)
	}

	ctxzap.Info(ctx, "conversation exported",
		zap.String("format", string(format)),
		zap.Int("messages", len(transcript.Entries)),
		zap.Int("size", len(content)),
	)

	return &entity.ExportedFile{
		Filename:    exportFilePrefix + "-" + conv.UpdatedAt.UTC().Format("20060102-150405") + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

func toTranscript(conv *entity.Conversation) *formatter.Transcript {
	msgs := conv.Messages.Transcript()
	entries := make([]formatter.Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, formatter.Entry{
			Speaker: m.Role.Label(),
			Text:    m.Text,
			Time:    m.CreatedAt,
		})
	}

	return &formatter.Transcript{
		Entries: entries,
		Sources: conv.Sources,
	}
}
