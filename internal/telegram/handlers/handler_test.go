package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/render"
	"github.com/futig/rafiq-frontend/internal/telegram/keyboard"
	"github.com/futig/rafiq-frontend/internal/telegram/state"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
)

type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.MessageConfig
	docs     []tgbotapi.DocumentConfig
	deleted  []int
	requests int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		b.sent = append(b.sent, m)
	case tgbotapi.DocumentConfig:
		b.docs = append(b.docs, m)
	}
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests++
	if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		b.deleted = append(b.deleted, d.MessageID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	return "", errors.New("no network in tests")
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.sent))
	for _, m := range b.sent {
		out = append(out, m.Text)
	}
	return out
}

type stubUsecase struct {
	conv      *entity.Conversation
	outcome   *conversation.Outcome
	askErr    error
	ingestOut *conversation.IngestOutcome
	ingested  []entity.IngestInput
	questions []string
	resets    int
	exportErr error
}

func (s *stubUsecase) Conversation(_ context.Context, id string) (*entity.Conversation, error) {
	if s.conv == nil {
		return entity.NewConversation(id), nil
	}
	return s.conv, nil
}

func (s *stubUsecase) IngestNow(_ context.Context, _ string, in entity.IngestInput) (*conversation.IngestOutcome, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, entity.ErrEmptyText
	}
	s.ingested = append(s.ingested, in)
	if s.ingestOut != nil {
		return s.ingestOut, nil
	}
	source := in.SourceName
	if source == "" {
		source = entity.DefaultSourceName
	}
	return &conversation.IngestOutcome{Status: "Indexé: 1 documents (source: " + source + ")"}, nil
}

func (s *stubUsecase) AskNow(_ context.Context, _ string, question string) (*conversation.Outcome, error) {
	s.questions = append(s.questions, question)
	if s.askErr != nil {
		return nil, s.askErr
	}
	return s.outcome, nil
}

func (s *stubUsecase) Reset(context.Context, string) error {
	s.resets++
	return nil
}

func (s *stubUsecase) Export(_ context.Context, _ string, format entity.ExportFormat) (*entity.ExportedFile, error) {
	if s.exportErr != nil {
		return nil, s.exportErr
	}
	return &entity.ExportedFile{Filename: "rafiq-conversation.md", ContentType: "text/markdown", Content: []byte("# x")}, nil
}

func newTestHandler(uc *stubUsecase) (*Handler, *fakeBot) {
	bot := &fakeBot{}
	v := validator.New(config.FileUploadConfig{MaxFileSize: 100, MaxUploadSize: 200})
	h := NewHandler(bot, uc, v, state.NewStore(time.Minute), keyboard.NewBuilder(), zap.NewNop())
	return h, bot
}

func TestQuestion_PlaceholderThenAnswer(t *testing.T) {
	uc := &stubUsecase{outcome: &conversation.Outcome{Answer: "Bonjour", Sources: "[\n  \"a.txt\"\n]"}}
	h, bot := newTestHandler(uc)

	if err := h.HandleMessage(context.Background(), &Message{ChatID: 7, Text: "Salut"}); err != nil {
		t.Fatal(err)
	}

	texts := bot.texts()
	if len(texts) != 2 || texts[0] != render.MsgThinking || texts[1] != "Bonjour" {
		t.Fatalf("sent = %q", texts)
	}
	if len(bot.deleted) != 1 || bot.deleted[0] != 1 {
		t.Errorf("placeholder not deleted: %v", bot.deleted)
	}

	markup, ok := bot.sent[1].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || *markup.InlineKeyboard[0][0].CallbackData != "act:sources" {
		t.Errorf("answer keyboard = %+v", bot.sent[1].ReplyMarkup)
	}
}

func TestQuestion_BackendFailure(t *testing.T) {
	uc := &stubUsecase{outcome: &conversation.Outcome{
		Answer: "Erreur: HTTP 503: down",
		Err:    errors.New("connection refused"),
	}}
	h, bot := newTestHandler(uc)

	if err := h.HandleMessage(context.Background(), &Message{ChatID: 7, Text: "q"}); err != nil {
		t.Fatal(err)
	}
	texts := bot.texts()
	if len(texts) != 2 || texts[1] != render.ErrServiceUnavailable {
		t.Errorf("sent = %q", texts)
	}
}

func TestQuestion_StaleIsSilent(t *testing.T) {
	h, bot := newTestHandler(&stubUsecase{outcome: &conversation.Outcome{Stale: true}})

	if err := h.HandleMessage(context.Background(), &Message{ChatID: 7, Text: "q"}); err != nil {
		t.Fatal(err)
	}
	if texts := bot.texts(); len(texts) != 1 || len(bot.deleted) != 1 {
		t.Errorf("sent = %q deleted = %v", texts, bot.deleted)
	}
}

func TestIngestCommand(t *testing.T) {
	t.Run("inline text", func(t *testing.T) {
		uc := &stubUsecase{}
		h, bot := newTestHandler(uc)

		msg := &Message{ChatID: 1, Command: "ingest", CommandArgs: "le texte"}
		if err := h.HandleMessage(context.Background(), msg); err != nil {
			t.Fatal(err)
		}
		if len(uc.ingested) != 1 || uc.ingested[0].Text != "le texte" {
			t.Errorf("ingested = %+v", uc.ingested)
		}
		if texts := bot.texts(); texts[len(texts)-1] != "Indexé: 1 documents (source: user-paste)" {
			t.Errorf("sent = %q", texts)
		}
	})

	t.Run("next message", func(t *testing.T) {
		uc := &stubUsecase{}
		h, bot := newTestHandler(uc)
		ctx := context.Background()

		if err := h.HandleMessage(ctx, &Message{ChatID: 1, Command: "ingest"}); err != nil {
			t.Fatal(err)
		}
		if err := h.HandleMessage(ctx, &Message{ChatID: 1, Text: "à indexer"}); err != nil {
			t.Fatal(err)
		}

		if len(uc.questions) != 0 || len(uc.ingested) != 1 || uc.ingested[0].Text != "à indexer" {
			t.Errorf("questions = %q ingested = %+v", uc.questions, uc.ingested)
		}
		if texts := bot.texts(); texts[0] != render.TgAskIngestText {
			t.Errorf("sent = %q", texts)
		}
	})
}

func TestDocument_Rejected(t *testing.T) {
	tests := []struct {
		name string
		doc  *tgbotapi.Document
		want string
	}{
		{"extension", &tgbotapi.Document{FileName: "scan.pdf", FileSize: 10}, render.ErrInvalidFile},
		{"size", &tgbotapi.Document{FileName: "big.txt", FileSize: 1000}, render.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{}
			h, bot := newTestHandler(uc)

			if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Document: tt.doc}); err != nil {
				t.Fatal(err)
			}
			if texts := bot.texts(); len(texts) != 1 || texts[0] != tt.want {
				t.Errorf("sent = %q, want %q", texts, tt.want)
			}
			if len(uc.ingested) != 0 {
				t.Error("rejected document was ingested")
			}
		})
	}
}

func TestCommands(t *testing.T) {
	t.Run("start resets", func(t *testing.T) {
		uc := &stubUsecase{}
		h, bot := newTestHandler(uc)
		h.state.SetPending(1, state.ActionIngest)

		if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Command: "start"}); err != nil {
			t.Fatal(err)
		}
		if uc.resets != 1 || bot.texts()[0] != render.TgWelcome {
			t.Errorf("resets = %d sent = %q", uc.resets, bot.texts())
		}
		if _, ok := h.state.TakePending(1); ok {
			t.Error("pending ingestion survived /start")
		}
	})

	t.Run("sources", func(t *testing.T) {
		conv := entity.NewConversation("tg-1")
		conv.Sources = "[\n  \"a.txt\"\n]"
		h, bot := newTestHandler(&stubUsecase{conv: conv})

		if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Command: "sources"}); err != nil {
			t.Fatal(err)
		}
		if texts := bot.texts(); texts[0] != conv.Sources {
			t.Errorf("sent = %q", texts)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		conv := entity.NewConversation("tg-1")
		conv.Sources = "[]"
		h, bot := newTestHandler(&stubUsecase{conv: conv})

		if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Command: "sources"}); err != nil {
			t.Fatal(err)
		}
		if texts := bot.texts(); texts[0] != render.TgNoSources {
			t.Errorf("sent = %q", texts)
		}
	})

	t.Run("export", func(t *testing.T) {
		h, bot := newTestHandler(&stubUsecase{})

		if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Command: "export"}); err != nil {
			t.Fatal(err)
		}
		if len(bot.docs) != 1 {
			t.Fatalf("documents = %d, want 1", len(bot.docs))
		}
	})

	t.Run("export empty", func(t *testing.T) {
		h, bot := newTestHandler(&stubUsecase{exportErr: entity.ErrNothingToExport})

		if err := h.HandleMessage(context.Background(), &Message{ChatID: 1, Command: "export"}); err != nil {
			t.Fatal(err)
		}
		if texts := bot.texts(); len(texts) != 1 || texts[0] != render.TgNothingExport {
			t.Errorf("sent = %q", texts)
		}
	})
}

func TestCallback_Reset(t *testing.T) {
	uc := &stubUsecase{}
	h, bot := newTestHandler(uc)

	msg := &Message{ChatID: 1, CallbackID: "cb", CallbackData: keyboard.EncodeCallback("act", keyboard.ActionReset)}
	if err := h.HandleCallback(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if uc.resets != 1 || bot.texts()[0] != render.TgConversationRe {
		t.Errorf("resets = %d sent = %q", uc.resets, bot.texts())
	}
}

func TestSplitText(t *testing.T) {
	long := strings.Repeat("ligne\n", 1000)
	parts := splitText(long, maxMessageLength)

	if len(parts) < 2 {
		t.Fatalf("parts = %d", len(parts))
	}
	if strings.Join(parts, "") != long {
		t.Error("split lost text")
	}
	for _, p := range parts {
		if len([]rune(p)) > maxMessageLength {
			t.Errorf("part of %d runes", len([]rune(p)))
		}
	}
	if got := splitText("", maxMessageLength); len(got) != 1 {
		t.Errorf("empty text parts = %d", len(got))
	}
}

func TestHasSources(t *testing.T) {
	for in, want := range map[string]bool{
		"":              false,
		"[]":            false,
		"[\n]":          false,
		"null":          false,
		"[\n  \"a\"\n]": true,
	} {
		if got := hasSources(in); got != want {
			t.Errorf("hasSources(%q) = %v, want %v", in, got, want)
		}
	}
}
