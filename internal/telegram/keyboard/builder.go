package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/rafiq-frontend/internal/render"
)

const actionPrefix = "act"

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AnswerKeyboard goes under every answer; the sources button only when there are sources.
func (b *Builder) AnswerKeyboard(hasSources bool) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 3)
	if hasSources {
		row = append(row, button(render.TgButtonSources, ActionSources))
	}
	row = append(row,
		button(render.TgButtonExport, ActionExport),
		button(render.TgButtonReset, ActionReset),
	)
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func button(text, action string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, EncodeCallback(actionPrefix, action))
}

// IsAction reports whether parsed callback data came from this builder
func IsAction(data *CallbackData) bool {
	return data != nil && data.Action == actionPrefix
}
