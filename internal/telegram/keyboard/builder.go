package keyboard

import (
	"fmt"
	"unicode/utf8"

	"github.com/futig/launchpad-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions
const (
	ActionCommand = "action"
	ActionAccept  = "accept"
	ActionDecline = "decline"
	ActionReport  = "dl"
	ActionConfirm = "confirm"
)

// Values of ActionCommand and ActionConfirm callbacks
const (
	CommandNewProject = "new"
	CommandProgress   = "stage"
	CommandReport     = "report"
	ConfirmCancel     = "cancel"
	ConfirmContinue   = "continue"
)

const maxButtonTitle = 40

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 New project", EncodeCallback(ActionCommand, CommandNewProject)),
		),
	)
}

// SuggestionsKeyboard creates accept/decline rows for every pending suggestion
func (b *Builder) SuggestionsKeyboard(suggestions []*entity.FeatureSuggestion) (tgbotapi.InlineKeyboardMarkup, bool) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Status != entity.SuggestionStatusPending {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+shorten(s.Title), EncodeCallback(ActionAccept, s.ID)),
			tgbotapi.NewInlineKeyboardButtonData("➖ Skip", EncodeCallback(ActionDecline, s.ID)),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}, len(rows) > 0
}

var formatLabels = map[entity.ReportFormat]string{
	entity.FormatMarkdown: "📄 .md",
	entity.FormatPDF:      "📕 .pdf",
	entity.FormatDOCX:     "📘 .docx",
}

// ReportKeyboard creates one download button per available format
func (b *Builder) ReportKeyboard(formats []entity.ReportFormat) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(formats))
	for _, f := range formats {
		label, ok := formatLabels[f]
		if !ok {
			label = string(f)
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionReport, string(f))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// ProgressKeyboard is attached to the stage overview
func (b *Builder) ProgressKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Business plan", EncodeCallback(ActionCommand, CommandReport)),
		),
	)
}

// CancelConfirmKeyboard asks to confirm closing the project
func (b *Builder) CancelConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, close", EncodeCallback(ActionConfirm, ConfirmCancel)),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, ConfirmContinue)),
		),
	)
}

func shorten(title string) string {
	if utf8.RuneCountInString(title) <= maxButtonTitle {
		return title
	}
	runes := []rune(title)
	return fmt.Sprintf("%s…", string(runes[:maxButtonTitle-1]))
}

// WithoutSuggestion drops the button row of a resolved suggestion
func (b *Builder) WithoutSuggestion(markup *tgbotapi.InlineKeyboardMarkup, suggestionID string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	if markup == nil {
		return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	accept := EncodeCallback(ActionAccept, suggestionID)
	for _, row := range markup.InlineKeyboard {
		if len(row) > 0 && row[0].CallbackData != nil && *row[0].CallbackData == accept {
			continue
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
