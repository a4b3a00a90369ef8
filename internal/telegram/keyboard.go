package telegram

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chatguard/internal/auditlog"
)

func hasCallbackPrefix(data, kind string) bool {
	return strings.HasPrefix(data, kind+":")
}

// windowKeyboard is the control-panel row of log time-window buttons.
func windowKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("15m", encodeWindowCallback(15*time.Minute)),
			tgbotapi.NewInlineKeyboardButtonData("1h", encodeWindowCallback(time.Hour)),
			tgbotapi.NewInlineKeyboardButtonData("6h", encodeWindowCallback(6*time.Hour)),
			tgbotapi.NewInlineKeyboardButtonData("1d", encodeWindowCallback(24*time.Hour)),
		),
	)
}

// entryKeyboard builds the ban/unban buttons for a displayed log entry. The
// buttons carry the entry's identifiers as structured payload. Entries
// without chat and user ids (lifecycle events) get no buttons; the ban
// button additionally needs a message id to delete.
func entryKeyboard(e auditlog.Entry) (tgbotapi.InlineKeyboardMarkup, bool) {
	if e.ChatID == nil || e.UserID == nil {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	var buttons []tgbotapi.InlineKeyboardButton
	if e.MessageID != nil {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			"Ban", encodeBanCallback(*e.ChatID, *e.UserID, *e.MessageID)))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
		"Unban", encodeUnbanCallback(*e.ChatID, *e.UserID)))

	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...)), true
}
