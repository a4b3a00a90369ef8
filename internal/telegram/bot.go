package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatguard/internal/auditlog"
	"chatguard/internal/command"
	"chatguard/internal/metrics"
	"chatguard/internal/moderation"
)

const (
	replyNotAllowed     = "You are not allowed to use this bot."
	replyInvalidCommand = "Invalid command."
	replyLogEmpty       = "No log entries in the requested window."
	replyLogFailed      = "Failed to read the log."

	// Upper bound on per-request log entries pushed to an admin; the
	// remainder is summarized to stay clear of flood limits.
	maxEntriesPerReply = 50
)

// Bot runs the long-poll update loop: group and supergroup messages go
// through the decision engine, private-chat text goes to the admin command
// surface, and inline-button presses drive the log viewer and the ban/unban
// reversal workflow.
type Bot struct {
	client        *Client
	engine        *moderation.Engine
	roster        *moderation.Roster
	audit         *auditlog.Writer
	query         *auditlog.Query
	logger        *zap.Logger
	updateTimeout int
}

// NewBot wires the update loop to its collaborators.
func NewBot(
	client *Client,
	engine *moderation.Engine,
	roster *moderation.Roster,
	audit *auditlog.Writer,
	query *auditlog.Query,
	updateTimeout int,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		client:        client,
		engine:        engine,
		roster:        roster,
		audit:         audit,
		query:         query,
		logger:        logger,
		updateTimeout: updateTimeout,
	}
}

// Start begins listening for updates until the context is canceled. Events
// are handled one at a time in arrival order.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.client.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.client.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

// handleUpdate dispatches one update. A fault while handling one event must
// not take down the loop, so panics are contained here.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	logger := b.logger.With(zap.String("event_id", uuid.NewString()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling update", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(logger, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(logger, update.Message)
	case update.EditedMessage != nil:
		// Edits re-enter the pipeline from the top; there is no notion
		// of an already judged message.
		b.handleMessage(logger, update.EditedMessage)
	}
}

func (b *Bot) handleMessage(logger *zap.Logger, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}

	if msg.Chat.IsPrivate() {
		b.handleCommand(logger, msg)
		return
	}

	if len(msg.NewChatMembers) > 0 {
		b.recordMemberJoins(logger, msg)
		return
	}

	if msg.From == nil {
		return
	}

	verdict, err := b.engine.Process(toModerationMessage(msg))
	if err != nil {
		// Losing the audit trail undermines the moderation guarantee.
		logger.Fatal("Audit log is unwritable", zap.Error(err))
	}
	logger.Debug("Message processed", zap.String("verdict", string(verdict)))
}

func (b *Bot) recordMemberJoins(logger *zap.Logger, msg *tgbotapi.Message) {
	// Joins in chats outside the moderated set do not belong in the audit
	// trail.
	if !b.engine.IsValidChat(msg.Chat.ID) {
		return
	}

	for _, member := range msg.NewChatMembers {
		chatID := msg.Chat.ID
		chatTitle := msg.Chat.Title
		userID := member.ID
		userName := member.String()
		entry := auditlog.Entry{
			Time:      time.Now(),
			Stage:     "member-joined",
			ChatID:    &chatID,
			ChatTitle: &chatTitle,
			UserID:    &userID,
			UserName:  &userName,
		}
		if err := b.audit.Record(entry); err != nil {
			logger.Fatal("Audit log is unwritable", zap.Error(err))
		}
	}
}

func (b *Bot) handleCommand(logger *zap.Logger, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if !b.roster.IsAuthorized(msg.From.ID) {
		metrics.CommandsTotal.WithLabelValues(commandLabel(msg), "unauthorized").Inc()
		b.client.SendText(msg.Chat.ID, replyNotAllowed)
		return
	}

	if !msg.IsCommand() {
		b.client.SendText(msg.Chat.ID, replyInvalidCommand)
		return
	}

	switch msg.Command() {
	case "start":
		b.sendControlPanel(logger, msg.Chat.ID)
		metrics.CommandsTotal.WithLabelValues("start", "accepted").Inc()

	case "log":
		req, err := command.ParseLog(msg.Text)
		if err != nil {
			logger.Info("Rejected log command", zap.String("text", msg.Text), zap.Error(err))
			metrics.CommandsTotal.WithLabelValues("log", "rejected").Inc()
			b.client.SendText(msg.Chat.ID, replyInvalidCommand)
			return
		}
		metrics.CommandsTotal.WithLabelValues("log", "accepted").Inc()
		b.sendLogWindow(logger, msg.Chat.ID, req.Window)

	case "ban":
		req, err := command.ParseBan(msg.Text)
		if err != nil {
			logger.Info("Rejected ban command", zap.String("text", msg.Text), zap.Error(err))
			metrics.CommandsTotal.WithLabelValues("ban", "rejected").Inc()
			b.client.SendText(msg.Chat.ID, replyInvalidCommand)
			return
		}
		metrics.CommandsTotal.WithLabelValues("ban", "accepted").Inc()
		b.manualBan(logger, msg.Chat.ID, req.ChatID, req.UserID, req.MessageID)

	case "unban":
		req, err := command.ParseUnban(msg.Text)
		if err != nil {
			logger.Info("Rejected unban command", zap.String("text", msg.Text), zap.Error(err))
			metrics.CommandsTotal.WithLabelValues("unban", "rejected").Inc()
			b.client.SendText(msg.Chat.ID, replyInvalidCommand)
			return
		}
		metrics.CommandsTotal.WithLabelValues("unban", "accepted").Inc()
		b.manualUnban(logger, msg.Chat.ID, req.ChatID, req.UserID)

	default:
		metrics.CommandsTotal.WithLabelValues(msg.Command(), "rejected").Inc()
		b.client.SendText(msg.Chat.ID, replyInvalidCommand)
	}
}

func (b *Bot) handleCallback(logger *zap.Logger, q *tgbotapi.CallbackQuery) {
	callback := tgbotapi.NewCallback(q.ID, "")
	if _, err := b.client.api.Request(callback); err != nil {
		logger.Error("Failed to acknowledge callback", zap.Error(err))
	}

	if q.From == nil {
		return
	}
	if !b.roster.IsAuthorized(q.From.ID) {
		b.client.SendText(q.From.ID, replyNotAllowed)
		return
	}

	data := q.Data
	switch {
	case hasCallbackPrefix(data, cbWindow):
		window, err := decodeWindowCallback(data)
		if err != nil {
			logger.Error("Bad window callback", zap.String("data", data), zap.Error(err))
			return
		}
		b.sendLogWindow(logger, q.From.ID, window)

	case hasCallbackPrefix(data, cbBan):
		chatID, userID, messageID, err := decodeBanCallback(data)
		if err != nil {
			logger.Error("Bad ban callback", zap.String("data", data), zap.Error(err))
			return
		}
		b.manualBan(logger, q.From.ID, chatID, userID, messageID)

	case hasCallbackPrefix(data, cbUnban):
		chatID, userID, err := decodeUnbanCallback(data)
		if err != nil {
			logger.Error("Bad unban callback", zap.String("data", data), zap.Error(err))
			return
		}
		b.manualUnban(logger, q.From.ID, chatID, userID)

	default:
		logger.Error("Unknown callback payload", zap.String("data", data))
	}
}

// sendControlPanel posts the log-viewer panel with the time-window buttons
// and pins it in the admin's private chat.
func (b *Bot) sendControlPanel(logger *zap.Logger, chatID int64) {
	text := "Log viewer. Pick a time window, or use:\n" +
		"/log <N><m|h|d>\n" +
		"/ban <chat> <user> <message>\n" +
		"/unban <chat> <user>"

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = windowKeyboard()

	sent, err := b.client.api.Send(msg)
	if err != nil {
		logger.Error("Failed to send control panel", zap.Error(err))
		return
	}

	pin := tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           sent.MessageID,
		DisableNotification: true,
	}
	if _, err := b.client.api.Request(pin); err != nil {
		logger.Warn("Failed to pin control panel", zap.Error(err))
	}
}

func (b *Bot) sendLogWindow(logger *zap.Logger, to int64, window time.Duration) {
	end := time.Now()
	start := end.Add(-window)

	entries, err := b.query.Window(start, end)
	if err != nil {
		logger.Error("Log query failed", zap.Error(err))
		b.client.SendText(to, replyLogFailed)
		return
	}
	if len(entries) == 0 {
		b.client.SendText(to, replyLogEmpty)
		return
	}

	shown := entries
	if len(shown) > maxEntriesPerReply {
		shown = shown[len(shown)-maxEntriesPerReply:]
	}

	for _, e := range shown {
		msg := tgbotapi.NewMessage(to, b.query.Format(e))
		if markup, ok := entryKeyboard(e); ok {
			msg.ReplyMarkup = markup
		}
		if _, err := b.client.api.Send(msg); err != nil {
			logger.Error("Failed to send log entry", zap.Error(err))
		}
	}

	if hidden := len(entries) - len(shown); hidden > 0 {
		b.client.SendText(to, replySummary(hidden))
	}
}

func (b *Bot) manualBan(logger *zap.Logger, adminChat, chatID, userID int64, messageID int) {
	outcome := b.client.Ban(chatID, userID, messageID)

	entry := manualEntry("ban-"+string(outcome), chatID, userID, &messageID)
	if err := b.audit.Record(entry); err != nil {
		logger.Fatal("Audit log is unwritable", zap.Error(err))
	}

	if outcome == moderation.OutcomeSuccess {
		b.client.SendText(adminChat, "Ban applied.")
	} else {
		b.client.SendText(adminChat, "Ban failed: the platform rejected the request.")
	}
}

func (b *Bot) manualUnban(logger *zap.Logger, adminChat, chatID, userID int64) {
	outcome := b.client.Unban(chatID, userID)

	entry := manualEntry("unban-"+string(outcome), chatID, userID, nil)
	if err := b.audit.Record(entry); err != nil {
		logger.Fatal("Audit log is unwritable", zap.Error(err))
	}

	if outcome == moderation.OutcomeSuccess {
		b.client.SendText(adminChat, "Unban applied.")
	} else {
		b.client.SendText(adminChat, "Unban failed: the platform rejected the request.")
	}
}

func manualEntry(stage string, chatID, userID int64, messageID *int) auditlog.Entry {
	return auditlog.Entry{
		Time:      time.Now(),
		Stage:     stage,
		ChatID:    &chatID,
		UserID:    &userID,
		MessageID: messageID,
	}
}

func toModerationMessage(m *tgbotapi.Message) moderation.Message {
	var text *string
	if m.Text != "" {
		t := m.Text
		text = &t
	}

	msg := moderation.Message{
		ChatID:    m.Chat.ID,
		ChatTitle: m.Chat.Title,
		MessageID: m.MessageID,
		Text:      text,
		Date:      m.Time(),
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.UserName = m.From.String()
		msg.IsBot = m.From.IsBot
	}
	return msg
}

func commandLabel(msg *tgbotapi.Message) string {
	if msg.IsCommand() {
		return msg.Command()
	}
	return "none"
}

func replySummary(hidden int) string {
	return fmt.Sprintf("…and %d earlier entries not shown. Narrow the window to see them.", hidden)
}
