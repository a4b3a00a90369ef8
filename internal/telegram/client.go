// Package telegram is the platform glue: the Bot API client wrapper with the
// enforcement actions, and the long-poll update loop that feeds the decision
// engine and the admin command surface.
package telegram

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chatguard/internal/metrics"
	"chatguard/internal/moderation"
)

// Client wraps the Bot API with the handful of operations the pipeline
// consumes. It implements moderation.AdminSource, moderation.BioFetcher and
// moderation.Enforcer.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewClient authorizes against the Bot API. requestTimeout is a defensive
// per-call deadline on the underlying HTTP client; the platform protocol
// itself has none.
func NewClient(token string, requestTimeout time.Duration, logger *zap.Logger) (*Client, error) {
	httpClient := &http.Client{}
	if requestTimeout > 0 {
		httpClient.Timeout = requestTimeout
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Client{api: api, logger: logger}, nil
}

// ChatAdministrators returns the current admins of a chat, for the startup
// roster snapshot.
func (c *Client) ChatAdministrators(chatID int64) ([]moderation.Admin, error) {
	members, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("getChatAdministrators failed: %w", err)
	}

	admins := make([]moderation.Admin, 0, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		admins = append(admins, moderation.Admin{
			UserID: m.User.ID,
			Name:   m.User.String(),
		})
	}
	return admins, nil
}

// UserBio fetches the sender's profile biography. This blocks on the
// platform and sits on the decision path.
func (c *Client) UserBio(userID int64) (string, error) {
	chat, err := c.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: userID},
	})
	if err != nil {
		return "", fmt.Errorf("getChat failed: %w", err)
	}
	return chat.Bio, nil
}

// Ban deletes the message and bans the sender, sequentially and
// best-effort. A rejection from either call collapses the outcome to fail;
// nothing is retried or rolled back.
func (c *Client) Ban(chatID, userID int64, messageID int) moderation.Outcome {
	outcome := moderation.OutcomeSuccess

	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		c.logger.Warn("Delete message rejected",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
		outcome = moderation.OutcomeFail
	}

	ban := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	if _, err := c.api.Request(ban); err != nil {
		c.logger.Warn("Ban member rejected",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		outcome = moderation.OutcomeFail
	}

	metrics.EnforcementsTotal.WithLabelValues("ban", string(outcome)).Inc()
	return outcome
}

// Unban lifts a ban with only-if-banned semantics, so unbanning a user who
// is not banned still succeeds.
func (c *Client) Unban(chatID, userID int64) moderation.Outcome {
	unban := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		OnlyIfBanned:     true,
	}
	if _, err := c.api.Request(unban); err != nil {
		c.logger.Warn("Unban member rejected",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		metrics.EnforcementsTotal.WithLabelValues("unban", string(moderation.OutcomeFail)).Inc()
		return moderation.OutcomeFail
	}
	metrics.EnforcementsTotal.WithLabelValues("unban", string(moderation.OutcomeSuccess)).Inc()
	return moderation.OutcomeSuccess
}

// SendText sends a plain text message, logging rather than propagating a
// failure: a lost reply never aborts event handling.
func (c *Client) SendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		c.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
