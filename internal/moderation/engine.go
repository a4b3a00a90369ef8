package moderation

import (
	"time"

	"go.uber.org/zap"

	"chatguard/internal/auditlog"
	"chatguard/internal/metrics"
)

// BioFetcher retrieves a user's profile biography from the platform. The
// call blocks on network I/O and is part of the decision path.
type BioFetcher interface {
	UserBio(userID int64) (string, error)
}

// Enforcer deletes a message and bans its sender, reporting a collapsed
// success/fail outcome.
type Enforcer interface {
	Ban(chatID, userID int64, messageID int) Outcome
}

// Recorder is the append-only audit sink. A Record failure is fatal to the
// process: silent audit loss is not acceptable.
type Recorder interface {
	Record(e auditlog.Entry) error
}

// Engine runs the per-message verdict state machine. All dependencies are
// injected at construction; the engine holds no ambient state and its shared
// inputs (valid chats, filter, roster) are read-only after startup.
type Engine struct {
	validChats map[int64]bool
	roster     *Roster
	filter     *Filter
	bios       BioFetcher
	enforcer   Enforcer
	audit      Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine wires the decision pipeline.
func NewEngine(
	validChats []int64,
	roster *Roster,
	filter *Filter,
	bios BioFetcher,
	enforcer Enforcer,
	audit Recorder,
	logger *zap.Logger,
) *Engine {
	chats := make(map[int64]bool, len(validChats))
	for _, id := range validChats {
		chats[id] = true
	}
	return &Engine{
		validChats: chats,
		roster:     roster,
		filter:     filter,
		bios:       bios,
		enforcer:   enforcer,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// IsValidChat reports whether the chat is one of the moderated chats.
func (e *Engine) IsValidChat(chatID int64) bool {
	return e.validChats[chatID]
}

// Process classifies one message and performs the action its verdict
// demands. Edited messages go through the same path as new ones. Every
// verdict is audited exactly once; an invalid verdict is audited a second
// time with the enforcement outcome. The returned error is non-nil only when
// the audit sink failed, which the caller must treat as fatal.
func (e *Engine) Process(msg Message) (Verdict, error) {
	if !e.IsValidChat(msg.ChatID) {
		return e.finish(msg, VerdictUnsupportedChat, nil)
	}

	if IsTrusted(e.roster, msg) {
		return e.finish(msg, VerdictTrusted, nil)
	}

	textClean := e.filter.Clean(msg.Text)

	var bio *string
	bioClean := true
	fetched, err := e.bios.UserBio(msg.UserID)
	if err != nil {
		// The sender's bio cannot be judged; moderate on text alone
		// rather than punishing a user for a platform hiccup.
		e.logger.Warn("Failed to fetch user bio",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
	} else {
		bio = &fetched
		bioClean = e.filter.Clean(bio)
	}

	if textClean && bioClean {
		return e.finish(msg, VerdictValid, bio)
	}

	if _, err := e.finish(msg, VerdictInvalid, bio); err != nil {
		return VerdictInvalid, err
	}

	outcome := e.enforcer.Ban(msg.ChatID, msg.UserID, msg.MessageID)

	stage := "ban-" + string(outcome)
	if err := e.audit.Record(e.entry(msg, stage, bio)); err != nil {
		return VerdictInvalid, err
	}

	e.logger.Info("Enforcement finished",
		zap.Int64("chat_id", msg.ChatID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("message_id", msg.MessageID),
		zap.String("outcome", string(outcome)),
	)
	return VerdictInvalid, nil
}

func (e *Engine) finish(msg Message, v Verdict, bio *string) (Verdict, error) {
	metrics.VerdictsTotal.WithLabelValues(string(v)).Inc()

	e.logger.Info("Message judged",
		zap.Int64("chat_id", msg.ChatID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("message_id", msg.MessageID),
		zap.String("verdict", string(v)),
	)

	if err := e.audit.Record(e.entry(msg, string(v), bio)); err != nil {
		return v, err
	}
	return v, nil
}

func (e *Engine) entry(msg Message, stage string, bio *string) auditlog.Entry {
	chatID := msg.ChatID
	chatTitle := msg.ChatTitle
	userID := msg.UserID
	userName := msg.UserName
	messageID := msg.MessageID

	return auditlog.Entry{
		Time:      e.now(),
		Stage:     stage,
		ChatID:    &chatID,
		ChatTitle: &chatTitle,
		UserID:    &userID,
		UserName:  &userName,
		UserBio:   bio,
		MessageID: &messageID,
		Text:      msg.Text,
	}
}
