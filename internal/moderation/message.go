package moderation

import "time"

// Message is the platform-independent view of an incoming chat message, as
// much of it as the decision engine needs. Text is nil for messages without
// a text body (stickers, media without caption).
type Message struct {
	ChatID    int64
	ChatTitle string
	UserID    int64
	UserName  string
	IsBot     bool
	MessageID int
	Text      *string
	Date      time.Time
}

// Verdict is the engine's classification of one message. Each message gets
// exactly one verdict, and each verdict drives exactly one downstream action.
type Verdict string

const (
	VerdictUnsupportedChat Verdict = "unsupported-chat"
	VerdictTrusted         Verdict = "trusted"
	VerdictValid           Verdict = "valid"
	VerdictInvalid         Verdict = "invalid"
)

// Outcome classifies the result of an enforcement action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
)
