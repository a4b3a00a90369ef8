// Package command validates and decodes the admin control strings accepted
// in private chat: /log window requests and /ban & /unban reversal requests.
// A malformed command is a rejection, never a fault; the caller surfaces it
// as an "invalid command" reply.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrRejected marks any command that failed validation. Callers match it
// with errors.Is and answer with a fixed rejection message.
var ErrRejected = errors.New("invalid command")

const (
	logPrefix = "/log "

	// Length bounds on the command word plus its payload, the separating
	// space excluded: "/log" + 1–8 digits + one unit character.
	logMinLen = 6
	logMaxLen = 13

	banMaxLen   = 52
	unbanMaxLen = 40
)

// LogRequest is a decoded log-window command. Window is the distance back
// from now that the query should cover.
type LogRequest struct {
	Value  int64
	Unit   byte // 'm', 'h' or 'd'
	Window time.Duration
}

// BanRequest is a decoded manual ban command.
type BanRequest struct {
	ChatID    int64
	UserID    int64
	MessageID int
}

// UnbanRequest is a decoded unban command.
type UnbanRequest struct {
	ChatID int64
	UserID int64
}

// ParseLog decodes "/log <N><unit>" with N of 1–8 digits, positive, and unit
// one of m (minutes), h (hours), d (days).
func ParseLog(raw string) (LogRequest, error) {
	if !strings.HasPrefix(raw, logPrefix) {
		return LogRequest{}, fmt.Errorf("%w: missing /log prefix", ErrRejected)
	}
	arg := raw[len(logPrefix):]

	compressed := len(raw) - 1 // command word + payload, space excluded
	if compressed < logMinLen || compressed > logMaxLen {
		return LogRequest{}, fmt.Errorf("%w: length out of bounds", ErrRejected)
	}

	unit := arg[len(arg)-1]
	var step time.Duration
	switch unit {
	case 'm':
		step = time.Minute
	case 'h':
		step = time.Hour
	case 'd':
		step = 24 * time.Hour
	default:
		return LogRequest{}, fmt.Errorf("%w: unknown unit %q", ErrRejected, string(unit))
	}

	digits := arg[:len(arg)-1]
	if len(digits) < 1 || len(digits) > 8 {
		return LogRequest{}, fmt.Errorf("%w: value must be 1-8 digits", ErrRejected)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return LogRequest{}, fmt.Errorf("%w: value is not numeric", ErrRejected)
		}
	}

	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || value <= 0 {
		return LogRequest{}, fmt.Errorf("%w: value must be positive", ErrRejected)
	}

	return LogRequest{Value: value, Unit: unit, Window: time.Duration(value) * step}, nil
}

// ParseBan decodes "/ban <chat> <user> <message>": exactly four
// space-separated tokens, all three ids integers.
func ParseBan(raw string) (BanRequest, error) {
	if len(raw) > banMaxLen {
		return BanRequest{}, fmt.Errorf("%w: too long", ErrRejected)
	}

	tokens, err := splitTokens(raw, 4, "/ban")
	if err != nil {
		return BanRequest{}, err
	}

	chatID, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return BanRequest{}, fmt.Errorf("%w: bad chat id", ErrRejected)
	}
	userID, err := strconv.ParseInt(tokens[2], 10, 64)
	if err != nil {
		return BanRequest{}, fmt.Errorf("%w: bad user id", ErrRejected)
	}
	messageID, err := strconv.Atoi(tokens[3])
	if err != nil {
		return BanRequest{}, fmt.Errorf("%w: bad message id", ErrRejected)
	}

	return BanRequest{ChatID: chatID, UserID: userID, MessageID: messageID}, nil
}

// ParseUnban decodes "/unban <chat> <user>": exactly three space-separated
// tokens, both ids integers.
func ParseUnban(raw string) (UnbanRequest, error) {
	if len(raw) > unbanMaxLen {
		return UnbanRequest{}, fmt.Errorf("%w: too long", ErrRejected)
	}

	tokens, err := splitTokens(raw, 3, "/unban")
	if err != nil {
		return UnbanRequest{}, err
	}

	chatID, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return UnbanRequest{}, fmt.Errorf("%w: bad chat id", ErrRejected)
	}
	userID, err := strconv.ParseInt(tokens[2], 10, 64)
	if err != nil {
		return UnbanRequest{}, fmt.Errorf("%w: bad user id", ErrRejected)
	}

	return UnbanRequest{ChatID: chatID, UserID: userID}, nil
}

func splitTokens(raw string, want int, word string) ([]string, error) {
	tokens := strings.Split(raw, " ")
	if len(tokens) != want {
		return nil, fmt.Errorf("%w: expected %d tokens", ErrRejected, want)
	}
	if tokens[0] != word {
		return nil, fmt.Errorf("%w: wrong command word", ErrRejected)
	}
	for _, t := range tokens[1:] {
		if t == "" {
			return nil, fmt.Errorf("%w: empty token", ErrRejected)
		}
	}
	return tokens, nil
}
