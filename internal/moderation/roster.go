package moderation

import (
	"fmt"
	"sort"
)

// TelegramServiceAccountID is the reserved id Telegram uses for its own
// service messages (channel posts forwarded into linked groups etc.).
const TelegramServiceAccountID int64 = 777000

// Admin is one chat administrator as reported by the platform.
type Admin struct {
	UserID int64
	Name   string
}

// AdminSource supplies the current administrator list of a chat. The
// Telegram client implements it.
type AdminSource interface {
	ChatAdministrators(chatID int64) ([]Admin, error)
}

// Roster maps each moderated chat to its administrators. It is snapshotted
// once at startup and never refreshed: an admin demoted mid-run stays trusted
// until restart. Read-only after construction, safe for concurrent use.
type Roster struct {
	admins map[int64]map[int64]string
}

// SnapshotRoster queries every valid chat for its administrators. A chat the
// bot cannot query is a startup failure: moderating a chat without knowing
// its admins would let the bot ban them.
func SnapshotRoster(src AdminSource, chatIDs []int64) (*Roster, error) {
	admins := make(map[int64]map[int64]string, len(chatIDs))
	for _, chatID := range chatIDs {
		list, err := src.ChatAdministrators(chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch administrators of chat %d: %w", chatID, err)
		}
		byID := make(map[int64]string, len(list))
		for _, a := range list {
			byID[a.UserID] = a.Name
		}
		admins[chatID] = byID
	}
	return &Roster{admins: admins}, nil
}

// IsAdmin reports whether the user administers the given chat.
func (r *Roster) IsAdmin(chatID, userID int64) bool {
	byID, ok := r.admins[chatID]
	if !ok {
		return false
	}
	_, ok = byID[userID]
	return ok
}

// IsAuthorized reports whether the user administers at least one moderated
// chat. The private-chat command surface is restricted to such users.
func (r *Roster) IsAuthorized(userID int64) bool {
	for _, byID := range r.admins {
		if _, ok := byID[userID]; ok {
			return true
		}
	}
	return false
}

// Describe renders the snapshot for the startup audit entry, chats in
// deterministic order.
func (r *Roster) Describe() string {
	chatIDs := make([]int64, 0, len(r.admins))
	for chatID := range r.admins {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })

	out := ""
	for _, chatID := range chatIDs {
		byID := r.admins[chatID]
		userIDs := make([]int64, 0, len(byID))
		for userID := range byID {
			userIDs = append(userIDs, userID)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

		out += fmt.Sprintf("chat %d:", chatID)
		for _, userID := range userIDs {
			out += fmt.Sprintf(" %d(%s)", userID, byID[userID])
		}
		out += ";"
	}
	return out
}

// IsTrusted reports whether the sender is exempt from moderation: service
// and bot accounts, chat admins, and Telegram's own service account.
func IsTrusted(roster *Roster, msg Message) bool {
	return msg.IsBot ||
		roster.IsAdmin(msg.ChatID, msg.UserID) ||
		msg.UserID == TelegramServiceAccountID
}
