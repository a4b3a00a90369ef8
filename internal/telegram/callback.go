package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Inline-button callback payloads carry the acted-on identifiers as
// structured data; they are never reconstructed from displayed text.
const (
	cbWindow = "logwin"
	cbBan    = "ban"
	cbUnban  = "unban"
)

func encodeWindowCallback(window time.Duration) string {
	return fmt.Sprintf("%s:%d", cbWindow, int64(window/time.Minute))
}

func decodeWindowCallback(data string) (time.Duration, error) {
	rest, ok := strings.CutPrefix(data, cbWindow+":")
	if !ok {
		return 0, fmt.Errorf("not a window callback: %q", data)
	}
	minutes, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("bad window callback %q", data)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func encodeBanCallback(chatID, userID int64, messageID int) string {
	return fmt.Sprintf("%s:%d:%d:%d", cbBan, chatID, userID, messageID)
}

func decodeBanCallback(data string) (chatID, userID int64, messageID int, err error) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != cbBan {
		return 0, 0, 0, fmt.Errorf("not a ban callback: %q", data)
	}
	if chatID, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("bad ban callback %q", data)
	}
	if userID, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("bad ban callback %q", data)
	}
	if messageID, err = strconv.Atoi(parts[3]); err != nil {
		return 0, 0, 0, fmt.Errorf("bad ban callback %q", data)
	}
	return chatID, userID, messageID, nil
}

func encodeUnbanCallback(chatID, userID int64) string {
	return fmt.Sprintf("%s:%d:%d", cbUnban, chatID, userID)
}

func decodeUnbanCallback(data string) (chatID, userID int64, err error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != cbUnban {
		return 0, 0, fmt.Errorf("not an unban callback: %q", data)
	}
	if chatID, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("bad unban callback %q", data)
	}
	if userID, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("bad unban callback %q", data)
	}
	return chatID, userID, nil
}
