package services

import (
	"fmt"
	"strings"
	"time"
)

const (
	timerFormat     = "⏳ %s\n%s left"
	endedFormat     = "🏁 %s has ended!"
	cancelledFormat = "🚫 %s was cancelled."
)

// EventText выбирает текст сообщения. Порядок проверок важен:
// прошедший дедлайн сильнее отмены.
func EventText(remaining time.Duration, name string, live bool) string {
	switch {
	case remaining < 0:
		return EndedText(name)
	case !live:
		return CancelledText(name)
	default:
		return CountdownText(remaining, name)
	}
}

func CountdownText(remaining time.Duration, name string) string {
	return fmt.Sprintf(timerFormat, name, FormatRemaining(remaining))
}

func EndedText(name string) string {
	return fmt.Sprintf(endedFormat, name)
}

func CancelledText(name string) string {
	return fmt.Sprintf(cancelledFormat, name)
}

// FormatRemaining раскладывает длительность на дни, часы, минуты и секунды.
// Дни выводятся только если они есть; ненулевые часы тянут за собой минуты
// и секунды, ненулевые минуты тянут секунды.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	hours := rest / 3600
	minutes := rest % 3600 / 60
	seconds := rest % 60

	var sb strings.Builder
	if days > 0 {
		fmt.Fprintf(&sb, "%dd ", days)
	}
	switch {
	case hours > 0:
		fmt.Fprintf(&sb, "%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		fmt.Fprintf(&sb, "%dm %ds", minutes, seconds)
	default:
		fmt.Fprintf(&sb, "%ds", seconds)
	}
	return sb.String()
}
