package common

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cardswap/application/dto"
)

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration formats a duration in a human-readable format
// Examples: "2d 14h 30m", "3h 45m", "45m", "< 1m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}

// FormatCard renders a card in bold, e.g. **Genesis #5**
func FormatCard(card dto.CardDTO) string {
	return fmt.Sprintf("**%s**", card.String())
}

// FormatCardNumbers joins card numbers into a compact list that fits an embed field
func FormatCardNumbers(numbers []string, maxLen int) string {
	if len(numbers) == 0 {
		return "None"
	}

	var b strings.Builder
	for i, n := range numbers {
		entry := "#" + n
		if i > 0 {
			entry = ", " + entry
		}
		remaining := len(numbers) - i
		suffix := fmt.Sprintf(" …and %d more", remaining)
		if b.Len()+len(entry) > maxLen-len(suffix) {
			b.WriteString(suffix)
			break
		}
		b.WriteString(entry)
	}
	return b.String()
}

// FormatMissingSummary renders per-expansion counts sorted by expansion name
func FormatMissingSummary(counts map[string]int) string {
	if len(counts) == 0 {
		return "Your missing list is empty."
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("**%s**: %d missing", name, counts[name])
	}
	return strings.Join(lines, "\n")
}
