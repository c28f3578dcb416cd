package common

import (
	"strings"
	"testing"
	"time"

	"cardswap/application/dto"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"under a minute", 30 * time.Second, "< 1m"},
		{"minutes", 45 * time.Minute, "45m"},
		{"hours and minutes", 3*time.Hour + 45*time.Minute, "3h 45m"},
		{"whole hours", 2 * time.Hour, "2h"},
		{"days", 2*24*time.Hour + 14*time.Hour + 30*time.Minute, "2d 14h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}

func TestFormatCardNumbers(t *testing.T) {
	assert.Equal(t, "None", FormatCardNumbers(nil, 100))
	assert.Equal(t, "#1, #5, #P-12", FormatCardNumbers([]string{"1", "5", "P-12"}, 100))

	many := make([]string, 500)
	for i := range many {
		many[i] = "100"
	}
	out := FormatCardNumbers(many, MaxEmbedFieldValue)
	assert.LessOrEqual(t, len(out), MaxEmbedFieldValue)
	assert.True(t, strings.Contains(out, "more"))
}

func TestFormatMissingSummary(t *testing.T) {
	assert.Equal(t, "Your missing list is empty.", FormatMissingSummary(nil))
	assert.Equal(t,
		"**Genesis**: 3 missing\n**Mythical Island**: 1 missing",
		FormatMissingSummary(map[string]int{"Mythical Island": 1, "Genesis": 3}),
	)
}

func TestFormatCard(t *testing.T) {
	assert.Equal(t, "**Genesis #5**", FormatCard(dto.CardDTO{Expansion: "Genesis", CardNumber: "5"}))
}
