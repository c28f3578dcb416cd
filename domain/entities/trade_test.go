package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveTrade(t *testing.T) *Trade {
	t.Helper()
	now := time.Now()
	trade := NewTrade(200, CardRef{Expansion: "Genesis", CardNumber: "5"}, now, time.Hour)
	trade.ID = 1
	require.NoError(t, trade.Match(100, CardRef{Expansion: "Genesis", CardNumber: "9"}, now))
	return trade
}

func TestTrade_Lifecycle(t *testing.T) {
	trade := newActiveTrade(t)

	assert.Equal(t, TradeStatusActive, trade.Status)
	assert.True(t, trade.IsOpen())
	assert.Equal(t, []int64{100, 200}, trade.Parties())

	assert.True(t, trade.RecordConfirmation(200))
	assert.False(t, trade.RecordConfirmation(200), "a repeated confirmation counts once")
	assert.False(t, trade.ReadyToSettle())
	require.Error(t, trade.Complete(time.Now()))

	assert.True(t, trade.RecordConfirmation(100))
	assert.True(t, trade.ReadyToSettle())
	require.NoError(t, trade.Complete(time.Now()))

	assert.Equal(t, TradeStatusCompleted, trade.Status)
	assert.False(t, trade.IsOpen())
	assert.NotNil(t, trade.CompletedAt)
	require.Error(t, trade.Cancel(CancelReasonUser, time.Now()), "terminal trades cannot be cancelled")
}

func TestTrade_MatchRequiresPending(t *testing.T) {
	trade := newActiveTrade(t)
	err := trade.Match(300, CardRef{Expansion: "Genesis", CardNumber: "1"}, time.Now())
	require.Error(t, err)
	assert.Equal(t, int64(100), *trade.AcceptorDiscordID)
}

func TestTrade_MatchRestartsDeadline(t *testing.T) {
	proposedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	trade := NewTrade(100, CardRef{Expansion: "Genesis", CardNumber: "5"}, proposedAt, 24*time.Hour)

	matchedAt := proposedAt.Add(23 * time.Hour)
	require.NoError(t, trade.Match(200, CardRef{Expansion: "Genesis", CardNumber: "9"}, matchedAt))

	assert.Equal(t, matchedAt.Add(24*time.Hour), trade.ExpiresAt)
	assert.False(t, trade.IsExpired(proposedAt.Add(25*time.Hour)))
	assert.True(t, trade.IsExpired(matchedAt.Add(24*time.Hour)))
}

func TestTrade_Cancel(t *testing.T) {
	now := time.Now()
	trade := NewTrade(1, CardRef{Expansion: "Genesis", CardNumber: "5"}, now, time.Hour)

	require.NoError(t, trade.Cancel(CancelReasonExpired, now))
	assert.Equal(t, TradeStatusCancelled, trade.Status)
	assert.Equal(t, CancelReasonExpired, *trade.CancelReason)
	assert.Equal(t, []int64{1}, trade.Parties())
}

func TestTrade_PartiesAndCounterparty(t *testing.T) {
	trade := newActiveTrade(t)

	assert.True(t, trade.IsParty(100))
	assert.True(t, trade.IsParty(200))
	assert.False(t, trade.IsParty(300))

	other, ok := trade.Counterparty(200)
	require.True(t, ok)
	assert.Equal(t, int64(100), other)

	_, ok = trade.Counterparty(300)
	assert.False(t, ok)

	pending := NewTrade(5, CardRef{Expansion: "Genesis", CardNumber: "5"}, time.Now(), time.Hour)
	assert.False(t, pending.IsParty(6))
	_, ok = pending.Counterparty(5)
	assert.False(t, ok)
}

func TestTrade_IsExpired(t *testing.T) {
	now := time.Now()
	trade := NewTrade(1, CardRef{Expansion: "Genesis", CardNumber: "5"}, now, time.Hour)

	assert.False(t, trade.IsExpired(now.Add(59*time.Minute)))
	assert.True(t, trade.IsExpired(now.Add(time.Hour)))

	require.NoError(t, trade.Cancel(CancelReasonUser, now))
	assert.False(t, trade.IsExpired(now.Add(2*time.Hour)), "closed trades never expire")
}

func TestTrade_MessageRefs(t *testing.T) {
	trade := newActiveTrade(t)

	trade.SetMessageRefFor(200, "c1:m1")
	trade.SetMessageRefFor(100, "c2:m2")
	trade.SetMessageRefFor(300, "c3:m3")

	require.NotNil(t, trade.MessageRefFor(200))
	assert.Equal(t, "c1:m1", *trade.MessageRefFor(200))
	assert.Equal(t, "c2:m2", *trade.MessageRefFor(100))
	assert.Nil(t, trade.MessageRefFor(300))
}

func TestNewCardRef(t *testing.T) {
	tests := []struct {
		name       string
		expansion  string
		cardNumber string
		wantNumber string
		wantErr    bool
	}{
		{name: "numeric", expansion: " Genesis ", cardNumber: " 12 "},
		{name: "leading zeros", expansion: "Genesis", cardNumber: "007", wantNumber: "7"},
		{name: "zero", expansion: "Genesis", cardNumber: "000", wantNumber: "0"},
		{name: "promo", expansion: "Genesis", cardNumber: "SV-P1"},
		{name: "promo keeps zeros", expansion: "Genesis", cardNumber: "007A", wantNumber: "007A"},
		{name: "missing expansion", expansion: " ", cardNumber: "1", wantErr: true},
		{name: "missing number", expansion: "Genesis", cardNumber: "", wantErr: true},
		{name: "separator injection", expansion: "Genesis", cardNumber: "1:2", wantErr: true},
		{name: "too long", expansion: "Genesis", cardNumber: "12345678901234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewCardRef(tt.expansion, tt.cardNumber)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Genesis", ref.Expansion)
			if tt.wantNumber != "" {
				assert.Equal(t, tt.wantNumber, ref.CardNumber)
			}
		})
	}
}

func TestExpansion_ContainsCard(t *testing.T) {
	exp := &Expansion{Name: "Genesis", TotalCards: 226}

	assert.True(t, exp.ContainsCard(CardRef{Expansion: "Genesis", CardNumber: "1"}))
	assert.True(t, exp.ContainsCard(CardRef{Expansion: "Genesis", CardNumber: "226"}))
	assert.False(t, exp.ContainsCard(CardRef{Expansion: "Genesis", CardNumber: "0"}))
	assert.False(t, exp.ContainsCard(CardRef{Expansion: "Genesis", CardNumber: "227"}))
	assert.True(t, exp.ContainsCard(CardRef{Expansion: "Genesis", CardNumber: "P7"}))
	assert.Error(t, exp.ValidateCard(CardRef{Expansion: "Genesis", CardNumber: "300"}))
}
