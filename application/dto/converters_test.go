package dto

import (
	"testing"
	"time"

	"cardswap/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeKinds(t *testing.T) {
	t.Parallel()

	requested := entities.CardRef{Expansion: "Genesis", CardNumber: "5"}
	offered := entities.CardRef{Expansion: "Genesis", CardNumber: "9"}
	now := time.Now()

	pending := entities.NewTrade(100, requested, now, time.Hour)
	assert.Equal(t, NoticeProposed, PartyNoticeKind(pending))
	assert.Equal(t, NoticeOfferOpen, OfferNoticeKind(pending))

	withdrawn := entities.NewTrade(100, requested, now, time.Hour)
	require.NoError(t, withdrawn.Cancel(entities.CancelReasonUser, now))
	assert.Equal(t, NoticeCancelled, PartyNoticeKind(withdrawn))
	assert.Equal(t, NoticeOfferClosed, OfferNoticeKind(withdrawn))

	active := entities.NewTrade(100, requested, now, time.Hour)
	require.NoError(t, active.Match(200, offered, now))
	assert.Equal(t, NoticeMatched, PartyNoticeKind(active))
	assert.Equal(t, NoticeOfferTaken, OfferNoticeKind(active))

	active.ConfirmedBy = []int64{200}
	assert.Equal(t, NoticeConfirmed, PartyNoticeKind(active))

	require.NoError(t, active.Cancel(entities.CancelReasonExpired, now))
	assert.Equal(t, NoticeOfferTaken, OfferNoticeKind(active))
}

func TestTradeToNoticeDTO(t *testing.T) {
	t.Parallel()

	trade := entities.NewTrade(100, entities.CardRef{Expansion: "Genesis", CardNumber: "5"}, time.Now(), time.Hour)
	trade.ID = 7
	require.NoError(t, trade.Match(200, entities.CardRef{Expansion: "Genesis", CardNumber: "9"}, time.Now()))
	trade.ConfirmedBy = []int64{100}

	notice := TradeToNoticeDTO(trade, NoticeConfirmed, 200)

	assert.Equal(t, int64(7), notice.TradeID)
	assert.Equal(t, "active", notice.Status)
	assert.Equal(t, "Genesis #5", notice.Requested.String())
	require.NotNil(t, notice.Offered)
	assert.Equal(t, "Genesis #9", notice.Offered.String())
	assert.True(t, notice.HasConfirmed(100))
	assert.False(t, notice.HasConfirmed(200))
	assert.Equal(t, int64(200), notice.Recipient)

	trade.ConfirmedBy = append(trade.ConfirmedBy, 200)
	assert.False(t, notice.HasConfirmed(200), "notice keeps its own copy")
}
