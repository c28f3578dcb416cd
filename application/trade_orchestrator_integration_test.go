package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cardswap/application"
	"cardswap/application/dto"
	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"
	"cardswap/infrastructure"
	"cardswap/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID int64 = 1001
	bobID   int64 = 1002
	carolID int64 = 1003
)

var (
	alice = application.Caller{DiscordID: aliceID, Username: "alice"}
	bob   = application.Caller{DiscordID: bobID, Username: "bob"}
	carol = application.Caller{DiscordID: carolID, Username: "carol"}

	genesis5 = entities.CardRef{Expansion: "Genesis", CardNumber: "5"}
	genesis7 = entities.CardRef{Expansion: "Genesis", CardNumber: "7"}
	genesis9 = entities.CardRef{Expansion: "Genesis", CardNumber: "9"}
)

type tradeFixture struct {
	db           *testutil.TestDatabase
	orchestrator *application.TradeOrchestrator
	notifier     *application.RecordingNotifier
}

// setupTradeFixture seeds Genesis with alice missing #5 and bob missing #7
func setupTradeFixture(t *testing.T, ttl time.Duration) *tradeFixture {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)
	testutil.SeedExpansion(t, testDB.DB, "Genesis", 120)
	testutil.SeedUser(t, testDB.DB, aliceID, "alice")
	testutil.SeedUser(t, testDB.DB, bobID, "bob")
	testutil.SeedUser(t, testDB.DB, carolID, "carol")
	testutil.SeedMissing(t, testDB.DB, aliceID, genesis5)
	testutil.SeedMissing(t, testDB.DB, bobID, genesis7)

	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
	notifier := application.NewRecordingNotifier()

	return &tradeFixture{
		db:           testDB,
		orchestrator: application.NewTradeOrchestrator(uowFactory, notifier, ttl, 10),
		notifier:     notifier,
	}
}

func proposer(id int64) application.MatchTarget {
	return application.MatchTarget{ProposerID: &id}
}

func TestTradeOrchestrator_FullSettlement(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	trade, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)
	assert.Equal(t, entities.TradeStatusPending, trade.Status)
	assert.True(t, testutil.InTrade(t, f.db.DB, aliceID))
	assert.Equal(t, dto.NoticeProposed, f.notifier.LastKind(aliceID))

	matched, err := f.orchestrator.Match(ctx, bob, proposer(aliceID), genesis9)
	require.NoError(t, err)
	assert.Equal(t, entities.TradeStatusActive, matched.Status)
	assert.True(t, testutil.InTrade(t, f.db.DB, bobID))
	assert.Equal(t, dto.NoticeMatched, f.notifier.LastKind(bobID))

	first, err := f.orchestrator.Confirm(ctx, alice, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ConfirmWaitingForCounterparty, first.Outcome)

	repeated, err := f.orchestrator.Confirm(ctx, alice, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ConfirmWaitingForCounterparty, repeated.Outcome, "a second confirmation by the same party counts once")

	settled, err := f.orchestrator.Confirm(ctx, bob, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ConfirmSettled, settled.Outcome)
	assert.Equal(t, entities.TradeStatusCompleted, settled.Trade.Status)

	// Settlement removes exactly the traded entries
	assert.False(t, testutil.IsMissing(t, f.db.DB, aliceID, genesis5))
	assert.True(t, testutil.IsMissing(t, f.db.DB, bobID, genesis7))
	assert.False(t, testutil.InTrade(t, f.db.DB, aliceID))
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))

	assert.Equal(t, dto.NoticeCompleted, f.notifier.LastKind(aliceID))
	assert.Equal(t, dto.NoticeCompleted, f.notifier.LastKind(bobID))
	listing := f.notifier.ListingKinds()
	require.NotEmpty(t, listing)
	assert.Equal(t, dto.NoticeOfferOpen, listing[0])
	assert.Equal(t, dto.NoticeOfferTaken, listing[len(listing)-1])

	_, err = f.orchestrator.Confirm(ctx, bob, trade.ID)
	assert.ErrorIs(t, err, errs.ErrUnknownTrade)

	history, err := f.orchestrator.History(ctx, bobID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.TradeStatusCompleted, history[0].Status)
}

func TestTradeOrchestrator_Rejections(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.orchestrator.Propose(ctx, alice, genesis9)
	require.ErrorIs(t, err, errs.ErrNotMissing)
	assert.False(t, testutil.InTrade(t, f.db.DB, aliceID), "rejected proposal leaves no lock behind")

	trade, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)

	_, err = f.orchestrator.Propose(ctx, alice, genesis5)
	assert.ErrorIs(t, err, errs.ErrAlreadyInTrade)

	_, err = f.orchestrator.Match(ctx, alice, proposer(aliceID), genesis9)
	assert.ErrorIs(t, err, errs.ErrSelfTrade)

	_, err = f.orchestrator.Match(ctx, bob, proposer(aliceID), genesis7)
	require.ErrorIs(t, err, errs.ErrAcceptorMissingCard)
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))

	_, err = f.orchestrator.Match(ctx, bob, proposer(aliceID), genesis5)
	require.ErrorIs(t, err, errs.ErrProposerMissingOfferedCard)

	_, err = f.orchestrator.Match(ctx, carol, proposer(bobID), genesis9)
	require.ErrorIs(t, err, errs.ErrNoActiveProposal)
	assert.False(t, testutil.InTrade(t, f.db.DB, carolID))

	status, err := f.orchestrator.Status(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, trade.ID, status.ID)
	assert.Equal(t, entities.TradeStatusPending, status.Status)
}

func TestTradeOrchestrator_Match_LeadingZerosNameTheSameCard(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)

	// Bob is missing #7, so #007 is the same card he lacks
	bobMissing, err := entities.NewCardRef("Genesis", "007")
	require.NoError(t, err)
	_, err = f.orchestrator.Match(ctx, bob, proposer(aliceID), bobMissing)
	require.ErrorIs(t, err, errs.ErrAcceptorMissingCard)
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))

	// Alice is missing #5
	aliceMissing := entities.CardRef{Expansion: "Genesis", CardNumber: "005"}
	_, err = f.orchestrator.Match(ctx, bob, proposer(aliceID), aliceMissing)
	require.ErrorIs(t, err, errs.ErrProposerMissingOfferedCard)
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))
}

func TestTradeOrchestrator_CancelAfterMatchReleasesBothLocks(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	trade, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)
	_, err = f.orchestrator.Match(ctx, bob, application.MatchTarget{TradeID: &trade.ID}, genesis9)
	require.NoError(t, err)

	_, err = f.orchestrator.Cancel(ctx, carol, &trade.ID)
	require.ErrorIs(t, err, errs.ErrNotAParty)

	cancelled, err := f.orchestrator.Cancel(ctx, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, entities.TradeStatusCancelled, cancelled.Status)

	assert.False(t, testutil.InTrade(t, f.db.DB, aliceID))
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))
	assert.True(t, testutil.IsMissing(t, f.db.DB, aliceID, genesis5), "cancellation never touches the ledger")
	assert.Equal(t, dto.NoticeCancelled, f.notifier.LastKind(aliceID))
	assert.Equal(t, dto.NoticeCancelled, f.notifier.LastKind(bobID))
}

func TestTradeOrchestrator_ConcurrentConfirmsSettleOnce(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	trade, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)
	_, err = f.orchestrator.Match(ctx, bob, proposer(aliceID), genesis9)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*interfaces.ConfirmResult, 2)
	confirmErrs := make([]error, 2)
	for i, caller := range []application.Caller{alice, bob} {
		wg.Add(1)
		go func(i int, caller application.Caller) {
			defer wg.Done()
			results[i], confirmErrs[i] = f.orchestrator.Confirm(ctx, caller, trade.ID)
		}(i, caller)
	}
	wg.Wait()

	settledCount := 0
	for i := range results {
		require.NoError(t, confirmErrs[i])
		if results[i].Outcome == interfaces.ConfirmSettled {
			settledCount++
		}
	}
	assert.Equal(t, 1, settledCount)
	assert.False(t, testutil.IsMissing(t, f.db.DB, aliceID, genesis5))
	assert.False(t, testutil.InTrade(t, f.db.DB, aliceID))
	assert.False(t, testutil.InTrade(t, f.db.DB, bobID))
}

func TestTradeOrchestrator_ConcurrentMatchesOneWins(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)

	acceptors := []application.Caller{bob, carol}
	results := make([]error, len(acceptors))
	var wg sync.WaitGroup
	for i, acceptor := range acceptors {
		wg.Add(1)
		go func(i int, acceptor application.Caller) {
			defer wg.Done()
			_, results[i] = f.orchestrator.Match(ctx, acceptor, proposer(aliceID), genesis9)
		}(i, acceptor)
	}
	wg.Wait()

	winners := 0
	for i, err := range results {
		if err == nil {
			winners++
			assert.True(t, testutil.InTrade(t, f.db.DB, acceptors[i].DiscordID))
			continue
		}
		assert.True(t, errors.Is(err, errs.ErrNoActiveProposal), "unexpected error: %v", err)
		assert.False(t, testutil.InTrade(t, f.db.DB, acceptors[i].DiscordID), "losing acceptor keeps no lock")
	}
	assert.Equal(t, 1, winners)
}

func TestTradeOrchestrator_ExpireTrades(t *testing.T) {
	t.Parallel()
	f := setupTradeFixture(t, 10*time.Millisecond)
	ctx := context.Background()

	_, err := f.orchestrator.Propose(ctx, alice, genesis5)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	expired, err := f.orchestrator.ExpireTrades(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.False(t, testutil.InTrade(t, f.db.DB, aliceID))
	assert.Equal(t, dto.NoticeCancelled, f.notifier.LastKind(aliceID))

	history, err := f.orchestrator.History(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].CancelReason)
	assert.Equal(t, entities.CancelReasonExpired, *history[0].CancelReason)

	again, err := f.orchestrator.ExpireTrades(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, again)
}
