package testhelpers

import (
	"testing"
	"time"

	"cardswap/domain/entities"
)

// TestMocks bundles the repository mocks a trade or card service needs
type TestMocks struct {
	UserRepo         *MockUserRepository
	ExpansionRepo    *MockExpansionRepository
	MissingCardRepo  *MockMissingCardRepository
	TradeRepo        *MockTradeRepository
	ConfirmationRepo *MockTradeConfirmationRepository
	EventPublisher   *MockEventPublisher
}

// NewTestMocks creates a fresh set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:         new(MockUserRepository),
		ExpansionRepo:    new(MockExpansionRepository),
		MissingCardRepo:  new(MockMissingCardRepository),
		TradeRepo:        new(MockTradeRepository),
		ConfirmationRepo: new(MockTradeConfirmationRepository),
		EventPublisher:   new(MockEventPublisher),
	}
}

// AssertAllExpectations verifies every mock in the set
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	t.Helper()
	m.UserRepo.AssertExpectations(t)
	m.ExpansionRepo.AssertExpectations(t)
	m.MissingCardRepo.AssertExpectations(t)
	m.TradeRepo.AssertExpectations(t)
	m.ConfirmationRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// Card builds a card reference
func Card(expansion, number string) entities.CardRef {
	return entities.CardRef{Expansion: expansion, CardNumber: number}
}

// PendingTrade builds a pending trade owned by the proposer
func PendingTrade(id, proposerID int64, requested entities.CardRef) *entities.Trade {
	trade := entities.NewTrade(proposerID, requested, time.Now().Add(-time.Minute), 24*time.Hour)
	trade.ID = id
	return trade
}

// ActiveTrade builds an active trade between proposer and acceptor
func ActiveTrade(id, proposerID, acceptorID int64, requested, offered entities.CardRef) *entities.Trade {
	trade := PendingTrade(id, proposerID, requested)
	_ = trade.Match(acceptorID, offered, time.Now())
	return trade
}
