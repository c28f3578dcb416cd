package testhelpers

import (
	"context"
	"time"

	"cardswap/domain/entities"
	"cardswap/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, discordID int64, username string) (*entities.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) TryAcquireTradeLock(ctx context.Context, discordID int64) (bool, error) {
	args := m.Called(ctx, discordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ReleaseTradeLock(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

// MockExpansionRepository is a mock implementation of ExpansionRepository
type MockExpansionRepository struct {
	mock.Mock
}

func (m *MockExpansionRepository) Upsert(ctx context.Context, expansion *entities.Expansion) error {
	args := m.Called(ctx, expansion)
	return args.Error(0)
}

func (m *MockExpansionRepository) GetByName(ctx context.Context, name string) (*entities.Expansion, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Expansion), args.Error(1)
}

func (m *MockExpansionRepository) List(ctx context.Context) ([]*entities.Expansion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Expansion), args.Error(1)
}

// MockMissingCardRepository is a mock implementation of MissingCardRepository
type MockMissingCardRepository struct {
	mock.Mock
}

func (m *MockMissingCardRepository) IsMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	args := m.Called(ctx, discordID, card)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissingCardRepository) Add(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	args := m.Called(ctx, discordID, card)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissingCardRepository) Remove(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	args := m.Called(ctx, discordID, card)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissingCardRepository) ListByUser(ctx context.Context, discordID int64, expansion string) ([]*entities.MissingCard, error) {
	args := m.Called(ctx, discordID, expansion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MissingCard), args.Error(1)
}

func (m *MockMissingCardRepository) CountByUser(ctx context.Context, discordID int64) (map[string]int, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockTradeRepository is a mock implementation of TradeRepository
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) Create(ctx context.Context, trade *entities.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *MockTradeRepository) GetByID(ctx context.Context, id int64) (*entities.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Trade, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetPendingByProposerForUpdate(ctx context.Context, proposerID int64) (*entities.Trade, error) {
	args := m.Called(ctx, proposerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetOpenByUser(ctx context.Context, discordID int64) (*entities.Trade, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListFulfillable(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListByUser(ctx context.Context, discordID int64, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) GetExpiredForUpdate(ctx context.Context, now time.Time, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

func (m *MockTradeRepository) Update(ctx context.Context, trade *entities.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *MockTradeRepository) UpdateMessageRefs(ctx context.Context, trade *entities.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

// MockTradeConfirmationRepository is a mock implementation of TradeConfirmationRepository
type MockTradeConfirmationRepository struct {
	mock.Mock
}

func (m *MockTradeConfirmationRepository) Add(ctx context.Context, tradeID, discordID int64) (bool, error) {
	args := m.Called(ctx, tradeID, discordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeConfirmationRepository) ListByTrade(ctx context.Context, tradeID int64) ([]int64, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
