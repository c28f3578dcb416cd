package cards

import (
	"context"
	"errors"
	"testing"

	"cardswap/application"
	"cardswap/bot/common"
	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/interfaces"
	"cardswap/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeUnitOfWork struct {
	mocks     *testhelpers.TestMocks
	committed bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}
func (u *fakeUnitOfWork) Rollback() error                             { return nil }
func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository   { return u.mocks.UserRepo }
func (u *fakeUnitOfWork) TradeRepository() interfaces.TradeRepository { return u.mocks.TradeRepo }
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher         { return u.mocks.EventPublisher }
func (u *fakeUnitOfWork) ExpansionRepository() interfaces.ExpansionRepository {
	return u.mocks.ExpansionRepo
}
func (u *fakeUnitOfWork) MissingCardRepository() interfaces.MissingCardRepository {
	return u.mocks.MissingCardRepo
}
func (u *fakeUnitOfWork) TradeConfirmationRepository() interfaces.TradeConfirmationRepository {
	return u.mocks.ConfirmationRepo
}

type fakeUnitOfWorkFactory struct {
	mocks *testhelpers.TestMocks
	units []*fakeUnitOfWork
}

func (f *fakeUnitOfWorkFactory) Create() application.UnitOfWork {
	uow := &fakeUnitOfWork{mocks: f.mocks}
	f.units = append(f.units, uow)
	return uow
}

var alice = application.Caller{DiscordID: 100, Username: "alice"}

func newTestFeature() (*Feature, *fakeUnitOfWorkFactory) {
	factory := &fakeUnitOfWorkFactory{mocks: testhelpers.NewTestMocks()}
	factory.mocks.UserRepo.On("GetByDiscordID", mock.Anything, alice.DiscordID).
		Return(&entities.User{DiscordID: alice.DiscordID, Username: alice.Username}, nil)
	return NewFeature(factory), factory
}

var genesis = &entities.Expansion{Name: "Genesis", TotalCards: 120}

func TestSetMissing_Add(t *testing.T) {
	feature, factory := newTestFeature()
	m := factory.mocks

	m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
	m.MissingCardRepo.On("Add", mock.Anything, alice.DiscordID, testhelpers.Card("Genesis", "5")).Return(true, nil).Once()
	m.MissingCardRepo.On("Add", mock.Anything, alice.DiscordID, testhelpers.Card("Genesis", "5")).Return(false, nil).Once()
	m.EventPublisher.On("Publish", mock.Anything).Return(nil).Once()

	message, err := feature.setMissing(context.Background(), alice, testhelpers.Card("Genesis", "5"), true)
	require.NoError(t, err)
	assert.Equal(t, "Added Genesis #5 to your missing list.", message)
	assert.True(t, factory.units[0].committed)

	message, err = feature.setMissing(context.Background(), alice, testhelpers.Card("Genesis", "5"), true)
	require.NoError(t, err)
	assert.Equal(t, "Genesis #5 is already on your missing list.", message)
	m.AssertAllExpectations(t)
}

func TestSetMissing_RemoveAbsentCard(t *testing.T) {
	feature, factory := newTestFeature()
	m := factory.mocks

	m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
	m.MissingCardRepo.On("Remove", mock.Anything, alice.DiscordID, testhelpers.Card("Genesis", "5")).Return(false, nil)

	message, err := feature.setMissing(context.Background(), alice, testhelpers.Card("Genesis", "5"), false)
	require.NoError(t, err)
	assert.Equal(t, "Genesis #5 wasn't on your missing list.", message)
	m.AssertAllExpectations(t)
}

func TestSetMissing_UnknownExpansionSuggestsNames(t *testing.T) {
	feature, factory := newTestFeature()
	m := factory.mocks

	m.ExpansionRepo.On("GetByName", mock.Anything, "Gen").Return(nil, nil)
	m.ExpansionRepo.On("List", mock.Anything).Return([]*entities.Expansion{
		genesis,
		{Name: "Jungle", TotalCards: 64},
	}, nil)

	_, err := feature.setMissing(context.Background(), alice, testhelpers.Card("Gen", "5"), true)

	require.ErrorIs(t, err, errs.ErrUnknownExpansion)
	message, rejection := common.UserMessageFor(err)
	assert.True(t, rejection)
	assert.Equal(t, "Unknown expansion **Gen**. Did you mean **Genesis**?", message)
	assert.False(t, factory.units[0].committed)
	m.MissingCardRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetMissing_CardOutsideExpansion(t *testing.T) {
	feature, factory := newTestFeature()
	m := factory.mocks

	m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)

	_, err := feature.setMissing(context.Background(), alice, testhelpers.Card("Genesis", "121"), true)

	require.ErrorIs(t, err, errs.ErrInvalidCardNumber)
	var botErr *common.BotError
	assert.False(t, errors.As(err, &botErr), "only unknown expansions get suggestions")
}

func TestCreateMissingListEmbed(t *testing.T) {
	embed := CreateMissingListEmbed("genesis", []*entities.MissingCard{
		{DiscordID: 100, Card: testhelpers.Card("Genesis", "5")},
		{DiscordID: 100, Card: testhelpers.Card("Genesis", "7")},
	})

	assert.Equal(t, "Missing from Genesis", embed.Title)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "2 cards", embed.Fields[0].Name)
	assert.Equal(t, "#5, #7", embed.Fields[0].Value)
}
