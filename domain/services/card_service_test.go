package services

import (
	"context"
	"testing"

	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCardService_AddMissing(t *testing.T) {
	t.Parallel()

	genesis := &entities.Expansion{Name: "Genesis", TotalCards: 120}

	tests := []struct {
		name       string
		card       entities.CardRef
		setupMocks func(m *testhelpers.TestMocks)
		wantAdded  bool
		wantErr    error
	}{
		{
			name: "adds a card of a registered expansion",
			card: testhelpers.Card("Genesis", "5"),
			setupMocks: func(m *testhelpers.TestMocks) {
				m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
				m.MissingCardRepo.On("Add", mock.Anything, alice, testhelpers.Card("Genesis", "5")).Return(true, nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.MissingCardAddedEvent")).Return(nil)
			},
			wantAdded: true,
		},
		{
			name: "adding twice keeps a single entry",
			card: testhelpers.Card("Genesis", "5"),
			setupMocks: func(m *testhelpers.TestMocks) {
				m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
				m.MissingCardRepo.On("Add", mock.Anything, alice, testhelpers.Card("Genesis", "5")).Return(false, nil)
			},
		},
		{
			name: "promo numbers are accepted",
			card: testhelpers.Card("Genesis", "P-12"),
			setupMocks: func(m *testhelpers.TestMocks) {
				m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
				m.MissingCardRepo.On("Add", mock.Anything, alice, testhelpers.Card("Genesis", "P-12")).Return(true, nil)
				m.EventPublisher.On("Publish", mock.AnythingOfType("events.MissingCardAddedEvent")).Return(nil)
			},
			wantAdded: true,
		},
		{
			name: "number beyond the expansion",
			card: testhelpers.Card("Genesis", "121"),
			setupMocks: func(m *testhelpers.TestMocks) {
				m.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(genesis, nil)
			},
			wantErr: errs.ErrInvalidCardNumber,
		},
		{
			name: "unknown expansion",
			card: testhelpers.Card("Nowhere", "1"),
			setupMocks: func(m *testhelpers.TestMocks) {
				m.ExpansionRepo.On("GetByName", mock.Anything, "Nowhere").Return(nil, nil)
			},
			wantErr: errs.ErrUnknownExpansion,
		},
		{
			name:       "malformed number never reaches storage",
			card:       testhelpers.Card("Genesis", "5; DROP"),
			setupMocks: func(m *testhelpers.TestMocks) {},
			wantErr:    errs.ErrInvalidCardNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := testhelpers.NewTestMocks()
			tt.setupMocks(mocks)
			service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)

			added, err := service.AddMissing(context.Background(), alice, tt.card)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errs.IsRejection(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAdded, added)
			}
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestCardService_RemoveMissing(t *testing.T) {
	t.Parallel()

	t.Run("removing an absent card is not an error", func(t *testing.T) {
		t.Parallel()

		mocks := testhelpers.NewTestMocks()
		card := testhelpers.Card("Genesis", "5")
		mocks.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(&entities.Expansion{Name: "Genesis", TotalCards: 120}, nil)
		mocks.MissingCardRepo.On("Remove", mock.Anything, alice, card).Return(false, nil)

		service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)
		removed, err := service.RemoveMissing(context.Background(), alice, card)

		require.NoError(t, err)
		assert.False(t, removed)
		mocks.AssertAllExpectations(t)
	})

	t.Run("removing a listed card publishes", func(t *testing.T) {
		t.Parallel()

		mocks := testhelpers.NewTestMocks()
		card := testhelpers.Card("Genesis", "5")
		mocks.ExpansionRepo.On("GetByName", mock.Anything, "Genesis").Return(&entities.Expansion{Name: "Genesis", TotalCards: 120}, nil)
		mocks.MissingCardRepo.On("Remove", mock.Anything, alice, card).Return(true, nil)
		mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.MissingCardRemovedEvent")).Return(nil)

		service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)
		removed, err := service.RemoveMissing(context.Background(), alice, card)

		require.NoError(t, err)
		assert.True(t, removed)
		mocks.AssertAllExpectations(t)
	})
}

func TestCardService_AddExpansion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		expansion  string
		totalCards int
		wantErr    bool
	}{
		{name: "valid expansion", expansion: "  Genesis ", totalCards: 120},
		{name: "blank name", expansion: "   ", totalCards: 120, wantErr: true},
		{name: "zero cards", expansion: "Genesis", totalCards: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := testhelpers.NewTestMocks()
			if !tt.wantErr {
				mocks.ExpansionRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *entities.Expansion) bool {
					return e.Name == "Genesis" && e.TotalCards == tt.totalCards
				})).Return(nil)
			}

			service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)
			expansion, err := service.AddExpansion(context.Background(), tt.expansion, tt.totalCards)

			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrBadRequest)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Genesis", expansion.Name)
			}
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestCardService_ResolveCard(t *testing.T) {
	t.Parallel()

	mocks := testhelpers.NewTestMocks()
	mocks.ExpansionRepo.On("GetByName", mock.Anything, "genesis").Return(&entities.Expansion{Name: "Genesis", TotalCards: 120}, nil)
	mocks.ExpansionRepo.On("GetByName", mock.Anything, "Nowhere").Return(nil, nil)

	service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)

	resolved, err := service.ResolveCard(context.Background(), testhelpers.Card("genesis", "5"))
	require.NoError(t, err)
	assert.Equal(t, testhelpers.Card("Genesis", "5"), resolved)

	padded, err := service.ResolveCard(context.Background(), testhelpers.Card("genesis", "005"))
	require.NoError(t, err)
	assert.Equal(t, testhelpers.Card("Genesis", "5"), padded)

	unknown, err := service.ResolveCard(context.Background(), testhelpers.Card("Nowhere", "5"))
	require.NoError(t, err)
	assert.Equal(t, testhelpers.Card("Nowhere", "5"), unknown)
	mocks.AssertAllExpectations(t)
}

func TestCardService_ListMissing_UnknownExpansion(t *testing.T) {
	t.Parallel()

	mocks := testhelpers.NewTestMocks()
	mocks.ExpansionRepo.On("GetByName", mock.Anything, "Nowhere").Return(nil, nil)

	service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)
	_, err := service.ListMissing(context.Background(), alice, "Nowhere")

	require.ErrorIs(t, err, errs.ErrUnknownExpansion)
	mocks.AssertAllExpectations(t)
}

func TestCardService_SuggestExpansions(t *testing.T) {
	t.Parallel()

	mocks := testhelpers.NewTestMocks()
	mocks.ExpansionRepo.On("List", mock.Anything).Return([]*entities.Expansion{
		{Name: "Genesis", TotalCards: 120},
		{Name: "Mythical Island", TotalCards: 86},
		{Name: "Space-Time Smackdown", TotalCards: 207},
	}, nil)

	service := NewCardService(mocks.ExpansionRepo, mocks.MissingCardRepo, mocks.EventPublisher)
	suggestions, err := service.SuggestExpansions(context.Background(), "myth", 5)

	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Mythical Island", suggestions[0])
	mocks.AssertAllExpectations(t)
}
