package services

import (
	"context"
	"fmt"
	"strings"

	"cardswap/domain/entities"
	"cardswap/domain/errs"
	"cardswap/domain/events"
	"cardswap/domain/interfaces"

	"github.com/sahilm/fuzzy"
	log "github.com/sirupsen/logrus"
)

type cardService struct {
	expansionRepo   interfaces.ExpansionRepository
	missingCardRepo interfaces.MissingCardRepository
	eventPublisher  interfaces.EventPublisher
}

// NewCardService creates a new card ledger service
func NewCardService(expansionRepo interfaces.ExpansionRepository, missingCardRepo interfaces.MissingCardRepository, eventPublisher interfaces.EventPublisher) interfaces.CardService {
	return &cardService{
		expansionRepo:   expansionRepo,
		missingCardRepo: missingCardRepo,
		eventPublisher:  eventPublisher,
	}
}

// AddExpansion registers an expansion or updates its card total
func (s *cardService) AddExpansion(ctx context.Context, name string, totalCards int) (*entities.Expansion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.BadRequest("expansion name is required")
	}
	if totalCards <= 0 {
		return nil, errs.BadRequest("total cards must be positive, got %d", totalCards)
	}

	expansion := &entities.Expansion{Name: name, TotalCards: totalCards}
	if err := s.expansionRepo.Upsert(ctx, expansion); err != nil {
		return nil, errs.Storage("save expansion", err)
	}
	return expansion, nil
}

// ListExpansions returns every registered expansion
func (s *cardService) ListExpansions(ctx context.Context) ([]*entities.Expansion, error) {
	expansions, err := s.expansionRepo.List(ctx)
	if err != nil {
		return nil, errs.Storage("list expansions", err)
	}
	return expansions, nil
}

// AddMissing lists a card as missing after checking it belongs to a known expansion
func (s *cardService) AddMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	card, err := s.validateCard(ctx, card)
	if err != nil {
		return false, err
	}

	added, err := s.missingCardRepo.Add(ctx, discordID, card)
	if err != nil {
		return false, errs.Storage("add missing card", err)
	}
	if added {
		s.publish(events.MissingCardAddedEvent{
			DiscordID:  discordID,
			Expansion:  card.Expansion,
			CardNumber: card.CardNumber,
		})
	}
	return added, nil
}

// RemoveMissing removes a card from the missing list. Removing an absent card is not an error.
func (s *cardService) RemoveMissing(ctx context.Context, discordID int64, card entities.CardRef) (bool, error) {
	card, err := s.ResolveCard(ctx, card)
	if err != nil {
		return false, err
	}

	removed, err := s.missingCardRepo.Remove(ctx, discordID, card)
	if err != nil {
		return false, errs.Storage("remove missing card", err)
	}
	if removed {
		s.publish(events.MissingCardRemovedEvent{
			DiscordID:  discordID,
			Expansion:  card.Expansion,
			CardNumber: card.CardNumber,
		})
	}
	return removed, nil
}

// ListMissing returns the user's missing cards in an expansion
func (s *cardService) ListMissing(ctx context.Context, discordID int64, expansion string) ([]*entities.MissingCard, error) {
	exp, err := s.expansionRepo.GetByName(ctx, expansion)
	if err != nil {
		return nil, errs.Storage("get expansion", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownExpansion, expansion)
	}

	cards, err := s.missingCardRepo.ListByUser(ctx, discordID, exp.Name)
	if err != nil {
		return nil, errs.Storage("list missing cards", err)
	}
	return cards, nil
}

// MissingSummary returns the user's missing card count per expansion
func (s *cardService) MissingSummary(ctx context.Context, discordID int64) (map[string]int, error) {
	counts, err := s.missingCardRepo.CountByUser(ctx, discordID)
	if err != nil {
		return nil, errs.Storage("count missing cards", err)
	}
	return counts, nil
}

// SuggestExpansions fuzzy-matches the query against registered expansion names
func (s *cardService) SuggestExpansions(ctx context.Context, query string, limit int) ([]string, error) {
	expansions, err := s.expansionRepo.List(ctx)
	if err != nil {
		return nil, errs.Storage("list expansions", err)
	}

	matches := fuzzy.FindFrom(strings.ToLower(strings.TrimSpace(query)), expansionNames(expansions))
	suggestions := make([]string, 0, min(limit, len(matches)))
	for _, match := range matches {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, expansions[match.Index].Name)
	}
	return suggestions, nil
}

// ResolveCard replaces the expansion with its registered spelling.
// Cards of unregistered expansions are returned unchanged.
func (s *cardService) ResolveCard(ctx context.Context, card entities.CardRef) (entities.CardRef, error) {
	card = card.Canonical()
	expansion, err := s.expansionRepo.GetByName(ctx, card.Expansion)
	if err != nil {
		return card, errs.Storage("get expansion", err)
	}
	if expansion != nil {
		card.Expansion = expansion.Name
	}
	return card, nil
}

// validateCard checks the expansion exists and the number is within it
func (s *cardService) validateCard(ctx context.Context, card entities.CardRef) (entities.CardRef, error) {
	card = card.Canonical()
	if err := card.Validate(); err != nil {
		return card, fmt.Errorf("%w: %v", errs.ErrInvalidCardNumber, err)
	}

	expansion, err := s.expansionRepo.GetByName(ctx, card.Expansion)
	if err != nil {
		return card, errs.Storage("get expansion", err)
	}
	if expansion == nil {
		return card, fmt.Errorf("%w: %s", errs.ErrUnknownExpansion, card.Expansion)
	}
	if err := expansion.ValidateCard(card); err != nil {
		return card, fmt.Errorf("%w: %v", errs.ErrInvalidCardNumber, err)
	}
	card.Expansion = expansion.Name
	return card, nil
}

func (s *cardService) publish(event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish card event")
	}
}

// expansionNames implements fuzzy.Source over lower-cased expansion names
type expansionNames []*entities.Expansion

func (e expansionNames) Len() int {
	return len(e)
}

func (e expansionNames) String(i int) string {
	return strings.ToLower(e[i].Name)
}
