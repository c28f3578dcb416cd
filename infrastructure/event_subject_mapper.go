package infrastructure

import (
	"fmt"

	"cardswap/domain/events"
)

// EventStreamName is the JetStream stream every cardswap event lands in
const EventStreamName = "cardswap_events"

var eventSubjects = map[events.EventType]string{
	events.EventTypeTradeProposed:      "trades.proposed",
	events.EventTypeTradeMatched:       "trades.matched",
	events.EventTypeTradeConfirmed:     "trades.confirmed",
	events.EventTypeTradeCompleted:     "trades.completed",
	events.EventTypeTradeCancelled:     "trades.cancelled",
	events.EventTypeMissingCardAdded:   "cards.missing.added",
	events.EventTypeMissingCardRemoved: "cards.missing.removed",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"trades.*", "cards.missing.*"}
}
