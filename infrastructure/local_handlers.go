package infrastructure

import (
	"context"
	"sync"

	"cardswap/domain/events"

	log "github.com/sirupsen/logrus"
)

// LocalEventHandler handles an event inside the publishing process
type LocalEventHandler func(context.Context, events.Event) error

// localHandlers invokes in-process subscribers before an event leaves the process
type localHandlers struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]LocalEventHandler
}

func (l *localHandlers) register(eventType events.EventType, handler LocalEventHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handlers == nil {
		l.handlers = make(map[events.EventType][]LocalEventHandler)
	}
	l.handlers[eventType] = append(l.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(l.handlers[eventType]),
	}).Info("Registered local event handler")
}

func (l *localHandlers) dispatch(ctx context.Context, event events.Event) {
	l.mu.RLock()
	handlers := l.handlers[event.Type()]
	l.mu.RUnlock()

	for _, handler := range handlers {
		// Handler failures never stop other handlers or the external publish
		if err := handler(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}
}
