package events

import (
	"context"
	"sync"

	"betting/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeBetSettled     EventType = "bet_settled"
	EventTypeFixturesSynced EventType = "fixtures_synced"
)

// AllEventTypes lists every event the services emit
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeBetPlaced,
	EventTypeBetSettled,
	EventTypeFixturesSynced,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed balance change
type BalanceChangeEvent struct {
	UserID     int64                  `json:"user_id"`
	OldBalance decimal.Decimal        `json:"old_balance"`
	NewBalance decimal.Decimal        `json:"new_balance"`
	Kind       models.TransactionKind `json:"kind"`
	Amount     decimal.Decimal        `json:"amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent is emitted when a pending bet is staked
type BetPlacedEvent struct {
	UserID      int64           `json:"user_id"`
	BetID       int64           `json:"bet_id"`
	Legs        int             `json:"legs"`
	DroppedLegs int             `json:"dropped_legs"`
	Odds        decimal.Decimal `json:"odds"`
	Amount      decimal.Decimal `json:"amount"`
	WinAmount   decimal.Decimal `json:"win_amount"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent is emitted when the sweep finishes a bet
type BetSettledEvent struct {
	UserID    int64           `json:"user_id"`
	BetID     int64           `json:"bet_id"`
	Won       bool            `json:"won"`
	Odds      decimal.Decimal `json:"odds"`
	Amount    decimal.Decimal `json:"amount"`
	WinAmount decimal.Decimal `json:"win_amount"`
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// FixturesSyncedEvent is emitted after one competition's fixtures are committed
type FixturesSyncedEvent struct {
	RunID           string `json:"run_id"`
	CompetitionCode string `json:"competition_code"`
	Created         int    `json:"created"`
	Updated         int    `json:"updated"`
}

func (e FixturesSyncedEvent) Type() EventType {
	return EventTypeFixturesSynced
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits, then flushes them to the underlying bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits the queued events; called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Handlers outlive the request
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops the queued events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
