package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"betting/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestTransactionalBus_FlushDelivers covers the flow from unit of work to main bus
func TestTransactionalBus_FlushDelivers(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:     42,
		OldBalance: decimal.NewFromInt(50),
		NewBalance: decimal.NewFromInt(60),
		Kind:       models.TransactionKindDeposit,
		Amount:     decimal.NewFromInt(10),
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush(context.Background())
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent.UserID, received.UserID)
		assert.True(t, testEvent.NewBalance.Equal(received.NewBalance))
		assert.Equal(t, models.TransactionKindDeposit, received.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBus_MultipleEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(3)
	received := make(map[int64]bool)

	mainBus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		settled := event.(BetSettledEvent)
		mu.Lock()
		received[settled.BetID] = settled.Won
		mu.Unlock()
	})

	transactionalBus.Publish(BetSettledEvent{BetID: 1, Won: true})
	transactionalBus.Publish(BetSettledEvent{BetID: 2, Won: false})
	transactionalBus.Publish(BetSettledEvent{BetID: 3, Won: true})
	transactionalBus.Flush(context.Background())

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[int64]bool{1: true, 2: false, 3: true}, received)
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(BetPlacedEvent{UserID: 1, BetID: 7})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeFixturesSynced, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeFixturesSynced, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), FixturesSyncedEvent{CompetitionCode: "PL"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler did not run")
	}
}

func TestTransactionalBus_FlushDetachesCancellation(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	ctxErr := make(chan error, 1)
	mainBus.Subscribe(EventTypeBetPlaced, func(ctx context.Context, event Event) {
		ctxErr <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	transactionalBus.Publish(BetPlacedEvent{BetID: 1})
	transactionalBus.Flush(ctx)
	cancel()

	select {
	case err := <-ctxErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
}
