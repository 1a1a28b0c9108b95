package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Cart", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	cleared := &recordingHandler{types: []string{"cart.cleared"}}
	reconciled := &recordingHandler{types: []string{"cart.reconciled"}}
	bus.Subscribe(cleared)
	bus.Subscribe(reconciled)

	err := bus.Publish(context.Background(), newEvent("cart.cleared"))
	assert.NoError(t, err)

	assert.Len(t, cleared.received, 1)
	assert.Empty(t, reconciled.received)
}

func TestInMemoryEventBus_WildcardReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	all := &recordingHandler{}
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newEvent("cart.cleared"),
		newEvent("cart.reconciled"),
	)
	assert.NoError(t, err)
	assert.Len(t, all.received, 2)
}

func TestInMemoryEventBus_FailingHandlerDoesNotFailPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"cart.cleared"}, err: errors.New("handler broke")}
	healthy := &recordingHandler{types: []string{"cart.cleared"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newEvent("cart.cleared"))
	assert.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"cart.cleared"}, panics: true}
	healthy := &recordingHandler{types: []string{"cart.cleared"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newEvent("cart.cleared"))
	})
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"cart.cleared"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), newEvent("cart.cleared"))
	assert.Empty(t, handler.received)
}
