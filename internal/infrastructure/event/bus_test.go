package event

import (
	"context"
	"errors"
	"testing"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New()),
	}
}

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

type recordingSink struct {
	events []shared.DomainEvent
	errs   []error
}

func (s *recordingSink) RecordFailure(_ context.Context, event shared.DomainEvent, handlerErr error) {
	s.events = append(s.events, event)
	s.errs = append(s.errs, handlerErr)
}

func TestBusDispatchesToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"test.created"}}
	bus.Subscribe(h)

	ev := newTestEvent("test.created")
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.Len(t, h.received, 1)
	assert.Equal(t, ev.EventID(), h.received[0].EventID())

	// unrelated event types are not delivered
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("test.other")))
	assert.Len(t, h.received, 1)
}

func TestBusExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"test.created"}}
	bus.Subscribe(h, "test.updated")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("test.created")))
	assert.Empty(t, h.received)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("test.updated")))
	assert.Len(t, h.received, 1)
}

func TestBusHandlerErrorNeverPropagates(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	sink := &recordingSink{}
	bus.SetFailureSink(sink)

	failing := &recordingHandler{types: []string{"test.created"}, err: errors.New("db down")}
	healthy := &recordingHandler{types: []string{"test.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	ev := newTestEvent("test.created")
	require.NoError(t, bus.Publish(context.Background(), ev))

	// the failure lands in the sink, and the other handler still ran
	require.Len(t, sink.events, 1)
	assert.Equal(t, ev.EventID(), sink.events[0].EventID())
	assert.EqualError(t, sink.errs[0], "db down")
	assert.Len(t, healthy.received, 1)
}

func TestBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	sink := &recordingSink{}
	bus.SetFailureSink(sink)
	bus.Subscribe(&recordingHandler{types: []string{"test.created"}, panics: true})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("test.created")))
	require.Len(t, sink.errs, 1)
	assert.Contains(t, sink.errs[0].Error(), "handler panicked")
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"test.created"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("test.created")))
	assert.Empty(t, h.received)
}

func TestRegistryWildcardHandler(t *testing.T) {
	r := NewHandlerRegistry()
	wildcard := &recordingHandler{}
	scoped := &recordingHandler{}
	r.Register(wildcard)
	r.Register(scoped, "test.created")

	handlers := r.GetHandlers("test.created")
	assert.Len(t, handlers, 2)

	handlers = r.GetHandlers("test.anything")
	require.Len(t, handlers, 1)
	assert.Same(t, shared.EventHandler(wildcard), handlers[0])
}
