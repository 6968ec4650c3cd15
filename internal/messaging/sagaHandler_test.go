package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/parkgolf/slot-service/internal/entity"
	"github.com/parkgolf/slot-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	topic   string
	message interface{}
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{topic: topic, message: message})
	return nil
}

func (p *fakePublisher) last(t *testing.T) publishedMessage {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.published)
	return p.published[len(p.published)-1]
}

type fakeCapacity struct {
	reserveErr error
	releaseErr error
	bookErr    error

	reserveCalls []int64
	releaseCalls []int64
	bookCalls    []int64
	directCalls  []int64
}

func (c *fakeCapacity) Reserve(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	c.reserveCalls = append(c.reserveCalls, bookingID)
	if c.reserveErr != nil {
		return nil, c.reserveErr
	}
	return &entity.Slot{ID: slotID, BookedPlayers: playerCount, MaxPlayers: 4, Status: entity.SlotStatusAvailable}, nil
}

func (c *fakeCapacity) Release(ctx context.Context, bookingID, slotID int64, playerCount int) (*entity.Slot, error) {
	c.releaseCalls = append(c.releaseCalls, bookingID)
	if c.releaseErr != nil {
		return nil, c.releaseErr
	}
	return &entity.Slot{ID: slotID, BookedPlayers: 0, MaxPlayers: 4, Status: entity.SlotStatusAvailable}, nil
}

func (c *fakeCapacity) Book(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error) {
	c.bookCalls = append(c.bookCalls, slotID)
	if c.bookErr != nil {
		return nil, c.bookErr
	}
	return &entity.Slot{ID: slotID, BookedPlayers: playerCount, MaxPlayers: 4}, nil
}

func (c *fakeCapacity) ReleaseDirect(ctx context.Context, slotID int64, playerCount int) (*entity.Slot, error) {
	c.directCalls = append(c.directCalls, slotID)
	return &entity.Slot{ID: slotID, MaxPlayers: 4}, nil
}

type fakeSlots struct {
	generateCalls []*service.GenerateSlotsRequest
	generateErr   error
}

func (s *fakeSlots) GenerateSlots(ctx context.Context, req *service.GenerateSlotsRequest) (*service.GenerateSlotsResult, error) {
	s.generateCalls = append(s.generateCalls, req)
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &service.GenerateSlotsResult{Created: 5}, nil
}

func (s *fakeSlots) GetSlot(ctx context.Context, id int64) (*entity.Slot, error) {
	return nil, entity.ErrSlotNotFound
}

func (s *fakeSlots) ListSlots(ctx context.Context, req *service.ListSlotsRequest) ([]*entity.Slot, error) {
	return nil, nil
}

func (s *fakeSlots) SetSlotStatus(ctx context.Context, id int64, status entity.SlotStatus) error {
	return nil
}

func reserveBody(t *testing.T, bookingID, slotID int64, players int) []byte {
	t.Helper()
	body, err := json.Marshal(SlotReserveCommand{
		BookingID:     bookingID,
		BookingNumber: "BK-2025-0001",
		SlotID:        slotID,
		PlayerCount:   players,
		RequestedAt:   "2025-01-06T09:00:00Z",
	})
	require.NoError(t, err)
	return body
}

func TestHandleSlotReserve_Success(t *testing.T) {
	capacity := &fakeCapacity{}
	publisher := &fakePublisher{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	err := handler.HandleSlotReserve(context.Background(), reserveBody(t, 100, 42, 2))
	require.NoError(t, err)

	last := publisher.last(t)
	assert.Equal(t, TopicSlotReserved, last.topic)

	event, ok := last.message.(SlotReservedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(100), event.BookingID)
	assert.Equal(t, int64(42), event.SlotID)
	assert.Equal(t, 2, event.PlayerCount)
	assert.NotEmpty(t, event.EventID)
	assert.NotEmpty(t, event.ReservedAt)
}

func TestHandleSlotReserve_BusinessFailurePublishesFailedEvent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "slot not found", err: entity.ErrSlotNotFound},
		{name: "capacity exceeded", err: entity.ErrCapacityExceeded},
		{name: "slot unavailable", err: entity.ErrSlotUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capacity := &fakeCapacity{reserveErr: tt.err}
			publisher := &fakePublisher{}
			handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

			// The delivery is acked: the rejection travels as an event,
			// not as a requeue.
			err := handler.HandleSlotReserve(context.Background(), reserveBody(t, 100, 42, 2))
			require.NoError(t, err)

			last := publisher.last(t)
			assert.Equal(t, TopicSlotReserveFailed, last.topic)

			event, ok := last.message.(SlotReserveFailedEvent)
			require.True(t, ok)
			assert.Equal(t, int64(100), event.BookingID)
			assert.Equal(t, int64(42), event.SlotID)
			assert.Contains(t, event.Reason, tt.err.Error())
		})
	}
}

func TestHandleSlotReserve_PublishFailureRequeues(t *testing.T) {
	pubErr := errors.New("broker gone")
	capacity := &fakeCapacity{}
	publisher := &fakePublisher{err: pubErr}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	err := handler.HandleSlotReserve(context.Background(), reserveBody(t, 100, 42, 2))
	assert.ErrorIs(t, err, pubErr)
}

func TestHandleSlotReserve_MalformedPayloadDropped(t *testing.T) {
	capacity := &fakeCapacity{}
	publisher := &fakePublisher{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	err := handler.HandleSlotReserve(context.Background(), []byte(`{"bookingId":`))
	assert.NoError(t, err, "malformed payloads are dropped, not requeued")
	assert.Empty(t, capacity.reserveCalls)
	assert.Empty(t, publisher.published)
}

func TestHandleSlotRelease_Success(t *testing.T) {
	capacity := &fakeCapacity{}
	publisher := &fakePublisher{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	body, err := json.Marshal(SlotReleaseCommand{
		BookingID:   100,
		SlotID:      42,
		PlayerCount: 2,
		Reason:      "payment failed",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleSlotRelease(context.Background(), body))

	last := publisher.last(t)
	assert.Equal(t, TopicSlotReleased, last.topic)

	event, ok := last.message.(SlotReleasedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(100), event.BookingID)
	assert.Equal(t, int64(42), event.SlotID)
}

func TestHandleSlotRelease_FailurePublishesFailedEvent(t *testing.T) {
	capacity := &fakeCapacity{releaseErr: entity.ErrSlotNotFound}
	publisher := &fakePublisher{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	body, err := json.Marshal(SlotReleaseCommand{BookingID: 100, SlotID: 42, PlayerCount: 2})
	require.NoError(t, err)

	require.NoError(t, handler.HandleSlotRelease(context.Background(), body))

	last := publisher.last(t)
	assert.Equal(t, TopicSlotReleaseFailed, last.topic)

	event, ok := last.message.(SlotReleaseFailedEvent)
	require.True(t, ok)
	assert.Contains(t, event.Reason, "not found")
}

func TestHandleGenerateSlots(t *testing.T) {
	slots := &fakeSlots{}
	handler := NewSagaHandler(&fakeCapacity{}, slots, &fakePublisher{})

	body, err := json.Marshal(GenerateSlotsCommand{
		GameID:   7,
		DateFrom: "2025-01-06",
		DateTo:   "2025-01-12",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleGenerateSlots(context.Background(), body))
	require.Len(t, slots.generateCalls, 1)
	assert.Equal(t, int64(7), slots.generateCalls[0].GameID)
	assert.Equal(t, "2025-01-06", slots.generateCalls[0].DateFrom)

	// Generation failures are logged, never requeued: the command has no
	// outcome event to carry a retry.
	slots.generateErr = entity.ErrNoScheduleDefined
	assert.NoError(t, handler.HandleGenerateSlots(context.Background(), body))
}

func TestHandleBookAndReleaseSlot(t *testing.T) {
	capacity := &fakeCapacity{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, &fakePublisher{})

	body, err := json.Marshal(AdjustSlotCommand{SlotID: 42, PlayerCount: 2})
	require.NoError(t, err)

	require.NoError(t, handler.HandleBookSlot(context.Background(), body))
	assert.Equal(t, []int64{42}, capacity.bookCalls)

	require.NoError(t, handler.HandleReleaseSlot(context.Background(), body))
	assert.Equal(t, []int64{42}, capacity.directCalls)

	// A full slot rejects the direct book, but the delivery is still acked.
	capacity.bookErr = entity.ErrCapacityExceeded
	assert.NoError(t, handler.HandleBookSlot(context.Background(), body))
}

func TestRegister_WiresAllInboundTopics(t *testing.T) {
	capacity := &fakeCapacity{}
	publisher := &fakePublisher{}
	handler := NewSagaHandler(capacity, &fakeSlots{}, publisher)

	router := NewRouter()
	handler.Register(router)

	err := router.Dispatch(context.Background(), TopicSlotReserve, reserveBody(t, 100, 42, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, capacity.reserveCalls)
}
