package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Dispatch(t *testing.T) {
	router := NewRouter()

	var got []byte
	router.Handle("slot.reserve", func(ctx context.Context, body []byte) error {
		got = body
		return nil
	})

	err := router.Dispatch(context.Background(), "slot.reserve", []byte(`{"slotId":1}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"slotId":1}`), got)
}

func TestRouter_DispatchPropagatesHandlerError(t *testing.T) {
	router := NewRouter()

	handlerErr := errors.New("publish failed")
	router.Handle("slot.reserve", func(ctx context.Context, body []byte) error {
		return handlerErr
	})

	err := router.Dispatch(context.Background(), "slot.reserve", nil)
	assert.ErrorIs(t, err, handlerErr)
}

func TestRouter_UnknownTopicDropped(t *testing.T) {
	router := NewRouter()

	// No handler registered: the message is dropped without error so the
	// consumer acks it instead of cycling it through the queue.
	err := router.Dispatch(context.Background(), "slot.unknown", []byte(`{}`))
	assert.NoError(t, err)
}

func TestRouter_LastRegistrationWins(t *testing.T) {
	router := NewRouter()

	router.Handle("slot.reserve", func(ctx context.Context, body []byte) error {
		return errors.New("old handler")
	})
	router.Handle("slot.reserve", func(ctx context.Context, body []byte) error {
		return nil
	})

	assert.NoError(t, router.Dispatch(context.Background(), "slot.reserve", nil))
}
