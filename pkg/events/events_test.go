package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent("order_created", map[string]any{"order_id": 1})

	_, err := uuid.Parse(ev.EventID)
	require.NoError(t, err)
	assert.Equal(t, "order_created", ev.Type)
	assert.False(t, ev.CreatedAt.IsZero())
	assert.Equal(t, 1, ev.Payload["order_id"])
}

func TestEmit(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, TopicOrders, "5", "order_deleted", map[string]any{"order_id": 5})

	require.Len(t, rec.Events, 1)
	assert.Equal(t, TopicOrders, rec.Events[0].Topic)
	assert.Equal(t, "5", rec.Events[0].Key)
	assert.Equal(t, []string{"order_deleted"}, rec.Types())
}

func TestEmit_SwallowsErrors(t *testing.T) {
	rec := &Recorder{Err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), rec, TopicOrders, "1", "order_created", nil)
	})
	Emit(context.Background(), nil, TopicOrders, "1", "order_created", nil)
}

func TestProducer(t *testing.T) {
	p := NewProducer([]string{" localhost:9092 ", ""})
	assert.True(t, p.Enabled())
	assert.False(t, NewProducer(nil).Enabled())

	w1 := p.writer(TopicOrders)
	w2 := p.writer(TopicOrders)
	assert.Same(t, w1, w2)
	assert.Equal(t, TopicOrders, w1.Topic)
	require.NoError(t, p.Close())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "1", NewEvent("user_created", nil)))
}
