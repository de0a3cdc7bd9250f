package events

import (
	"Tuiter/internal/core/reactions"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	event := reactions.Event{
		OccurredAt: at,
		Op:         reactions.OpToggleDislike,
		UserID:     "u1",
		PostID:     "t1",
		Previous:   reactions.StateLiked,
		State:      reactions.StateDisliked,
		LikeCount:  -2,
	}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "t1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "toggle_dislike", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "u1", decoded["userId"])
	assert.Equal(t, "liked", decoded["previous"])
	assert.Equal(t, "disliked", decoded["state"])
	assert.Equal(t, float64(-2), decoded["likeCount"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("leader not available")}}

	err := p.Publish(context.Background(), reactions.Event{PostID: "t1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(" , ", "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher("localhost:9092, localhost:9093", "")
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
	assert.Equal(t, 2*time.Second, w.WriteTimeout)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, splitBrokers("localhost:9092, localhost:9093"))
}
