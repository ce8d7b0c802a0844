package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stride/internal/config"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/worker/processors"
)

type fakeReader struct {
	messages chan kafka.Message
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type countingStore struct {
	mu    sync.Mutex
	terms []string
}

func (s *countingStore) RecordFilterHit(context.Context, string, string, time.Time) error { return nil }

func (s *countingStore) RecordSearch(_ context.Context, term string, _ int, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = append(s.terms, term)
	return nil
}

func (s *countingStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.terms...)
}

func TestWorker_ConsumesUntilCancelled(t *testing.T) {
	store := &countingStore{}
	reader := &fakeReader{messages: make(chan kafka.Message, 3)}
	w := &Worker{
		config:    &config.Config{KafkaTopic: "storefront-events"},
		logger:    logger.Nop(),
		reader:    reader,
		processor: processors.NewEventProcessor(store, logger.Nop()),
	}

	ev, err := events.New("1", events.TypeSearchPerformed, events.SearchPerformed{Term: "Trail"}, time.Now())
	require.NoError(t, err)
	value, err := json.Marshal(ev)
	require.NoError(t, err)

	reader.messages <- kafka.Message{Value: []byte("{broken")}
	reader.messages <- kafka.Message{Value: value}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(store.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	w.Stop()
	assert.True(t, reader.closed)
	assert.Equal(t, []string{"trail"}, store.snapshot())
}
