package processors

import (
	"context"
	"strings"
	"time"

	"stride/internal/events"
	"stride/internal/filters"
	"stride/internal/logger"
)

// Store persists storefront analytics.
type Store interface {
	RecordFilterHit(ctx context.Context, collectionHandle, filterInput string, at time.Time) error
	RecordSearch(ctx context.Context, term string, resultCount int, at time.Time) error
}

type EventProcessor struct {
	store  Store
	logger *logger.Logger
}

func NewEventProcessor(store Store, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		store:  store,
		logger: logger,
	}
}

// Process applies one event to the analytics tables. Unknown event types
// are logged and ignored.
func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	at := event.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}

	switch event.Type {
	case events.TypeCollectionViewed:
		var payload events.CollectionViewed
		if err := event.Decode(&payload); err != nil {
			return err
		}
		return ep.collectionViewed(ctx, payload, at)

	case events.TypeSearchPerformed:
		var payload events.SearchPerformed
		if err := event.Decode(&payload); err != nil {
			return err
		}
		return ep.searchPerformed(ctx, payload, at)

	default:
		ep.logger.Warn("Skipping unknown event type %q", event.Type)
		return nil
	}
}

// collectionViewed counts each distinct filter input once per view, after
// normalization so equivalent inputs share a row.
func (ep *EventProcessor) collectionViewed(ctx context.Context, payload events.CollectionViewed, at time.Time) error {
	if payload.Handle == "" {
		return nil
	}
	for _, input := range filters.NormalizeFilterInputs(payload.FilterInputs) {
		if _, ok := filters.DecodeFilter(input); !ok {
			continue
		}
		if err := ep.store.RecordFilterHit(ctx, payload.Handle, input, at); err != nil {
			return err
		}
	}
	return nil
}

func (ep *EventProcessor) searchPerformed(ctx context.Context, payload events.SearchPerformed, at time.Time) error {
	term := strings.ToLower(strings.Join(strings.Fields(payload.Term), " "))
	if term == "" {
		return nil
	}
	return ep.store.RecordSearch(ctx, term, payload.ResultCount, at)
}
