package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stride/internal/config"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    messageReader
	processor *processors.EventProcessor
}

func New(cfg *config.Config, logger *logger.Logger, store processors.Store) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokerList(),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processors.NewEventProcessor(store, logger),
	}
}

// Start consumes storefront events until ctx is cancelled. Malformed or
// failing events are logged and skipped.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for %s events...", w.config.KafkaTopic)

	for {
		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := w.reader.ReadMessage(readCtx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				w.logger.Error("Failed to read message: %v", err)
			}
			continue
		}

		w.handle(ctx, message.Value)
	}
}

func (w *Worker) handle(ctx context.Context, value []byte) {
	w.logger.Debug("Received message: %s", string(value))

	var event events.Event
	if err := json.Unmarshal(value, &event); err != nil {
		w.logger.Error("Failed to parse event: %v", err)
		return
	}

	if err := w.processor.Process(ctx, event); err != nil {
		w.logger.Error("Failed to process event %s: %v", event.ID, err)
		return
	}

	w.logger.Debug("Event %s processed successfully", event.ID)
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
