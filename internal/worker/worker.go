package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/broker"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/service"
	"github.com/limasantoss/marketplace-dash/internal/util"
)

// DefaultDedupeTTL is how long a processed event id is remembered
const DefaultDedupeTTL = 24 * time.Hour

// Event outcomes, used as metric labels
const (
	OutcomeAnswered  = "answered"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// MessageSource delivers broker messages to a handler until ctx is done
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// QuestionAnswerer answers a queued question
type QuestionAnswerer interface {
	HandleQuestionAsked(ctx context.Context, event *models.QuestionAskedEvent) error
}

// Deduper remembers which events were already handled
type Deduper interface {
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ReleaseEvent(ctx context.Context, eventID string) error
}

// QuestionWorker answers questions queued on the questions topic
type QuestionWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	answerer     QuestionAnswerer
	deduper      Deduper
	dedupeTTL    time.Duration
}

// NewQuestionWorker creates a new question worker. deduper may be nil.
func NewQuestionWorker(
	consumer MessageSource,
	answerer QuestionAnswerer,
	deduper Deduper,
) *QuestionWorker {
	w := &QuestionWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		answerer:     answerer,
		deduper:      deduper,
		dedupeTTL:    DefaultDedupeTTL,
	}
	w.eventHandler.OnQuestionAsked(w.handleQuestionAsked)
	return w
}

// Start starts the worker
func (w *QuestionWorker) Start(ctx context.Context) error {
	log.Println("Starting question worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *QuestionWorker) Stop() error {
	log.Println("Stopping question worker...")
	return w.consumer.Close()
}

func (w *QuestionWorker) handleQuestionAsked(ctx context.Context, event *models.QuestionAskedEvent) error {
	if event.SessionID == "" {
		util.EventsProcessedTotal.WithLabelValues(models.EventTypeQuestionAsked, OutcomeFailed).Inc()
		return fmt.Errorf("%w: QuestionAsked event %s has no session", broker.ErrPoisonMessage, event.EventID)
	}

	marked := false
	if w.deduper != nil && event.EventID != "" {
		first, err := w.deduper.MarkEventProcessed(ctx, event.EventID, w.dedupeTTL)
		switch {
		case err != nil:
			log.Printf("Dedupe check failed, answering anyway: id=%s, err=%v", event.EventID, err)
		case !first:
			log.Printf("Skipping duplicate event: id=%s", event.EventID)
			util.EventsProcessedTotal.WithLabelValues(models.EventTypeQuestionAsked, OutcomeDuplicate).Inc()
			return nil
		default:
			marked = true
		}
	}

	if err := w.answerer.HandleQuestionAsked(ctx, event); err != nil {
		util.EventsProcessedTotal.WithLabelValues(models.EventTypeQuestionAsked, OutcomeFailed).Inc()
		if errors.Is(err, service.ErrInvalidQuestion) {
			return fmt.Errorf("%w: question %s rejected: %v", broker.ErrPoisonMessage, event.EventID, err)
		}
		// left uncommitted, so the marker must not hide the redelivery
		if marked {
			if rerr := w.deduper.ReleaseEvent(ctx, event.EventID); rerr != nil {
				log.Printf("Failed to release event marker: id=%s, err=%v", event.EventID, rerr)
			}
		}
		return fmt.Errorf("failed to answer question %s: %w", event.EventID, err)
	}

	util.EventsProcessedTotal.WithLabelValues(models.EventTypeQuestionAsked, OutcomeAnswered).Inc()
	return nil
}
