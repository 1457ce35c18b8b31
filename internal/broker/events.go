package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/limasantoss/marketplace-dash/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing insight events
type EventPublisher struct {
	insights  *Producer
	questions *Producer
}

// NewEventPublisher creates a new event publisher. questions may be nil when
// the process never enqueues questions for asynchronous answering.
func NewEventPublisher(insights, questions *Producer) *EventPublisher {
	return &EventPublisher{insights: insights, questions: questions}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// PublishQuestionAnswered publishes QuestionAnswered event
func (ep *EventPublisher) PublishQuestionAnswered(ctx context.Context, event *models.QuestionAnsweredEvent) error {
	return ep.insights.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishPeriodSelected publishes PeriodSelected event
func (ep *EventPublisher) PublishPeriodSelected(ctx context.Context, event *models.PeriodSelectedEvent) error {
	return ep.insights.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishQuestionAsked enqueues a question for the question worker
func (ep *EventPublisher) PublishQuestionAsked(ctx context.Context, event *models.QuestionAskedEvent) error {
	if ep.questions == nil {
		return fmt.Errorf("question topic not configured")
	}
	return ep.questions.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onQuestionAsked func(context.Context, *models.QuestionAskedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnQuestionAsked registers a handler for QuestionAsked events
func (eh *EventHandler) OnQuestionAsked(handler func(context.Context, *models.QuestionAskedEvent) error) {
	eh.onQuestionAsked = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("%w: failed to unmarshal base event: %v", ErrPoisonMessage, err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeQuestionAsked:
		if eh.onQuestionAsked != nil {
			var event models.QuestionAskedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("%w: failed to unmarshal QuestionAsked event: %v", ErrPoisonMessage, err)
			}
			return eh.onQuestionAsked(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
