package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/limasantoss/marketplace-dash/internal/analytics"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxQuestionLength bounds the runes accepted in a single question
const MaxQuestionLength = 1000

// Question sources, used as metric labels
const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// RecordProvider exposes the loaded order dataset
type RecordProvider interface {
	Records(ctx context.Context) (analytics.RecordSet, error)
}

// SessionStore keeps the per-session period and transcript
type SessionStore interface {
	SavePeriod(ctx context.Context, sessionID string, p models.Period) error
	LoadPeriod(ctx context.Context, sessionID string) (models.Period, bool, error)
	AppendMessages(ctx context.Context, sessionID string, messages ...models.ChatMessage) error
	Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	ClearTranscript(ctx context.Context, sessionID string) error
}

// EventPublisher publishes insight events
type EventPublisher interface {
	PublishQuestionAnswered(ctx context.Context, event *models.QuestionAnsweredEvent) error
	PublishPeriodSelected(ctx context.Context, event *models.PeriodSelectedEvent) error
	PublishQuestionAsked(ctx context.Context, event *models.QuestionAskedEvent) error
}

// InsightService answers marketplace questions for a session
type InsightService struct {
	records   RecordProvider
	sessions  SessionStore
	publisher EventPublisher
	engine    *analytics.Engine
	logger    *zap.Logger
	now       func() time.Time
}

// NewInsightService creates a new insight service
func NewInsightService(
	records RecordProvider,
	sessions SessionStore,
	publisher EventPublisher,
) *InsightService {
	return &InsightService{
		records:   records,
		sessions:  sessions,
		publisher: publisher,
		engine:    analytics.NewEngine(),
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// AskResponse represents an answered question
type AskResponse struct {
	SessionID   string        `json:"session_id"`
	Question    string        `json:"question"`
	Intent      string        `json:"intent"`
	Answer      string        `json:"answer"`
	Period      models.Period `json:"period"`
	RecordCount int           `json:"record_count"`
}

// Ask answers a question over the session's selected period and records
// the exchange in the session transcript
func (s *InsightService) Ask(ctx context.Context, sessionID, question string) (*AskResponse, error) {
	return s.answer(ctx, askRequest{SessionID: sessionID, Question: question, Source: SourceHTTP})
}

// HandleQuestionAsked answers a question received from the broker
func (s *InsightService) HandleQuestionAsked(ctx context.Context, event *models.QuestionAskedEvent) error {
	_, err := s.answer(ctx, askRequest{SessionID: event.SessionID, Question: event.Question, Source: SourceKafka})
	return err
}

type askRequest struct {
	SessionID string
	Question  string
	Source    string
}

func (s *InsightService) answer(ctx context.Context, req askRequest) (*AskResponse, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.Ask",
		attribute.String("session_id", req.SessionID),
		attribute.String("source", req.Source))
	defer span.End()

	if utf8.RuneCountInString(req.Question) > MaxQuestionLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrInvalidQuestion, MaxQuestionLength)
	}

	history, err := s.history(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}
	period, err := s.period(ctx, req.SessionID, history)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}
	current := history.InPeriod(period)

	start := s.now()
	resp := s.engine.Answer(analytics.Request{
		Question: req.Question,
		Period:   period,
		Current:  current,
		History:  history,
	})
	intent := string(resp.Intent)
	util.AnswerLatency.WithLabelValues(intent).Observe(s.now().Sub(start).Seconds())
	util.QuestionsTotal.WithLabelValues(intent, req.Source).Inc()
	if resp.EmptyPeriod {
		util.EmptyPeriodAnswersTotal.Inc()
	}
	span.SetAttributes(attribute.String("intent", intent), attribute.Int("records", current.Len()))

	s.logger.Info("Question answered",
		zap.String("session_id", req.SessionID),
		zap.String("question", util.TruncateForLog(req.Question)),
		zap.String("intent", intent),
		zap.Int("records", current.Len()),
		zap.String("source", req.Source))

	answeredAt := s.now()
	if err := s.sessions.AppendMessages(ctx, req.SessionID,
		models.ChatMessage{Role: models.RoleUser, Content: req.Question, CreatedAt: answeredAt},
		models.ChatMessage{Role: models.RoleAssistant, Content: resp.Text, Intent: intent, CreatedAt: answeredAt},
	); err != nil {
		s.logger.Error("Failed to store transcript", zap.String("session_id", req.SessionID), zap.Error(err))
	}

	event := &models.QuestionAnsweredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeQuestionAnswered,
			Timestamp: answeredAt,
		},
		SessionID:   req.SessionID,
		Question:    req.Question,
		Intent:      intent,
		Answer:      resp.Text,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		RecordCount: current.Len(),
	}
	if err := s.publisher.PublishQuestionAnswered(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypeQuestionAnswered).Inc()
		s.logger.Error("Failed to publish QuestionAnswered event", zap.Error(err))
	}

	return &AskResponse{
		SessionID:   req.SessionID,
		Question:    req.Question,
		Intent:      intent,
		Answer:      resp.Text,
		Period:      period,
		RecordCount: current.Len(),
	}, nil
}

// Enqueue hands a question to the question worker and returns the event id
func (s *InsightService) Enqueue(ctx context.Context, sessionID, question string) (string, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.Enqueue", attribute.String("session_id", sessionID))
	defer span.End()

	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidQuestion, MaxQuestionLength)
	}

	event := &models.QuestionAskedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeQuestionAsked,
			Timestamp: s.now(),
		},
		SessionID: sessionID,
		Question:  question,
	}
	if err := s.publisher.PublishQuestionAsked(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypeQuestionAsked).Inc()
		util.RecordError(span, err)
		return "", fmt.Errorf("failed to enqueue question: %w", err)
	}
	return event.EventID, nil
}

// SuggestedQuestions lists ready-made questions for the chat UI
func (s *InsightService) SuggestedQuestions() []string {
	return append([]string(nil), suggestedQuestions...)
}

var suggestedQuestions = []string{
	"Qual o faturamento?",
	"Qual o ticket médio?",
	"Qual a concentração de vendas?",
	"Como está o desempenho dos vendedores?",
	"Qual foi o melhor dia de vendas?",
	"Quais as 3 categorias mais vendidas?",
	"Qual a loja com mais pedidos?",
	"Quais lojas estão em risco?",
	"Atrasos na entrega afetam as avaliações?",
	"Qual estado tem a entrega mais rápida?",
	"Houve queda nas vendas?",
}

// history returns the full dataset
func (s *InsightService) history(ctx context.Context) (analytics.RecordSet, error) {
	records, err := s.records.Records(ctx)
	if err != nil {
		return analytics.RecordSet{}, fmt.Errorf("%w: %v", ErrRecordsUnavailable, err)
	}
	return records, nil
}
