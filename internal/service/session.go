package service

import (
	"context"
	"fmt"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/analytics"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Period selection modes
const (
	ModeRange = "range"
	ModeMonth = "month"
	ModeYear  = "year"
)

// CreateSession starts a session analysing the full data range
func (s *InsightService) CreateSession(ctx context.Context) (*models.Session, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.CreateSession")
	defer span.End()

	history, err := s.history(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	session := &models.Session{
		ID:         uuid.New().String(),
		Period:     fullRange(history),
		Transcript: []models.ChatMessage{},
	}
	span.SetAttributes(attribute.String("session_id", session.ID))

	if err := s.sessions.SavePeriod(ctx, session.ID, session.Period); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Session created",
		zap.String("session_id", session.ID),
		zap.Time("period_start", session.Period.Start),
		zap.Time("period_end", session.Period.End))

	return session, nil
}

// Session returns the selected period and transcript of a session. Unknown
// sessions report the full data range and an empty transcript.
func (s *InsightService) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.Session", attribute.String("session_id", sessionID))
	defer span.End()

	history, err := s.history(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}
	period, err := s.period(ctx, sessionID, history)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}
	transcript, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if transcript == nil {
		transcript = []models.ChatMessage{}
	}

	return &models.Session{ID: sessionID, Period: period, Transcript: transcript}, nil
}

// DataRange returns the first and last purchase dates of the dataset
func (s *InsightService) DataRange(ctx context.Context) (models.Period, error) {
	history, err := s.history(ctx)
	if err != nil {
		return models.Period{}, err
	}
	return fullRange(history), nil
}

// SelectPeriod sets an arbitrary date range for the session
func (s *InsightService) SelectPeriod(ctx context.Context, sessionID string, start, end time.Time) (models.Period, error) {
	if start.IsZero() || end.IsZero() {
		return models.Period{}, fmt.Errorf("%w: start and end are required", ErrInvalidPeriod)
	}
	p := models.NewPeriod(start, end)
	if p.End.Before(p.Start) {
		return models.Period{}, fmt.Errorf("%w: end %s is before start %s",
			ErrInvalidPeriod, p.End.Format("2006-01-02"), p.Start.Format("2006-01-02"))
	}
	return s.selectPeriod(ctx, sessionID, p, ModeRange)
}

// SelectMonth sets a calendar month for the session. Month 0 selects the
// whole year.
func (s *InsightService) SelectMonth(ctx context.Context, sessionID string, year, month int) (models.Period, error) {
	if year < 1 || year > 9999 {
		return models.Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	switch {
	case month == 0:
		return s.selectPeriod(ctx, sessionID, analytics.YearPeriod(year), ModeYear)
	case month >= 1 && month <= 12:
		return s.selectPeriod(ctx, sessionID, analytics.MonthPeriod(year, time.Month(month)), ModeMonth)
	default:
		return models.Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
}

func (s *InsightService) selectPeriod(ctx context.Context, sessionID string, p models.Period, mode string) (models.Period, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.SelectPeriod",
		attribute.String("session_id", sessionID),
		attribute.String("mode", mode))
	defer span.End()

	if err := s.sessions.SavePeriod(ctx, sessionID, p); err != nil {
		util.RecordError(span, err)
		return models.Period{}, fmt.Errorf("failed to save period: %w", err)
	}
	util.PeriodSelectionsTotal.WithLabelValues(mode).Inc()

	event := &models.PeriodSelectedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePeriodSelected,
			Timestamp: s.now(),
		},
		SessionID:   sessionID,
		Mode:        mode,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	}
	if err := s.publisher.PublishPeriodSelected(ctx, event); err != nil {
		util.EventPublishFailedTotal.WithLabelValues(models.EventTypePeriodSelected).Inc()
		s.logger.Error("Failed to publish PeriodSelected event", zap.Error(err))
	}

	s.logger.Info("Period selected",
		zap.String("session_id", sessionID),
		zap.String("mode", mode),
		zap.Time("period_start", p.Start),
		zap.Time("period_end", p.End))

	return p, nil
}

// ClearTranscript removes the chat history of a session
func (s *InsightService) ClearTranscript(ctx context.Context, sessionID string) error {
	ctx, span := util.StartSpan(ctx, "InsightService.ClearTranscript", attribute.String("session_id", sessionID))
	defer span.End()

	if err := s.sessions.ClearTranscript(ctx, sessionID); err != nil {
		util.RecordError(span, err)
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}

// period returns the session's selected period, falling back to the full range
func (s *InsightService) period(ctx context.Context, sessionID string, history analytics.RecordSet) (models.Period, error) {
	p, found, err := s.sessions.LoadPeriod(ctx, sessionID)
	if err != nil {
		return models.Period{}, fmt.Errorf("failed to load period: %w", err)
	}
	if !found {
		return fullRange(history), nil
	}
	return p, nil
}

func fullRange(history analytics.RecordSet) models.Period {
	p, _ := history.DateRange()
	return p
}
