package service

import (
	"context"

	"github.com/limasantoss/marketplace-dash/internal/analytics"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/util"

	"go.opentelemetry.io/otel/attribute"
)

// Dashboard pages
const (
	PageOverview  = "overview"
	PageSellers   = "sellers"
	PageLogistics = "logistics"
	PageRegional  = "regional"
)

// OverviewPage is the overview dashboard of a session period
type OverviewPage struct {
	Period models.Period `json:"period"`
	analytics.Overview
}

// SellersPage is the seller dashboard of a session period
type SellersPage struct {
	Period models.Period `json:"period"`
	analytics.SellerRanking
}

// LogisticsPage is the logistics dashboard of a session period
type LogisticsPage struct {
	Period models.Period `json:"period"`
	analytics.Logistics
}

// RegionalPage is the North/Northeast dashboard of a session period
type RegionalPage struct {
	Period models.Period `json:"period"`
	analytics.RegionalLogistics
}

// Overview computes the overview page for a session
func (s *InsightService) Overview(ctx context.Context, sessionID string) (*OverviewPage, error) {
	period, current, err := s.slice(ctx, sessionID, PageOverview)
	if err != nil {
		return nil, err
	}
	defer s.observePage(PageOverview)()
	return &OverviewPage{Period: period, Overview: analytics.BuildOverview(current)}, nil
}

// Sellers computes the seller page for a session
func (s *InsightService) Sellers(ctx context.Context, sessionID string) (*SellersPage, error) {
	period, current, err := s.slice(ctx, sessionID, PageSellers)
	if err != nil {
		return nil, err
	}
	defer s.observePage(PageSellers)()
	return &SellersPage{Period: period, SellerRanking: analytics.BuildSellerRanking(current)}, nil
}

// Logistics computes the logistics page for a session
func (s *InsightService) Logistics(ctx context.Context, sessionID string) (*LogisticsPage, error) {
	period, current, err := s.slice(ctx, sessionID, PageLogistics)
	if err != nil {
		return nil, err
	}
	defer s.observePage(PageLogistics)()
	return &LogisticsPage{Period: period, Logistics: analytics.BuildLogistics(current)}, nil
}

// Regional computes the North/Northeast page for a session, optionally
// narrowed to some customer cities
func (s *InsightService) Regional(ctx context.Context, sessionID string, cities []string) (*RegionalPage, error) {
	period, current, err := s.slice(ctx, sessionID, PageRegional)
	if err != nil {
		return nil, err
	}
	defer s.observePage(PageRegional)()
	return &RegionalPage{Period: period, RegionalLogistics: analytics.BuildRegionalLogistics(current, cities)}, nil
}

// slice returns the session period and the records inside it
func (s *InsightService) slice(ctx context.Context, sessionID, page string) (models.Period, analytics.RecordSet, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.Dashboard",
		attribute.String("session_id", sessionID),
		attribute.String("page", page))
	defer span.End()

	history, err := s.history(ctx)
	if err != nil {
		util.RecordError(span, err)
		return models.Period{}, analytics.RecordSet{}, err
	}
	period, err := s.period(ctx, sessionID, history)
	if err != nil {
		util.RecordError(span, err)
		return models.Period{}, analytics.RecordSet{}, err
	}
	return period, history.InPeriod(period), nil
}

func (s *InsightService) observePage(page string) func() {
	start := s.now()
	return func() {
		util.DashboardLatency.WithLabelValues(page).Observe(s.now().Sub(start).Seconds())
	}
}
