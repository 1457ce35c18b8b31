package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/analytics"
	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testRange = models.NewPeriod(
	time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2018, 8, 31, 0, 0, 0, 0, time.UTC),
)

type fakeInsights struct {
	err          error
	askedWith    string
	enqueued     string
	selectedFrom time.Time
	selectedTo   time.Time
	year, month  int
	cities       []string
	cleared      string
}

func (f *fakeInsights) CreateSession(ctx context.Context) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Session{ID: "s1", Period: testRange, Transcript: []models.ChatMessage{}}, nil
}

func (f *fakeInsights) Session(ctx context.Context, id string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Session{ID: id, Period: testRange, Transcript: []models.ChatMessage{}}, nil
}

func (f *fakeInsights) DataRange(ctx context.Context) (models.Period, error) {
	return testRange, f.err
}

func (f *fakeInsights) SelectPeriod(ctx context.Context, id string, start, end time.Time) (models.Period, error) {
	f.selectedFrom, f.selectedTo = start, end
	if f.err != nil {
		return models.Period{}, f.err
	}
	return models.NewPeriod(start, end), nil
}

func (f *fakeInsights) SelectMonth(ctx context.Context, id string, year, month int) (models.Period, error) {
	f.year, f.month = year, month
	if f.err != nil {
		return models.Period{}, f.err
	}
	return analytics.MonthPeriod(year, time.Month(month)), nil
}

func (f *fakeInsights) Ask(ctx context.Context, id, question string) (*service.AskResponse, error) {
	f.askedWith = question
	if f.err != nil {
		return nil, f.err
	}
	return &service.AskResponse{SessionID: id, Question: question, Intent: "revenue", Answer: "ok", Period: testRange}, nil
}

func (f *fakeInsights) Enqueue(ctx context.Context, id, question string) (string, error) {
	f.enqueued = question
	return "event-1", f.err
}

func (f *fakeInsights) ClearTranscript(ctx context.Context, id string) error {
	f.cleared = id
	return f.err
}

func (f *fakeInsights) Overview(ctx context.Context, id string) (*service.OverviewPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.OverviewPage{Period: testRange, Overview: analytics.Overview{Orders: 42}}, nil
}

func (f *fakeInsights) Sellers(ctx context.Context, id string) (*service.SellersPage, error) {
	return &service.SellersPage{Period: testRange}, f.err
}

func (f *fakeInsights) Logistics(ctx context.Context, id string) (*service.LogisticsPage, error) {
	return &service.LogisticsPage{Period: testRange}, f.err
}

func (f *fakeInsights) Regional(ctx context.Context, id string, cities []string) (*service.RegionalPage, error) {
	f.cities = cities
	return &service.RegionalPage{Period: testRange}, f.err
}

func (f *fakeInsights) SuggestedQuestions() []string {
	return []string{"Qual o faturamento?"}
}

func newRouter(h *Handler) *gin.Engine {
	router := gin.New()
	h.SetupRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	w := do(newRouter(NewHandler(&fakeInsights{}, nil)), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestReadiness(t *testing.T) {
	ok := ReadinessCheck{Name: "records", Check: func(context.Context) error { return nil }}
	down := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }}

	w := do(newRouter(NewHandler(&fakeInsights{}, nil, ok)), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(newRouter(NewHandler(&fakeInsights{}, nil, ok, down)), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "connection refused", details["redis"])
	assert.NotContains(t, details, "records")
}

func TestCreateAndGetSession(t *testing.T) {
	router := newRouter(NewHandler(&fakeInsights{}, nil))

	w := do(router, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", decode(t, w)["id"])

	w = do(router, http.MethodGet, "/api/v1/sessions/abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "abc", body["session"].(map[string]interface{})["id"])
	assert.Contains(t, body, "data_range")
}

func TestSelectPeriod(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, f *fakeInsights)
	}{
		{
			name:       "date range",
			body:       `{"start":"2017-03-01","end":"2017-03-31"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeInsights) {
				assert.Equal(t, models.Date(2017, 3, 1), f.selectedFrom)
				assert.Equal(t, models.Date(2017, 3, 31), f.selectedTo)
			},
		},
		{
			name:       "month",
			body:       `{"year":2017,"month":5}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeInsights) {
				assert.Equal(t, 2017, f.year)
				assert.Equal(t, 5, f.month)
			},
		},
		{
			name:       "whole year",
			body:       `{"year":2018}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, f *fakeInsights) {
				assert.Equal(t, 0, f.month)
			},
		},
		{
			name:       "bad date",
			body:       `{"start":"01/03/2017","end":"2017-03-31"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeInsights{}
			w := do(newRouter(NewHandler(f, nil)), http.MethodPut, "/api/v1/sessions/s1/period", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestSelectPeriodRejectedByService(t *testing.T) {
	f := &fakeInsights{err: service.ErrInvalidPeriod}
	w := do(newRouter(NewHandler(f, nil)), http.MethodPut, "/api/v1/sessions/s1/period", `{"year":2017,"month":13}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskQuestion(t *testing.T) {
	f := &fakeInsights{}
	w := do(newRouter(NewHandler(f, nil)), http.MethodPost, "/api/v1/sessions/s1/questions", `{"question":"Qual o faturamento?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Qual o faturamento?", f.askedWith)
	body := decode(t, w)
	assert.Equal(t, "revenue", body["intent"])
	assert.Equal(t, "ok", body["answer"])
}

func TestAskQuestionAsync(t *testing.T) {
	f := &fakeInsights{}
	w := do(newRouter(NewHandler(f, nil)), http.MethodPost, "/api/v1/sessions/s1/questions", `{"question":"oi","async":true}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "oi", f.enqueued)
	assert.Equal(t, "event-1", decode(t, w)["event_id"])
}

func TestAskQuestionErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid question", service.ErrInvalidQuestion, http.StatusBadRequest},
		{"records unavailable", service.ErrRecordsUnavailable, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeInsights{err: tt.err}
			w := do(newRouter(NewHandler(f, nil)), http.MethodPost, "/api/v1/sessions/s1/questions", `{"question":"x"}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "Failed to answer question", decode(t, w)["error"])
		})
	}
}

func TestAskQuestionIsRateLimited(t *testing.T) {
	router := newRouter(NewHandler(&fakeInsights{}, NewRateLimiter(0.001, 1)))

	first := do(router, http.MethodPost, "/api/v1/sessions/s1/questions", `{"question":"oi"}`)
	second := do(router, http.MethodPost, "/api/v1/sessions/s1/questions", `{"question":"oi"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// other routes are not limited
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/questions/suggested", "").Code)
}

func TestClearTranscript(t *testing.T) {
	f := &fakeInsights{}
	w := do(newRouter(NewHandler(f, nil)), http.MethodDelete, "/api/v1/sessions/s7/messages", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s7", f.cleared)
}

func TestDashboardPages(t *testing.T) {
	f := &fakeInsights{}
	router := newRouter(NewHandler(f, nil))

	for _, page := range []string{"overview", "sellers", "logistics", "regional"} {
		w := do(router, http.MethodGet, "/api/v1/sessions/s1/dashboard/"+page, "")
		assert.Equal(t, http.StatusOK, w.Code, page)
		assert.Contains(t, decode(t, w), "period", page)
	}

	w := do(router, http.MethodGet, "/api/v1/sessions/s1/dashboard/overview", "")
	assert.EqualValues(t, 42, decode(t, w)["orders"])

	do(router, http.MethodGet, "/api/v1/sessions/s1/dashboard/regional?city=salvador&city=recife", "")
	assert.Equal(t, []string{"salvador", "recife"}, f.cities)
}

func TestSuggestedQuestions(t *testing.T) {
	w := do(newRouter(NewHandler(&fakeInsights{}, nil)), http.MethodGet, "/api/v1/questions/suggested", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Qual o faturamento?"}, decode(t, w)["questions"])
}
