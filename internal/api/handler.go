package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/limasantoss/marketplace-dash/internal/models"
	"github.com/limasantoss/marketplace-dash/internal/service"
	"github.com/limasantoss/marketplace-dash/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Insights is the service surface exposed over HTTP
type Insights interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	Session(ctx context.Context, sessionID string) (*models.Session, error)
	DataRange(ctx context.Context) (models.Period, error)
	SelectPeriod(ctx context.Context, sessionID string, start, end time.Time) (models.Period, error)
	SelectMonth(ctx context.Context, sessionID string, year, month int) (models.Period, error)
	Ask(ctx context.Context, sessionID, question string) (*service.AskResponse, error)
	Enqueue(ctx context.Context, sessionID, question string) (string, error)
	ClearTranscript(ctx context.Context, sessionID string) error
	Overview(ctx context.Context, sessionID string) (*service.OverviewPage, error)
	Sellers(ctx context.Context, sessionID string) (*service.SellersPage, error)
	Logistics(ctx context.Context, sessionID string) (*service.LogisticsPage, error)
	Regional(ctx context.Context, sessionID string, cities []string) (*service.RegionalPage, error)
	SuggestedQuestions() []string
}

// ReadinessCheck is a named dependency check used by /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	insights Insights
	limiter  *RateLimiter
	checks   []ReadinessCheck
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. limiter may be nil.
func NewHandler(insights Insights, limiter *RateLimiter, checks ...ReadinessCheck) *Handler {
	return &Handler{
		insights: insights,
		limiter:  limiter,
		checks:   checks,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ask := []gin.HandlerFunc{h.askQuestion}
	if h.limiter != nil {
		ask = append([]gin.HandlerFunc{h.limiter.Middleware()}, ask...)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.createSession)
		v1.GET("/sessions/:id", h.getSession)
		v1.PUT("/sessions/:id/period", h.selectPeriod)
		v1.POST("/sessions/:id/questions", ask...)
		v1.DELETE("/sessions/:id/messages", h.clearTranscript)

		v1.GET("/sessions/:id/dashboard/overview", h.overview)
		v1.GET("/sessions/:id/dashboard/sellers", h.sellers)
		v1.GET("/sessions/:id/dashboard/logistics", h.logistics)
		v1.GET("/sessions/:id/dashboard/regional", h.regional)

		v1.GET("/questions/suggested", h.suggestedQuestions)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once every dependency check passes
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createSession starts a session over the full data range
func (h *Handler) createSession(c *gin.Context) {
	session, err := h.insights.CreateSession(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to create session", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// getSession returns the period, transcript and available data range
func (h *Handler) getSession(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.insights.Session(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to load session", err)
		return
	}
	dataRange, err := h.insights.DataRange(ctx)
	if err != nil {
		h.fail(c, "Failed to load session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":    session,
		"data_range": dataRange,
	})
}

// PeriodRequest selects either a date range or a year with optional month
type PeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Year  *int   `json:"year"`
	Month *int   `json:"month"`
}

// selectPeriod changes the session's analysis period
func (h *Handler) selectPeriod(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	sessionID := c.Param("id")

	var (
		period models.Period
		err    error
	)
	if req.Year != nil {
		month := 0
		if req.Month != nil {
			month = *req.Month
		}
		period, err = h.insights.SelectMonth(ctx, sessionID, *req.Year, month)
	} else {
		start, startErr := time.Parse(dateLayout, req.Start)
		end, endErr := time.Parse(dateLayout, req.End)
		if startErr != nil || endErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid period",
				"details": "start and end must be dates formatted as YYYY-MM-DD, or year must be set",
			})
			return
		}
		period, err = h.insights.SelectPeriod(ctx, sessionID, start, end)
	}
	if err != nil {
		h.fail(c, "Failed to select period", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// QuestionRequest carries a chat question. Async questions are answered by
// the question worker and land in the session transcript.
type QuestionRequest struct {
	Question string `json:"question"`
	Async    bool   `json:"async"`
}

// askQuestion answers a chat question over the session period
func (h *Handler) askQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	sessionID := c.Param("id")

	if req.Async {
		eventID, err := h.insights.Enqueue(ctx, sessionID, req.Question)
		if err != nil {
			h.fail(c, "Failed to enqueue question", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"session_id": sessionID,
			"event_id":   eventID,
		})
		return
	}

	resp, err := h.insights.Ask(ctx, sessionID, req.Question)
	if err != nil {
		h.fail(c, "Failed to answer question", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// clearTranscript removes the session chat history
func (h *Handler) clearTranscript(c *gin.Context) {
	if err := h.insights.ClearTranscript(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Failed to clear messages", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) overview(c *gin.Context) {
	page, err := h.insights.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to build overview", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) sellers(c *gin.Context) {
	page, err := h.insights.Sellers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to build seller ranking", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) logistics(c *gin.Context) {
	page, err := h.insights.Logistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to build logistics", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// regional accepts repeated ?city= filters
func (h *Handler) regional(c *gin.Context) {
	page, err := h.insights.Regional(c.Request.Context(), c.Param("id"), c.QueryArray("city"))
	if err != nil {
		h.fail(c, "Failed to build regional logistics", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) suggestedQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.insights.SuggestedQuestions()})
}

// fail maps service errors onto HTTP statuses
func (h *Handler) fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrRecordsUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
