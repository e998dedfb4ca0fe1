// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/handler"
)

const requestIDHeader = "X-Request-ID"

// Server routes HTTP requests to an Engine and, when configured, to an
// event Processor.
type Server struct {
	engine    *reviewsense.Engine
	processor *handler.Processor
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// New creates a Server. processor may be nil, in which case event delivery
// answers 503.
func New(engine *reviewsense.Engine, processor *handler.Processor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, processor: processor, logger: logger}
}

// LimitRate caps the API at rps requests per second with bursts of burst.
// A non-positive rps removes the limit.
func (s *Server) LimitRate(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// Router builds the gin router.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.rateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := r.Group("/v1")
	v1.POST("/score", s.score)
	v1.POST("/reviews", s.appendReview)
	v1.GET("/top-words", s.topWords)
	v1.GET("/words/:word", s.word)
	v1.POST("/events", s.event)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && c.FullPath() != "/health" && !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

type scoreRequest struct {
	Review string `json:"review"`
}

type scoreResponse struct {
	*reviewsense.Result
	Annotated string `json:"annotated"`
}

func (s *Server) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	res, err := s.engine.Score(c.Request.Context(), req.Review)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, scoreResponse{Result: res, Annotated: res.Annotated()})
}

type appendRequest struct {
	Text  string `json:"text"`
	Label *int   `json:"label"`
}

func (s *Server) appendReview(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Label == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}

	if err := s.engine.Append(c.Request.Context(), req.Text, *req.Label); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"label": *req.Label, "text": req.Text})
}

func (s *Server) topWords(c *gin.Context) {
	n := reviewsense.DefaultTopN
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
			return
		}
		n = v
	}

	if err := s.engine.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	words, err := s.engine.TopWords(c.Request.Context(), n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

func (s *Server) word(c *gin.Context) {
	word := strings.ToLower(c.Param("word"))

	if err := s.engine.Load(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	m, err := s.engine.Model(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	sentiment, err := m.WordSentiment(word)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"word":      word,
		"stop_word": m.IsStopWord(word),
		"sentiment": sentiment,
		"count":     m.WordCount(word),
	})
}

func (s *Server) event(c *gin.Context) {
	if s.processor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event processing is not configured"})
		return
	}

	var event events.S3Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid S3 event: " + err.Error()})
		return
	}

	outputs, err := s.processor.HandleEvent(c.Request.Context(), event)
	if err != nil {
		s.fail(c, err)
		return
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		written = append(written, out.Bucket+"/"+out.Key)
	}
	c.JSON(http.StatusOK, gin.H{"processed": len(outputs), "outputs": written})
}

// fail maps err to a status code and writes it.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reviewsense.ErrInvalidArgument), errors.Is(err, handler.ErrSameBucket):
		status = http.StatusBadRequest
	case errors.Is(err, reviewsense.ErrReadOnly):
		status = http.StatusConflict
	case errors.Is(err, reviewsense.ErrConfiguration):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
