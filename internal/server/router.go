package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
)

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

// Router builds the gin engine with middleware and routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:    []string{"*"},
			ExposeHeaders:   []string{"*"},
			MaxAge:          12 * time.Hour,
		}),
		s.requestID(),
		s.accessLog(),
		gin.CustomRecovery(s.handlePanic),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/parse", s.Parse)
	r.POST("/parse/id", s.ParseID)

	return r
}

// requestID echoes X-Request-ID or generates one, and stores it with a
// request-scoped logger in the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > maxIDLength {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		ctx := common.WithRequestID(c.Request.Context(), id)
		ctx = common.WithLogger(ctx, s.logger.With("request_id", id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := common.LoggerFromContext(c.Request.Context(), s.logger)
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			logger.Error("http.request", attrs...)
		case status >= 400:
			logger.Warn("http.request", attrs...)
		default:
			logger.Info("http.request", attrs...)
		}
	}
}

func (s *Server) handlePanic(c *gin.Context, rec any) {
	common.LoggerFromContext(c.Request.Context(), s.logger).Error("http.panic", "panic", rec)
	s.writeProblem(c, http.StatusInternalServerError, "")
}
