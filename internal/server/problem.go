package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
)

const (
	contentTypeProblem = "application/problem+json"
	serverErrorTitle   = "An error occurred while processing the request"
)

// Problem is an RFC 9457 problem details payload.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
	http.StatusGatewayTimeout:      "https://tools.ietf.org/html/rfc9110#section-15.6.5",
}

// badRequest answers 400 with a client-facing message.
func (s *Server) badRequest(c *gin.Context, message string) {
	s.writeProblem(c, http.StatusBadRequest, message)
}

// fail maps err to a problem response. Client errors carry their message;
// server errors carry the error chain only in development.
func (s *Server) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	logger := common.LoggerFromContext(c.Request.Context(), s.logger)

	if status < http.StatusInternalServerError && status != 499 {
		var appErr *common.AppError
		msg := err.Error()
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		s.writeProblem(c, status, msg)
		return
	}

	logger.Error("http.request_failed", "status", status, "error", err)
	detail := ""
	if s.development {
		detail = err.Error()
	}
	s.writeProblem(c, status, detail)
}

func (s *Server) writeProblem(c *gin.Context, status int, detail string) {
	title := http.StatusText(status)
	if status >= http.StatusInternalServerError {
		title = serverErrorTitle
	}
	if title == "" {
		title = "Client Closed Request"
	}
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	c.Header("Content-Type", contentTypeProblem)
	c.AbortWithStatusJSON(status, Problem{Type: typ, Title: title, Status: status, Detail: detail})
}
