package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/utils"
)

const msgParseRequired = "Either 'id' for lookup or 'input_text' for AI parsing is required"

// ParseRequest accepts both camelCase and snake_case for the input text.
type ParseRequest struct {
	ID             string `json:"id"`
	InputText      string `json:"inputText"`
	InputTextSnake string `json:"input_text"`
}

func (r ParseRequest) text() string {
	return utils.FirstNonEmpty(r.InputText, r.InputTextSnake)
}

// Parse handles POST /parse: id lookup first, then text extraction.
func (s *Server) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "request body must be a JSON object")
		return
	}
	text := req.text()

	ctx := c.Request.Context()
	logger := common.LoggerFromContext(ctx, s.logger)

	if id := strings.TrimSpace(req.ID); s.lookupable(id) {
		if p, ok := s.lookup.GetPersonByID(id); ok {
			logger.Info("parse.lookup_hit", "id", id)
			c.JSON(http.StatusOK, gin.H{"source": constants.SourceIDLookup, "data": p})
			return
		}
		logger.Info("parse.lookup_miss", "id", id)
	}

	if strings.TrimSpace(text) == "" {
		s.badRequest(c, msgParseRequired)
		return
	}
	if err := validateText("input_text", text); err != nil {
		s.fail(c, err)
		return
	}

	p, err := s.text.ParseText(ctx, text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": constants.SourceText, "data": p})
}

// lookupable reports whether id has the shape of a lookup key. Anything else
// is treated as a miss.
func (s *Server) lookupable(id string) bool {
	if id == "" || s.lookup == nil {
		return false
	}
	v := common.NewValidator().Field("id", id, common.MaxLength(maxIDLength), common.LookupID)
	return !v.HasErrors()
}

// validateText runs only once the text source is actually used, so a bad
// field never masks a higher-priority source.
func validateText(field, text string) error {
	return common.ValidateAndReturnError(
		common.NewValidator().Field(field, text, common.Required, common.MaxLength(maxInputTextLength)),
	)
}
