package handler

import (
	"errors"
	"net/http"

	"testops/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope is the uniform response body. StatusCode carries the coarse
// Success/Error label, Status repeats the HTTP status numerically.
type Envelope struct {
	StatusCode string `json:"status_code"`
	Status     int    `json:"status"`
	Message    string `json:"message"`
	Result     any    `json:"result"`
}

func respond(c *gin.Context, status int, message string, result any) {
	label := "Success"
	if status >= http.StatusBadRequest {
		label = "Error"
	}
	c.JSON(status, Envelope{
		StatusCode: label,
		Status:     status,
		Message:    message,
		Result:     result,
	})
}

// respondError maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with the error string as message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrConflict):
		respond(c, http.StatusConflict, err.Error(), nil)
	default:
		respond(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

func respondBindError(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, err.Error(), nil)
}

// parseID parses a UUID from a request field, reporting the field name on
// failure so the client knows which identifier was malformed.
func parseID(c *gin.Context, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respond(c, http.StatusBadRequest, "invalid "+field, nil)
		return uuid.Nil, false
	}
	return id, true
}

// queryID pulls a required UUID from the query string.
func queryID(c *gin.Context, field string) (uuid.UUID, bool) {
	raw := c.Query(field)
	if raw == "" {
		respond(c, http.StatusBadRequest, field+" is required", nil)
		return uuid.Nil, false
	}
	return parseID(c, field, raw)
}
