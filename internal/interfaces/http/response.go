package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, money.ErrValidation),
		errors.Is(err, workflow.ErrInvalidRole),
		errors.Is(err, workflow.ErrInvalidDecision):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, port.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and hides their detail from the client
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		fail(c, status, "internal server error")
		return
	}
	fail(c, status, err.Error())
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// AmountText accepts an amount as a JSON string ("UGX 2,000,000") or a
// JSON number and keeps it as text for the money parser.
type AmountText string

// UnmarshalJSON implements json.Unmarshaler
func (a *AmountText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AmountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("amount must be a string or a number")
	}
	*a = AmountText(n.String())
	return nil
}

// Page represents limit/offset query parameters
type Page struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
