// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	screenlore "github.com/screenlore/go-screenlore"
	"github.com/screenlore/go-screenlore/pkg/server/dto"
	"github.com/screenlore/go-screenlore/pkg/types"
)

// QueryHandler handles question-answering requests.
type QueryHandler struct {
	svc screenlore.Service
	log *slog.Logger
}

// NewQueryHandler creates a query handler.
func NewQueryHandler(svc screenlore.Service, log *slog.Logger) *QueryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &QueryHandler{svc: svc, log: log}
}

// bind decodes and validates the request body, writing the 400 response
// itself on failure. preferred_mode is checked against the closed
// request-mode set here so malformed requests never reach the service.
func (h *QueryHandler) bind(c *gin.Context) (dto.QueryRequest, bool) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return req, false
	}
	if !types.IsRequestMode(types.Mode(req.PreferredMode)) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: fmt.Sprintf("preferred_mode %q is not a recognized mode", req.PreferredMode),
		})
		return req, false
	}
	return req, true
}

// Query handles POST /api/query.
func (h *QueryHandler) Query(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	resp, err := h.svc.Answer(c.Request.Context(), req.ToCore())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Baseline handles POST /api/query/baseline. It always forces the
// lexical baseline and omits the comparison field.
func (h *QueryHandler) Baseline(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	resp, err := h.svc.BaselineAnswer(c.Request.Context(), req.ToCore())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BaselineResponse{
		Question: resp.Question,
		Answer:   resp.Answer,
	})
}

// Reload handles POST /admin/reload: it invalidates the memoized store
// snapshot and mention lexicon so the next request reloads artifacts.
func (h *QueryHandler) Reload(c *gin.Context) {
	h.svc.Reload()
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

func (h *QueryHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, screenlore.ErrEmptyQuestion), errors.Is(err, screenlore.ErrInvalidMode):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, screenlore.ErrContractViolation):
		h.log.Error("answer contract violation", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_fault",
			Message: "the constructed answer failed contract validation",
		})
	default:
		h.log.Error("query failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "unexpected failure answering the question",
		})
	}
}
