package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/service/nutrition"
)

// Gin context keys populated by the auth middleware: the caller's
// organization and which kind of credential authenticated the request.
const (
	OrgIDKey    = "org_id"
	AuthKindKey = "auth_kind"
)

// Credential kinds stored under AuthKindKey.
const (
	AuthKindSession = "session"
	AuthKindAPIKey  = "api_key"
)

// EvaluationHandler exposes the diet evaluation endpoint.
type EvaluationHandler struct {
	evaluator *nutrition.Evaluator
	logger    *zap.Logger
}

// NewEvaluationHandler constructs the HTTP handler adapter.
func NewEvaluationHandler(evaluator *nutrition.Evaluator, logger *zap.Logger) *EvaluationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationHandler{evaluator: evaluator, logger: logger}
}

// Evaluate runs the full requirement/supply/milk-support pipeline for the
// posted animal profile and diet.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req nutrition.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid evaluation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	orgID := c.GetString(OrgIDKey)

	result, err := h.evaluator.Evaluate(c.Request.Context(), orgID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
