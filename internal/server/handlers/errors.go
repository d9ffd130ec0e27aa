package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/service/auth"
)

// respondError translates the error taxonomy into HTTP statuses. Validation,
// not-found and domain errors surface their message; anything unexpected is
// logged with full detail and answered with a generic message so internals
// never leak.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *models.ValidationError
	var notFound *models.NotFoundError
	var domain *models.DomainError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &domain):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": domain.Error()})
	default:
		logger.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
