package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/repository/mongodb"
	"github.com/mamadbah2/dairyfeed/internal/service/feeds"
)

// FeedHandler exposes the standard catalog, per-tenant custom feeds and the
// bulk import trigger.
type FeedHandler struct {
	repo        mongodb.FeedRepository
	importer    *feeds.Importer
	importRange string
	logger      *zap.Logger
}

// NewFeedHandler constructs the HTTP handler adapter.
func NewFeedHandler(repo mongodb.FeedRepository, importer *feeds.Importer, importRange string, logger *zap.Logger) *FeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedHandler{repo: repo, importer: importer, importRange: importRange, logger: logger}
}

// ListStandard returns the shared feed catalog.
func (h *FeedHandler) ListStandard(c *gin.Context) {
	docs, err := h.repo.ListStandard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": docs})
}

// GetStandard returns one standard feed by identifier.
func (h *FeedHandler) GetStandard(c *gin.Context) {
	doc, err := h.repo.GetStandard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ListCustom returns the caller organization's custom feeds.
func (h *FeedHandler) ListCustom(c *gin.Context) {
	docs, err := h.repo.ListCustom(c.Request.Context(), c.GetString(OrgIDKey))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": docs})
}

// GetCustom returns one custom feed, scoped to the caller organization.
func (h *FeedHandler) GetCustom(c *gin.Context) {
	doc, err := h.repo.GetCustom(c.Request.Context(), c.GetString(OrgIDKey), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// CreateCustom stores a new custom feed for the caller organization.
func (h *FeedHandler) CreateCustom(c *gin.Context) {
	var doc models.RawFeedDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.logger.Warn("invalid custom feed payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if doc.Code == "" || doc.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and name are required"})
		return
	}

	doc.ID = uuid.NewString()
	doc.OrgID = c.GetString(OrgIDKey)

	if err := h.repo.CreateCustom(c.Request.Context(), doc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UpdateCustom replaces an existing custom feed.
func (h *FeedHandler) UpdateCustom(c *gin.Context) {
	var doc models.RawFeedDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.logger.Warn("invalid custom feed payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc.ID = c.Param("id")
	doc.OrgID = c.GetString(OrgIDKey)

	if err := h.repo.UpdateCustom(c.Request.Context(), doc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteCustom removes a custom feed.
func (h *FeedHandler) DeleteCustom(c *gin.Context) {
	if err := h.repo.DeleteCustom(c.Request.Context(), c.GetString(OrgIDKey), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import triggers a bulk feed import from the configured spreadsheet range
// into the caller organization's custom feeds.
func (h *FeedHandler) Import(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bulk import is not configured"})
		return
	}

	log, err := h.importer.Run(c.Request.Context(), c.GetString(OrgIDKey), h.importRange)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, log)
}
