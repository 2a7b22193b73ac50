package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// CatalogUseCase is the part of the catalog service the HTTP layer needs
type CatalogUseCase interface {
	Refresh(ctx context.Context) (*domain.RefreshResult, error)
	ListGroups(ctx context.Context, filter domain.GroupFilter) ([]domain.ProductGroup, error)
	GetGroup(ctx context.Context, name string) (*domain.ProductGroup, error)
}

// Persisted table names reported when a refresh fails to write
const (
	groupsTable   = "product_groups"
	listingsTable = "products"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog CatalogUseCase
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog CatalogUseCase) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  logx.Component("http"),
	}
}

type groupsResponse struct {
	Groups []domain.ProductGroup `json:"groups"`
	Count  int                   `json:"count"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	*domain.RefreshResult
}

type refreshErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Table   string `json:"table,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mkprice-tracker",
		"version": "1.0.0",
	})
}

// ListGroups returns the grouped catalog, optionally filtered by category and name
func (h *Handler) ListGroups(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not configured"})
		return
	}

	var filter domain.GroupFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	filter.Categories = splitCategories(filter.Categories)

	groups, err := h.catalog.ListGroups(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if groups == nil {
		groups = []domain.ProductGroup{}
	}

	c.JSON(http.StatusOK, groupsResponse{Groups: groups, Count: len(groups)})
}

// GetGroup returns one group with its member listings
func (h *Handler) GetGroup(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not configured"})
		return
	}

	group, err := h.catalog.GetGroup(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Refresh runs the aggregation pipeline and replaces the persisted catalog
func (h *Handler) Refresh(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not configured"})
		return
	}

	result, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("refresh failed")
		c.JSON(http.StatusInternalServerError, refreshErrorResponse{
			Success: false,
			Error:   err.Error(),
			Table:   failedTable(err),
		})
		return
	}

	c.JSON(http.StatusOK, refreshResponse{Success: true, RefreshResult: result})
}

// respondError maps domain errors onto HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStorageUnavailable):
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("storage unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog storage unavailable"})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// failedTable names the table a persistence error came from, if any
func failedTable(err error) string {
	switch {
	case errors.Is(err, domain.ErrGroupTableWrite):
		return groupsTable
	case errors.Is(err, domain.ErrListingTableWrite):
		return listingsTable
	default:
		return ""
	}
}

// splitCategories accepts both repeated and comma-separated category params
func splitCategories(values []string) []string {
	var categories []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				categories = append(categories, part)
			}
		}
	}
	return categories
}
