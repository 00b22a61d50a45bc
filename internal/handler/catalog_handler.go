package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/permissions"
	"github.com/reviewhub/reviewhub/internal/service"
)

// CatalogHandler serves categories and genres: public listing, admin-only
// create and delete, keyed by slug.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type CreateSlugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Query("search"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]slugResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, slugResponse{Name: cat.Name, Slug: cat.Slug})
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req CreateSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	category, err := h.catalogService.CreateCategory(req.Name, req.Slug)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slugResponse{Name: category.Name, Slug: category.Slug})
}

// DELETE /api/v1/categories/:slug
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	if err := h.catalogService.DeleteCategory(c.Param("slug")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/v1/genres
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	genres, err := h.catalogService.ListGenres(c.Query("search"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]slugResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, slugResponse{Name: g.Name, Slug: g.Slug})
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/genres
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req CreateSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	genre, err := h.catalogService.CreateGenre(req.Name, req.Slug)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slugResponse{Name: genre.Name, Slug: genre.Slug})
}

// DELETE /api/v1/genres/:slug
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	if err := h.catalogService.DeleteGenre(c.Param("slug")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
