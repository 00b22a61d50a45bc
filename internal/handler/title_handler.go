package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/permissions"
	"github.com/reviewhub/reviewhub/internal/repository"
	"github.com/reviewhub/reviewhub/internal/service"
)

type TitleHandler struct {
	titleService *service.TitleService
}

func NewTitleHandler(titleService *service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required,slug"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,slug"`
}

type UpdateTitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,slug"`
	Genre       []string `json:"genre" binding:"omitempty,dive,slug"`
}

// GET /api/v1/titles
// Optional filters: ?category=<slug>&genre=<slug>&year=<n>&name=<substring>
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"year": "must be an integer"}})
			return
		}
		filter.Year = &year
	}

	titles, err := h.titleService.List(filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]titleResponse, 0, len(titles))
	for _, t := range titles {
		resp = append(resp, newTitleResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}

	title, err := h.titleService.Get(id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTitleResponse(title))
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	title, err := h.titleService.Create(service.CreateTitleParams{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		h.writeTitleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTitleResponse(title))
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	id, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	title, err := h.titleService.Update(id, service.UpdateTitleParams{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		h.writeTitleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTitleResponse(title))
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	if !permissions.CanMutateCatalog(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	id, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}

	if err := h.titleService.Delete(id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MethodNotAllowed rejects full replacement; titles only support partial
// updates. PUT /api/v1/titles/:title_id → 405 for every caller.
func (h *TitleHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed; use PATCH"})
}

// writeTitleError treats dangling category/genre references in a write
// body as validation failures rather than missing resources.
func (h *TitleHandler) writeTitleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"category": "unknown category slug"}})
	case errors.Is(err, service.ErrGenreNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"genre": "unknown genre slug"}})
	case errors.Is(err, service.ErrYearInFuture):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"year": err.Error()}})
	case errors.Is(err, service.ErrEmptyGenres):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"genre": err.Error()}})
	default:
		writeServiceError(c, err)
	}
}
