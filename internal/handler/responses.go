package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/service"
)

// Read shapes. Writes take slugs and plain fields; reads nest the resolved
// category/genre objects and expose derived data (rating, author username).

type slugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type titleResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Category    *slugResponse  `json:"category"`
	Genre       []slugResponse `json:"genre"`
}

type reviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type commentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type userResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func newTitleResponse(t *models.Title) titleResponse {
	resp := titleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]slugResponse, 0, len(t.Genres)),
	}
	if t.Category != nil {
		resp.Category = &slugResponse{Name: t.Category.Name, Slug: t.Category.Slug}
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, slugResponse{Name: g.Name, Slug: g.Slug})
	}
	return resp
}

func newReviewResponse(r *models.Review) reviewResponse {
	return reviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Score:   r.Score,
		Author:  r.Author.Username,
		PubDate: r.PubDate,
	}
}

func newCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// parseIDParam parses a numeric path parameter. A malformed id means the
// resource cannot exist, so it maps to 404.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return 0, false
	}
	return uint(id), true
}

// writeServiceError maps service sentinels to HTTP status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTitleNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrGenreNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"username": err.Error()}})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"email": err.Error()}})
	case errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrYearInFuture),
		errors.Is(err, service.ErrEmptyGenres),
		errors.Is(err, service.ErrSlugOrNameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
