package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/service"
)

// ReviewHandler serves reviews nested under titles. Reads are public;
// writes require authentication, and edits are gated on authorship or a
// moderator/admin role inside the service.
type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required,gte=1,lte=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score" binding:"omitempty,gte=1,lte=10"`
}

// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviews(titleID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, newReviewResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(titleID, reviewID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newReviewResponse(review))
}

// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	review, err := h.reviewService.CreateReview(titleID, middleware.CurrentUser(c), req.Text, req.Score)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newReviewResponse(review))
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	review, err := h.reviewService.UpdateReview(titleID, reviewID, middleware.CurrentUser(c), req.Text, req.Score)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newReviewResponse(review))
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := parseIDParam(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseIDParam(c, "review_id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(titleID, reviewID, middleware.CurrentUser(c)); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
