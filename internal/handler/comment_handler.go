package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/service"
)

type CommentHandler struct {
	reviewService *service.ReviewService
}

func NewCommentHandler(reviewService *service.ReviewService) *CommentHandler {
	return &CommentHandler{reviewService: reviewService}
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	comments, err := h.reviewService.ListComments(titleID, reviewID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		resp = append(resp, newCommentResponse(cm))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.parseIDs(c)
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.reviewService.GetComment(titleID, reviewID, commentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := h.parseIDs(c)
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	comment, err := h.reviewService.CreateComment(titleID, reviewID, middleware.CurrentUser(c), req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.parseIDs(c)
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	comment, err := h.reviewService.UpdateComment(titleID, reviewID, commentID, middleware.CurrentUser(c), req.Text)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.parseIDs(c)
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteComment(titleID, reviewID, commentID, middleware.CurrentUser(c)); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) parseIDs(c *gin.Context) (titleID, reviewID uint, ok bool) {
	titleID, ok = parseIDParam(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = parseIDParam(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}
