package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewhub/reviewhub/internal/middleware"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/permissions"
	"github.com/reviewhub/reviewhub/internal/service"
)

// UserHandler serves the admin user endpoints plus the "me" sub-resource,
// which any authenticated caller may use on their own record.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	Username  string      `json:"username" binding:"required,max=150,username"`
	Email     string      `json:"email" binding:"required,email,max=254"`
	FirstName string      `json:"first_name" binding:"max=150"`
	LastName  string      `json:"last_name" binding:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

type UpdateUserRequest struct {
	Username  *string      `json:"username" binding:"omitempty,max=150,username"`
	Email     *string      `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	if !permissions.CanAdministerUsers(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	users, err := h.userService.List()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	if !permissions.CanAdministerUsers(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	user, err := h.userService.Create(service.CreateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	if !permissions.CanAdministerUsers(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	user, err := h.userService.Get(c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	if !permissions.CanAdministerUsers(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	user, err := h.userService.Get(c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	updated, err := h.userService.Update(user, updateParams(req), true)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(updated))
}

// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if !permissions.CanAdministerUsers(middleware.CurrentUser(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	if err := h.userService.Delete(c.Param("username")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(middleware.CurrentUser(c)))
}

// PATCH /api/v1/users/me
// The role field is read-only for non-admin self-edits and silently ignored.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorPayload(err))
		return
	}

	updated, err := h.userService.Update(user, updateParams(req), user.IsAdmin())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(updated))
}

func updateParams(req UpdateUserRequest) service.UpdateUserParams {
	return service.UpdateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
}
