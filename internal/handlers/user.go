package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ripplehq/ripple/backend/internal/cache"
	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/repositories"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	senderCache    *cache.SenderCache
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, senderCache *cache.SenderCache) *UserHandler {
	return &UserHandler{userRepository: userRepo, senderCache: senderCache}
}

// RegisterProfileRoutes registers user profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
	g.PUT("/users/me", h.UpdateMe)
	g.GET("/users/:id", h.GetUser)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// UpdateMe updates the authenticated user's profile, including the
// notification preference
func (h *UserHandler) UpdateMe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return httpError(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Biography != "" {
		user.Biography = req.Biography
	}
	if req.Location != "" {
		user.Location = req.Location
	}
	if req.Link != "" {
		user.Link = req.Link
	}
	if req.Image != "" {
		user.Image = req.Image
	}
	if req.Banner != "" {
		user.Banner = req.Banner
	}
	if req.NotificationsEnabled != nil {
		user.NotificationsEnabled = *req.NotificationsEnabled
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Display fields changed; future enrichment snapshots must not serve
	// the stale profile.
	h.senderCache.Invalidate(c.Request().Context(), currentUserID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// GetUser returns a user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(targetID))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user.ToCompact()})
}
