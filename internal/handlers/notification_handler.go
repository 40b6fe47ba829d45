package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ripplehq/ripple/backend/internal/models"
	"github.com/ripplehq/ripple/backend/internal/notifications"
	"github.com/ripplehq/ripple/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	notificationManager    *notifications.Manager
	reconciler             *notifications.Reconciler
	enricher               *notifications.Enricher
	testEnabled            bool
}

// NewNotificationHandler creates a new NotificationHandler. testEnabled
// exposes the self-test endpoint and should be off in production.
func NewNotificationHandler(
	notificationRepo repositories.NotificationRepository,
	manager *notifications.Manager,
	reconciler *notifications.Reconciler,
	enricher *notifications.Enricher,
	testEnabled bool,
) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notificationRepo,
		notificationManager:    manager,
		reconciler:             reconciler,
		enricher:               enricher,
		testEnabled:            testEnabled,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.POST("/notifications/test", h.SendTestNotification)
}

// GetNotifications returns the authenticated user's notifications, newest
// first, with sender snapshots attached
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	records, err := h.notificationRepository.GetByReceiver(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": h.enricher.EnrichAll(ctx, records)},
	})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.CountUnread(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notification, err := h.reconciler.MarkAsRead(c.Request().Context(), c.Param("id"), currentUserID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": notification})
}

// DeleteNotification deletes one of the user's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.reconciler.Delete(c.Request().Context(), c.Param("id"), currentUserID); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SendTestNotification sends the user a notification from themselves so a
// client can verify its realtime pipeline end to end
func (h *NotificationHandler) SendTestNotification(c echo.Context) error {
	if !h.testEnabled {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notification, err := h.notificationManager.SendNotification(c.Request().Context(), notifications.SendInput{
		Sender:   currentUserID,
		Receiver: currentUserID,
		Kind:     models.KindTest,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": notification})
}
