package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/notification"
)

type notificationService interface {
	GetNotifications(ctx context.Context, clerkID string, page, pageSize int) (*notification.NotificationListResponse, error)
	UnreadCount(ctx context.Context, clerkID string) (int, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error
	MarkAllAsRead(ctx context.Context, clerkID string) error
	DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error
	RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error
	GetAchievements(ctx context.Context, clerkID string) ([]*notification.Achievement, error)
}

type NotificationHandler struct {
	notifications notificationService
	log           *logger.Logger
}

func NewNotificationHandler(notifications notificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

// GET /api/v1/notifications?page=1&page_size=20
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	resp, err := h.notifications.GetNotifications(ctx, clerkID, page, pageSize)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get notifications")
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get unread count")
		return
	}
	respondWithJSON(w, http.StatusOK, notification.UnreadCountResponse{UnreadCount: count})
}

// PUT /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.notifications.MarkAsRead(ctx, id, clerkID); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to mark notification as read")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllAsRead(ctx, clerkID); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to mark notifications as read")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "notification")
	if !ok {
		return
	}

	if err := h.notifications.DeleteNotification(ctx, id, clerkID); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to delete notification")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

// POST /api/v1/notifications/register-device
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.notifications.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to register device")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered successfully"})
}

// GET /api/v1/achievements
func (h *NotificationHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	achievements, err := h.notifications.GetAchievements(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get achievements")
		return
	}
	respondWithJSON(w, http.StatusOK, achievements)
}
