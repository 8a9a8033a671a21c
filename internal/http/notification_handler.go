package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/vacation-approval/internal/application"
)

type notificationService interface {
	Inbox(ctx context.Context, principal application.Principal) (application.Inbox, error)
	UnreadCount(ctx context.Context, principal application.Principal) (int, error)
	MarkAllRead(ctx context.Context, principal application.Principal) error
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) error
}

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	service   notificationService
	responder responder
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, responder: newResponder(logger)}
}

// Inbox lists notifications newest first and marks them read.
func (h *NotificationHandler) Inbox(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	inbox, err := h.service.Inbox(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	out := inboxDTO{Unread: inbox.Unread, Notifications: make([]notificationDTO, len(inbox.Notifications))}
	for i, n := range inbox.Notifications {
		out.Notifications[i] = notificationDTO{
			ID:        n.ID,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	h.responder.success(c, http.StatusOK, "", out)
}

// UnreadCount reports the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), p)
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "", gin.H{"unread": count})
}

// MarkRead marks one notification read, or all of them when no id is given.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := principal(c, h.responder)
	if !ok {
		return
	}
	var req markReadRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			h.responder.fail(c, err)
			return
		}
	}

	var err error
	if id := strings.TrimSpace(req.ID); id != "" {
		err = h.service.MarkRead(c.Request.Context(), p, id)
	} else {
		err = h.service.MarkAllRead(c.Request.Context(), p)
	}
	if err != nil {
		h.responder.fail(c, err)
		return
	}
	h.responder.success(c, http.StatusOK, "notifications marked read", nil)
}

type markReadRequest struct {
	ID string `json:"id"`
}

type notificationDTO struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type inboxDTO struct {
	Notifications []notificationDTO `json:"notifications"`
	Unread        int               `json:"unread"`
}
