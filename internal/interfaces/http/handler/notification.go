package handler

import (
	"context"
	"net/http"

	notificationapp "github.com/arahumroh/backend/internal/application/notification"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationInbox lists and acknowledges an account's notifications
type NotificationInbox interface {
	List(ctx context.Context, accountID uuid.UUID, q notificationapp.ListNotificationsQuery) (shared.Paginated[notificationapp.NotificationResponse], error)
	MarkRead(ctx context.Context, accountID, id uuid.UUID) error
}

// InboxHandler handles in-app notification endpoints
type InboxHandler struct {
	BaseHandler
	inbox NotificationInbox
}

// NewInboxHandler creates a new InboxHandler
func NewInboxHandler(inbox NotificationInbox) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// List godoc
//
//	@ID				listNotifications
//	@Summary		List own notifications
//	@Tags			notifications
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			unread_only	query		bool	false	"Only unread notifications"
//	@Success		200			{object}	APIResponse[[]notificationapp.NotificationResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/notifications [get]
func (h *InboxHandler) List(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var q notificationapp.ListNotificationsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.inbox.List(c.Request.Context(), accountID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// MarkRead godoc
//
//	@ID				markNotificationRead
//	@Summary		Mark a notification read
//	@Description	Marking an already read notification succeeds without changing read_at
//	@Tags			notifications
//	@Param			id	path	string	true	"Notification ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/notifications/{id}/read [patch]
func (h *InboxHandler) MarkRead(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid notification ID")
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), accountID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
