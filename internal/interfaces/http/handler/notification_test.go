package handler

import (
	"net/http"
	"testing"

	notificationapp "github.com/arahumroh/backend/internal/application/notification"
	"github.com/arahumroh/backend/internal/domain/notification"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupInboxRouter(accountID uuid.UUID) (*gin.Engine, *MockNotificationInbox) {
	svc := new(MockNotificationInbox)
	h := NewInboxHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1/notifications", authenticate(accountID, "", ""))
	group.GET("", h.List)
	group.PATCH("/:id/read", h.MarkRead)
	return router, svc
}

func TestInboxHandler_List(t *testing.T) {
	accountID := uuid.New()
	router, svc := setupInboxRouter(accountID)

	items := []notificationapp.NotificationResponse{{ID: uuid.New(), Category: "payment", Title: "Pembayaran berhasil"}}
	svc.On("List", mock.Anything, accountID, notificationapp.ListNotificationsQuery{Page: 1, PageSize: 10, UnreadOnly: true}).
		Return(shared.NewPaginated(items, 1, 1, 10), nil)

	rec := performRequest(router, http.MethodGet, "/api/v1/notifications?page=1&page_size=10&unread_only=true", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResponse(t, rec).Data, 1)
	svc.AssertExpectations(t)
}

func TestInboxHandler_MarkRead(t *testing.T) {
	accountID := uuid.New()
	id := uuid.New()
	router, svc := setupInboxRouter(accountID)
	svc.On("MarkRead", mock.Anything, accountID, id).Return(nil)

	rec := performRequest(router, http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestInboxHandler_MarkReadErrors(t *testing.T) {
	accountID := uuid.New()
	router, svc := setupInboxRouter(accountID)
	missing := uuid.New()
	svc.On("MarkRead", mock.Anything, accountID, missing).Return(notification.ErrNotificationNotFound)

	rec := performRequest(router, http.MethodPatch, "/api/v1/notifications/not-a-uuid/read", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, rec).Error.Code)

	rec = performRequest(router, http.MethodPatch, "/api/v1/notifications/"+missing.String()+"/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOTIFICATION_NOT_FOUND", decodeResponse(t, rec).Error.Code)
}
