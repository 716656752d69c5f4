package handler

import (
	notifRequest "MediLink/internal/modules/notification/application/dto/request"
	"MediLink/internal/modules/notification/application/service"
	"MediLink/pkg/back"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req notifRequest.ListNotificationsRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.ListNotifications(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req notifRequest.MarkReadRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	err := h.svc.MarkRead(c.Request.Context(), c.GetString("uuid"), req.NotificationId)
	back.Result(c, nil, err)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	err := h.svc.MarkAllRead(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, nil, err)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, gin.H{"unread": n}, err)
}

func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	data, err := h.svc.GetPreferences(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req notifRequest.UpdatePreferencesRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	data, err := h.svc.UpdatePreferences(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}
