package channel

import (
	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/pkg/ws"
	"context"
)

// inAppSender 站内渠道：通过 WebSocket Hub 推给用户当前在线的连接。
// 用户不在线不算失败，通知记录本身已落库，上线后走列表接口拉取。
type inAppSender struct {
	hub *ws.Hub
}

func NewInAppSender(hub *ws.Hub) Sender {
	return &inAppSender{hub: hub}
}

func (s *inAppSender) Name() string {
	return entity.ChannelInApp
}

func (s *inAppSender) Send(ctx context.Context, userID, title, body string, payload entity.Payload) error {
	if s.hub == nil {
		return nil
	}
	return s.hub.SendJSON(userID, map[string]interface{}{
		"type":    "notification",
		"title":   title,
		"body":    body,
		"payload": payload,
	})
}
