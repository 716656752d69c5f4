package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/pkg/broadcast"
	"MediLink/pkg/util/myjwt"
	"MediLink/pkg/ws"
	"MediLink/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// WsHandler 处方状态实时订阅。
// 浏览器原生 WebSocket 不支持自定义 Header，Token 走 URL 参数，
// 这条路由不挂 JWT 中间件，握手时手动校验。
type WsHandler struct {
	hub         *ws.Hub
	broadcaster *broadcast.Broadcaster
	rxRepo      repository.PrescriptionRepository
}

func NewWsHandler(hub *ws.Hub, broadcaster *broadcast.Broadcaster, rxRepo repository.PrescriptionRepository) *WsHandler {
	return &WsHandler{
		hub:         hub,
		broadcaster: broadcaster,
		rxRepo:      rxRepo,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Subscribe 建立某张处方的状态订阅连接，每次流转推送一条事件
func (h *WsHandler) Subscribe(c *gin.Context) {
	prescriptionID := c.Query("prescription_id")
	token := c.Query("token")

	if prescriptionID == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	claims, err := myjwt.ParseToken(token)
	if err != nil || claims == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	rx, err := h.rxRepo.GetByUUID(c.Request.Context(), prescriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		zlog.Error(err.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	// 只有本人或药师可以订阅
	if rx.UserId != claims.Uuid && claims.Role != "pharmacist" && claims.Role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Error(err.Error())
		return
	}

	client := ws.NewClient(prescriptionID, conn)
	h.hub.Register(client)

	// 每条连接一份订阅，事件进入该连接自己的发送缓冲
	unsubscribe := h.broadcaster.Subscribe(prescriptionID, func(ev broadcast.Event) {
		b, err := json.Marshal(map[string]interface{}{
			"type":            "prescription.status_changed",
			"prescription_id": ev.PrescriptionID,
			"old_status":      ev.OldStatus,
			"new_status":      ev.NewStatus,
			"actor_id":        ev.ActorID,
			"notes":           ev.Notes,
			"occurred_at":     ev.OccurredAt.Format(time.RFC3339),
		})
		if err != nil {
			return
		}
		client.Enqueue(b)
	})
	defer func() {
		unsubscribe()
		h.hub.Unregister(client)
	}()

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go client.WritePump()

	// 订阅是单向推送，读循环只用来感知断连和心跳
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}
