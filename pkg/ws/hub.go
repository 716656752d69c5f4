package ws

import (
	"encoding/json"
	"sync"
	"time"

	"MediLink/pkg/zlog"

	"github.com/gorilla/websocket"
)

// Hub 按 key 维护 WebSocket 客户端集合。
// key 可以是用户 ID（站内通知推送）或处方 ID（处方状态实时订阅）。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.key == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.key]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.key] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.key == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.key]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.key)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Send 向 key 下所有客户端投递。发送缓冲已满的慢客户端会被直接摘除，
// 不允许慢消费者阻塞推送方。
// 快照在读锁内完成，之后的投递不接触内部 map，
// 与并发的 Register / Unregister 互不干扰。
func (h *Hub) Send(key string, payload []byte) bool {
	if key == "" || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	set := h.clients[key]
	snapshot := make([]*Client, 0, len(set))
	for c := range set {
		if c != nil {
			snapshot = append(snapshot, c)
		}
	}
	h.mu.RUnlock()

	ok := false
	for _, c := range snapshot {
		if c.Enqueue(payload) {
			ok = true
		} else {
			h.Unregister(c)
		}
	}
	return ok
}

func (h *Hub) SendJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Send(key, b)
	return nil
}

type Client struct {
	key  string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func NewClient(key string, conn *websocket.Conn) *Client {
	return &Client{
		key:  key,
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

// Enqueue 非阻塞写入单个客户端的发送缓冲。
// 客户端已关闭或缓冲满时返回 false。
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case <-c.done:
		return false
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close 幂等。send 不关闭，避免并发投递方写已关闭 channel，
// 退出统一走 done 信号。
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zlog.Error(err.Error())
				return
			}
		}
	}
}
