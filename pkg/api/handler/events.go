package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/LENAX/dag-engine/pkg/core/event"
)

// EventHandler 运行事件的WebSocket推送
type EventHandler struct {
	bus      *event.Bus
	upgrader websocket.Upgrader
}

// NewEventHandler 创建EventHandler
func NewEventHandler(bus *event.Bus) *EventHandler {
	return &EventHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 本服务面向内部观测，不做跨域限制
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream 把事件总线上的运行事件推送给WebSocket客户端
// GET /api/v1/events/ws
func (h *EventHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Events] websocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	events, err := h.bus.Subscribe(ctx)
	if err != nil {
		log.Printf("[Events] 订阅事件失败: %v", err)
		return
	}

	// 读协程只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
