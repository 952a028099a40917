package messaging

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

type wsEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// hub fans events out to everyone watching one order thread.
type hub struct {
	orderID string
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

var (
	hubsMu sync.Mutex
	hubs   = make(map[string]*hub)
)

func getHub(orderID string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[orderID]; ok {
		return h
	}
	h := &hub{orderID: orderID, clients: make(map[*websocket.Conn]bool)}
	hubs[orderID] = h
	return h
}

func (h *hub) broadcast(evt wsEvent) {
	payload, _ := json.Marshal(evt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// OrderWS - realtime updates for one order thread. Server push only;
// client frames are read and discarded to detect disconnects.
// GET /orders/:id/ws
func OrderWS(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	orderID := c.Param("id")
	if _, err := threadParties(c.Request().Context(), orderID, caller.ID); err != nil {
		return fault.Respond(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h := getHub(orderID)
	h.register(ws)
	h.broadcast(wsEvent{Type: "presence_join", Data: echo.Map{"user_id": caller.ID}})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.unregister(ws)
			_ = ws.Close()
			h.broadcast(wsEvent{Type: "presence_leave", Data: echo.Map{"user_id": caller.ID}})
			break
		}
	}
	return nil
}

// BroadcastNewMessage publishes a new message event to the order hub.
func BroadcastNewMessage(orderID string, message any) {
	getHub(orderID).broadcast(wsEvent{Type: "message_new", Data: message})
}

// BroadcastMessageRead publishes a read receipt to the order hub.
func BroadcastMessageRead(orderID string, payload any) {
	getHub(orderID).broadcast(wsEvent{Type: "message_read", Data: payload})
}
