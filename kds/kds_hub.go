package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mesalink/mesalink/models"
)

// Event types pushed to kitchen display clients. The websocket feed is
// a hint to refresh sooner; the board poller remains the source of
// truth and all transition legality is enforced server-side.
const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status"
	EventTableUpdate  = "table_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type hub struct {
	clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
}

var kdsHub = hub{
	clients: make(map[*websocket.Conn]struct{}),
}

func RegisterClient(conn *websocket.Conn) {
	kdsHub.mu.Lock()
	defer kdsHub.mu.Unlock()
	kdsHub.clients[conn] = struct{}{}
}

func UnregisterClient(conn *websocket.Conn) {
	kdsHub.mu.Lock()
	defer kdsHub.mu.Unlock()
	delete(kdsHub.clients, conn)
	conn.Close()
}

// BroadcastOrderCreated announces a freshly submitted order.
func BroadcastOrderCreated(order models.Order) {
	broadcast(Message{Event: EventOrderCreated, Data: order})
}

// BroadcastOrderStatus announces a status transition.
func BroadcastOrderStatus(orderID string, status models.OrderStatus) {
	broadcast(Message{
		Event: EventOrderStatus,
		Data: map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		},
	})
}

// BroadcastTableUpdate announces table provisioning changes.
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	kdsHub.mu.Lock()
	defer kdsHub.mu.Unlock()
	for conn := range kdsHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(kdsHub.clients, conn)
			conn.Close()
		}
	}
}
