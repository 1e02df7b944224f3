package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocketManager struct {
	clients map[*websocket.Conn]bool
	lock    sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func Upgrader() *websocket.Upgrader {
	return &upgrader
}

var Manager = &WebSocketManager{
	clients: make(map[*websocket.Conn]bool),
}

func (m *WebSocketManager) AddClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[conn] = true
}

func (m *WebSocketManager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.clients, conn)
}

func (m *WebSocketManager) Broadcast(event interface{}) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			go m.RemoveClient(client)
		}
	}
}

// ConversationPayload mirrors one event state transition for dashboards
// watching the live feed.
type ConversationPayload struct {
	EventID   string `json:"eventId"`
	ContactID string `json:"contactId"`
	Direction string `json:"direction"`
	Intent    string `json:"intent"`
	Status    string `json:"status"`
	Summary   string `json:"summary"`
	At        string `json:"at"`
}

type ConversationEvent struct {
	Type    string              `json:"type"`
	Payload ConversationPayload `json:"payload"`
}

func SendConversationEvent(eventID, contactID, direction, intent, status, summary string) {
	event := ConversationEvent{
		Type: "conversation",
		Payload: ConversationPayload{
			EventID:   eventID,
			ContactID: contactID,
			Direction: direction,
			Intent:    intent,
			Status:    status,
			Summary:   summary,
			At:        time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	Manager.Broadcast(event)
}
