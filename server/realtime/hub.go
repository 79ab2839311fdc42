package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event names on the wire, matching the WeGo client contract.
const (
	EventActivityReview    = "activity:review"
	EventGroupReview       = "group:review"
	EventUserStatusChanged = "userStatusChanged"
	EventChatMessage       = "chatMessage"
	EventTyping            = "typing"
	EventDirectMessage     = "dm:message"
)

// Envelope is the frame exchanged with clients.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

func NewHub() *Hub {
	return &Hub{
		connections:     make(map[string]*Connection),
		userConnections: make(map[string]string),
		rooms:           make(map[string]map[string]*Connection),
		connectionRooms: make(map[string]map[string]struct{}),
	}
}

// Hub tracks websocket connections and the activity rooms they joined, and
// fans review/chat/status events out to room members. One active connection
// per user; a reconnect replaces the previous socket.
type Hub struct {
	mu              sync.RWMutex
	connections     map[string]*Connection
	userConnections map[string]string
	rooms           map[string]map[string]*Connection
	connectionRooms map[string]map[string]struct{}
}

// Attach registers a connection and announces the user as online.
func (h *Hub) Attach(conn *Connection) {
	var previous *Connection

	h.mu.Lock()
	if existingID, ok := h.userConnections[conn.UserID]; ok {
		if existing := h.connections[existingID]; existing != nil {
			previous = existing
			h.detachLocked(existingID)
		}
	}
	h.connections[conn.ID] = conn
	h.userConnections[conn.UserID] = conn.ID
	h.connectionRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}

	h.BroadcastStatus(conn.UserID, true)
}

// Detach removes a connection and announces the user as offline if this was
// their active socket.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	_, tracked := h.connections[conn.ID]
	h.detachLocked(conn.ID)
	h.mu.Unlock()

	if tracked {
		h.BroadcastStatus(conn.UserID, false)
	}
}

// Join subscribes the connection to an activity room.
func (h *Hub) Join(roomID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[conn.ID]; !ok {
		return
	}

	room := h.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[roomID] = room
	}
	room[conn.ID] = conn
	h.connectionRooms[conn.ID][roomID] = struct{}{}
}

// Leave unsubscribes the connection from an activity room.
func (h *Hub) Leave(roomID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomID, conn.ID)
}

// Broadcast delivers an event to every member of the room, optionally
// excluding the originating user.
func (h *Hub) Broadcast(roomID string, event string, data any, excludeUserID string) {
	payload, err := NewEnvelope(event, data)
	if err != nil {
		slog.Error("failed to encode realtime event", slog.String("event", event), slog.Any("err", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.rooms[roomID] {
		if excludeUserID != "" && conn.UserID == excludeUserID {
			continue
		}
		_ = conn.Send(payload)
	}
}

// NotifyUser delivers an event to the user's active connection, if any.
func (h *Hub) NotifyUser(userID string, event string, data any) bool {
	payload, err := NewEnvelope(event, data)
	if err != nil {
		slog.Error("failed to encode realtime event", slog.String("event", event), slog.Any("err", err))
		return false
	}

	h.mu.RLock()
	connectionID, ok := h.userConnections[userID]
	conn := h.connections[connectionID]
	h.mu.RUnlock()

	if !ok || conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// BroadcastStatus announces a user's online state to everyone connected.
func (h *Hub) BroadcastStatus(userID string, online bool) {
	payload, err := NewEnvelope(EventUserStatusChanged, map[string]any{
		"user":   userID,
		"online": online,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections {
		if conn.UserID == userID {
			continue
		}
		_ = conn.Send(payload)
	}
}

// Close terminates all connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	connections := make([]*Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		connections = append(connections, conn)
	}
	h.connections = make(map[string]*Connection)
	h.userConnections = make(map[string]string)
	h.rooms = make(map[string]map[string]*Connection)
	h.connectionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range connections {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(connectionID string) {
	conn, ok := h.connections[connectionID]
	if !ok {
		return
	}
	delete(h.connections, connectionID)

	if current, ok := h.userConnections[conn.UserID]; ok && current == connectionID {
		delete(h.userConnections, conn.UserID)
	}

	for roomID := range h.connectionRooms[connectionID] {
		h.leaveLocked(roomID, connectionID)
	}
	delete(h.connectionRooms, connectionID)
}

func (h *Hub) leaveLocked(roomID string, connectionID string) {
	room := h.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, connectionID)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
	if memberships, ok := h.connectionRooms[connectionID]; ok {
		delete(memberships, roomID)
	}
}
