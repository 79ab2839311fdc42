package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/realtime"
)

const wsReadTimeout = 90 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomFrame struct {
	RoomID string `json:"roomId"`
}

type chatFrame struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

type chatEvent struct {
	RoomID   string    `json:"roomId"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName,omitempty"`
	Text     string    `json:"text,omitempty"`
	At       time.Time `json:"at"`
}

// WS upgrades the request to a websocket and pumps inbound frames into the
// hub until the client disconnects. One active socket per user; a reconnect
// replaces the previous one.
func (h *handler) WS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := auth.GetSession(r)
	if !ok {
		h.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade websocket", slog.Any("err", err))
		return
	}

	conn := realtime.NewConnection(session.UserID, ws)
	h.Hub.Attach(conn)
	defer h.Hub.Detach(conn)

	_ = ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				slog.DebugContext(ctx, "Websocket read failed", slog.String("user_id", session.UserID), slog.Any("err", err))
			}
			return
		}

		var frame inboundFrame
		if err = json.Unmarshal(data, &frame); err != nil {
			continue
		}

		switch frame.Event {
		case "joinGroup":
			var join roomFrame
			if err = json.Unmarshal(frame.Data, &join); err != nil || join.RoomID == "" {
				continue
			}
			h.Hub.Join(join.RoomID, conn)
		case "leaveGroup":
			var leave roomFrame
			if err = json.Unmarshal(frame.Data, &leave); err != nil || leave.RoomID == "" {
				continue
			}
			h.Hub.Leave(leave.RoomID, conn)
		case realtime.EventChatMessage:
			var chat chatFrame
			if err = json.Unmarshal(frame.Data, &chat); err != nil || chat.RoomID == "" || chat.Text == "" {
				continue
			}
			h.Hub.Broadcast(chat.RoomID, realtime.EventChatMessage, chatEvent{
				RoomID:   chat.RoomID,
				UserID:   session.UserID,
				UserName: session.UserName,
				Text:     chat.Text,
				At:       time.Now(),
			}, "")
		case realtime.EventTyping:
			var typing roomFrame
			if err = json.Unmarshal(frame.Data, &typing); err != nil || typing.RoomID == "" {
				continue
			}
			h.Hub.Broadcast(typing.RoomID, realtime.EventTyping, chatEvent{
				RoomID: typing.RoomID,
				UserID: session.UserID,
				At:     time.Now(),
			}, session.UserID)
		}
	}
}
