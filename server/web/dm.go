package web

import (
	"encoding/json"
	"net/http"

	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/database"
	"github.com/wego-social/wego-tools/server/dm"
	"github.com/wego-social/wego-tools/server/realtime"
)

// dmStore returns the direct-message store bound to the request's session.
// Stores are per session, so two logins of the same user do not share state.
func (h *handler) dmStore(w http.ResponseWriter, r *http.Request) (*dm.Store, database.Session, bool) {
	session, ok := auth.GetSession(r)
	if !ok {
		h.Error(w, r, http.StatusUnauthorized, "authentication required")
		return nil, database.Session{}, false
	}
	return h.DMs.Store(session.ID, session.UserID), session, true
}

func (h *handler) DMOpen(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.dmStore(w, r)
	if !ok {
		return
	}

	var peer dm.Peer
	if err := json.NewDecoder(r.Body).Decode(&peer); err != nil {
		h.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if peer.UID == "" {
		h.Error(w, r, http.StatusBadRequest, "peer uid is required")
		return
	}

	store.Open(peer)

	h.JSON(w, r, http.StatusOK, store.Messages(peer.UID))
}

func (h *handler) DMClose(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.dmStore(w, r)
	if !ok {
		return
	}

	store.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) DMPeers(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.dmStore(w, r)
	if !ok {
		return
	}

	h.JSON(w, r, http.StatusOK, store.Peers())
}

func (h *handler) DMMessages(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.dmStore(w, r)
	if !ok {
		return
	}

	h.JSON(w, r, http.StatusOK, store.Messages(r.URL.Query().Get("peer")))
}

func (h *handler) DMSend(w http.ResponseWriter, r *http.Request) {
	store, session, ok := h.dmStore(w, r)
	if !ok {
		return
	}

	var body struct {
		To   string `json:"to"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	message, sent := store.Send(body.To, body.Text)
	if !sent {
		// Blank text or no addressable peer. Not an error, just nothing to do.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Materialize the message in the recipient's own stores, then wake any
	// live sockets.
	h.DMs.Deliver(message)
	h.Hub.NotifyUser(message.To, realtime.EventDirectMessage, message)
	h.Hub.NotifyUser(session.UserID, realtime.EventDirectMessage, message)

	h.JSON(w, r, http.StatusCreated, message)
}
