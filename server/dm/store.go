package dm

import (
	"strings"
	"sync"
	"time"
)

// PairKey returns the canonical conversation key for two user ids. The
// lexicographically smaller id always comes first, so (a, b) and (b, a) share
// a single bucket no matter which side writes first.
func PairKey(a string, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// Peer is the metadata known about a conversation partner.
type Peer struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`
}

type Message struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// NewStore creates a message store owned by the session of user me.
func NewStore(me string) *Store {
	return &Store{
		me:       me,
		now:      time.Now,
		peers:    make(map[string]Peer),
		messages: make(map[string][]Message),
	}
}

// Store is a session-scoped two-party message store with a single "currently
// open peer" cursor. Messages are keyed by canonical pair, not by the open
// conversation, so sends to a peer land in the same bucket whether or not
// that peer is currently open. Nothing here is persisted; the store lives and
// dies with its session.
type Store struct {
	me  string
	now func() time.Time

	mu       sync.RWMutex
	peers    map[string]Peer
	open     string
	messages map[string][]Message
}

// Open upserts the peer into the registry and makes it the open peer. A bare
// id (Peer{UID: ...}) is enough when the metadata is already known; known
// fields are never erased by a sparser call.
func (s *Store) Open(peer Peer) {
	if peer.UID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.peers[peer.UID]
	known.UID = peer.UID
	if peer.Name != "" {
		known.Name = peer.Name
	}
	if peer.AvatarURL != "" {
		known.AvatarURL = peer.AvatarURL
	}
	s.peers[peer.UID] = known
	s.open = peer.UID
}

// Close clears the open-peer cursor. Messages are kept.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = ""
}

// OpenPeer returns the currently open peer, if any.
func (s *Store) OpenPeer() (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.open == "" {
		return Peer{}, false
	}
	return s.peers[s.open], true
}

// Peers returns all known peers.
func (s *Store) Peers() []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	peers := make([]Peer, 0, len(s.peers))
	for _, peer := range s.peers {
		peers = append(peers, peer)
	}
	return peers
}

// Messages returns the ordered message sequence for the pair (me, peerUID).
// An empty peerUID means the currently open peer. The result is never nil and
// is a copy the caller may keep.
func (s *Store) Messages(peerUID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if peerUID == "" {
		peerUID = s.open
	}
	if peerUID == "" {
		return []Message{}
	}

	bucket := s.messages[PairKey(s.me, peerUID)]
	messages := make([]Message, len(bucket))
	copy(messages, bucket)
	return messages
}

// Send appends a message to the pair bucket for peerUID. Blank or
// whitespace-only text is a no-op.
func (s *Store) Send(peerUID string, text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" || peerUID == "" {
		return Message{}, false
	}

	message := Message{
		From: s.me,
		To:   peerUID,
		Text: text,
		At:   s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := PairKey(s.me, peerUID)
	s.messages[key] = append(s.messages[key], message)

	return message, true
}

// Deliver records an inbound message from a peer, so both directions of a
// conversation accumulate in the same pair bucket. The sender becomes a known
// peer, but the open-peer cursor is left alone. Messages not addressed to the
// store's owner are dropped.
func (s *Store) Deliver(message Message) bool {
	if message.From == "" || message.To != s.me {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.peers[message.From]
	known.UID = message.From
	s.peers[message.From] = known

	key := PairKey(s.me, message.From)
	s.messages[key] = append(s.messages[key], message)

	return true
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]*Store),
	}
}

// Registry hands out one Store per session, created on first use. Stores are
// never shared across sessions and are dropped with the registry.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func (r *Registry) Store(sessionID string, me string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[sessionID]
	if !ok {
		store = NewStore(me)
		r.stores[sessionID] = store
	}
	return store
}

// Deliver fans an inbound message out to every session store owned by the
// recipient user and reports how many stores accepted it. A user who has
// never opened a session receives nothing; direct messages have no offline
// mailbox.
func (r *Registry) Deliver(message Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var delivered int
	for _, store := range r.stores {
		if store.me != message.To {
			continue
		}
		if store.Deliver(message) {
			delivered++
		}
	}
	return delivered
}
