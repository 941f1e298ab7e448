package main

import "sync"

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// connLimits caps live websocket connections overall and per remote IP.
// It is consulted from HTTP handlers, so it carries its own lock.
type connLimits struct {
	mu    sync.Mutex
	perIP map[string]int
	total int
}

func (l *connLimits) canAccept(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total < maxTotalConns && l.perIP[ip] < maxConnsPerIP
}

func (l *connLimits) add(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perIP[ip]++
	l.total++
}

func (l *connLimits) remove(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perIP[ip]--
	if l.perIP[ip] <= 0 {
		delete(l.perIP, ip)
	}
	l.total--
}

// Hub owns client registration and hands departing clients back to their room
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	unregister chan *Client
	rooms      *RoomManager
	limits     connLimits
}

// NewHub creates a new Hub over a room registry
func NewHub(rooms *RoomManager) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client, 64),
		rooms:      rooms,
		limits:     connLimits{perIP: make(map[string]int)},
	}
}

// CanAccept reports whether another connection from ip fits the limits
func (h *Hub) CanAccept(ip string) bool { return h.limits.canAccept(ip) }

func (h *Hub) TrackConnect(ip string)    { h.limits.add(ip) }
func (h *Hub) TrackDisconnect(ip string) { h.limits.remove(ip) }

// Register records a client before its pumps start, so an unregister can
// never be processed ahead of it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// Run processes unregister events
func (h *Hub) Run() {
	for client := range h.unregister {
		// Leave the room first so no broadcast targets a closed channel
		if client.room != nil {
			h.rooms.Leave(client.room, client.id)
		}
		h.mu.Lock()
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
		}
		h.mu.Unlock()
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
