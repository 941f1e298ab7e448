package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

var roomPathRe = regexp.MustCompile(`^/r/[A-Za-z0-9_-]{1,32}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server bundles the HTTP-facing dependencies
type Server struct {
	hub       *Hub
	analytics *Analytics
	auth      *Auth
	clientDir string
	publicURL string
}

// SetupRoutes configures HTTP routes
func SetupRoutes(s *Server) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(s.clientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		// SPA: serve index.html for root and room invite paths
		if r.URL.Path == "/" || roomPathRe.MatchString(r.URL.Path) {
			http.ServeFile(w, r, filepath.Join(s.clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{id}/qr", s.handleRoomQR)
	mux.Handle("GET /api/stats", s.auth.RequireAdmin(http.HandlerFunc(s.handleStats)))

	return mux
}

// handleWS upgrades the request and seats the connection in ?room= (default quickplay)
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = QuickplayRoomID
	}
	if !ValidRoomID(roomID) {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}

	ip := extractIP(r)
	if !s.hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}

	s.hub.TrackConnect(ip)
	client := NewClient(s.hub, conn, ip)
	s.hub.Register(client)

	// Seat the client before its read pump can deliver messages
	room := s.hub.rooms.Join(roomID, client)
	if room == nil {
		log.Printf("room limit reached, rejecting %s", ip)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many rooms"))
	}
	client.room = room

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.hub.rooms.ListRooms())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	code := s.hub.rooms.NewCode()
	writeJSON(w, http.StatusCreated, map[string]string{
		"room": code,
		"url":  s.roomURL(r, code),
	})
}

// handleRoomQR renders an invite link for a room as a PNG QR code
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ValidRoomID(id) {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	png, err := qrcode.Encode(s.roomURL(r, id), qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr encode error: %v", err)
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// StatsResponse is the admin statistics payload
type StatsResponse struct {
	Rooms       int              `json:"rooms"`
	Connections int              `json:"connections"`
	Events      map[string]int   `json:"events"`
	Matches     MatchAnalytics   `json:"matches"`
	Scorers     []ScorerAnalytic `json:"scorers"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}
	events, err := s.analytics.EventCounts(days)
	if err != nil {
		log.Printf("stats: event counts: %v", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	matches, err := s.analytics.MatchStats(days)
	if err != nil {
		log.Printf("stats: match stats: %v", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	scorers, err := s.analytics.TopScoringSeats(days)
	if err != nil {
		log.Printf("stats: scorers: %v", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Rooms:       s.hub.rooms.Count(),
		Connections: s.hub.ClientCount(),
		Events:      events,
		Matches:     matches,
		Scorers:     scorers,
	})
}

// roomURL builds the shareable invite link for a room
func (s *Server) roomURL(r *http.Request, id string) string {
	base := s.publicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimSuffix(base, "/") + "/r/" + id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}
