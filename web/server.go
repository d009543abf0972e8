package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"markestedt/winlock/config"
	"markestedt/winlock/storage"

	"github.com/gorilla/websocket"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local dashboard only
	},
}

// Server serves the local dashboard: status, lock history and a live feed.
type Server struct {
	db      *storage.DB
	config  *config.Config
	port    int
	hub     *Hub
	started time.Time
}

// NewServer creates a new dashboard server. db may be nil when the journal
// is disabled; history and stats then come back empty.
func NewServer(db *storage.DB, cfg *config.Config, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:      db,
		config:  cfg,
		port:    port,
		hub:     hub,
		started: time.Now(),
	}
}

// Start starts the web server (blocking call)
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/ws", s.handleWebSocket)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf("localhost:%d", s.port)
	slog.Info("Starting dashboard", "url", fmt.Sprintf("http://%s", addr))

	return http.ListenAndServe(addr, mux)
}

// BroadcastLockEvent pushes a lock event to all connected clients
func (s *Server) BroadcastLockEvent(e storage.LockEvent) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeLockEvent,
		Data: lockEventJSON(e),
	})
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
