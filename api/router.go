package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"sharedcanvas-server/config"
	"sharedcanvas-server/domain"
	"sharedcanvas-server/export"
	"sharedcanvas-server/roomcode"
	ws "sharedcanvas-server/websocket"
)

// Rooms is the read side of the registry used by the HTTP endpoints.
type Rooms interface {
	Snapshot(roomID string) ([]domain.Stroke, bool)
	StrokeCount(roomID string) (int, bool)
	Members(roomID string) ([]string, bool)
	Stats() (rooms, clients int)
	Sessions() int
}

type RoomInfo struct {
	RoomID  string   `json:"roomId"`
	Strokes int      `json:"strokes"`
	Members []string `json:"members"`
}

type server struct {
	rooms    Rooms
	handler  domain.MessageHandler
	upgrader websocket.Upgrader
}

// NewRouter wires the websocket endpoint and the HTTP API.
func NewRouter(rooms Rooms, handler domain.MessageHandler, cfg config.Config) http.Handler {
	s := &server{
		rooms:   rooms,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg),
		},
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{roomId}", s.handleRoomInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{roomId}/export.pdf", s.handleExport).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))
	return recovery(cors(r))
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade error", "error", err)
		return
	}

	wsConn := ws.NewConn(uuid.New().String(), conn, s.handler)
	wsConn.Start()
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	rooms, clients := s.rooms.Stats()
	respondJSON(w, http.StatusOK, map[string]int{
		"rooms":    rooms,
		"clients":  clients,
		"sessions": s.rooms.Sessions(),
	})
}

func (s *server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	code, err := roomcode.Generate()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"roomId": code})
}

func (s *server) handleRoomInfo(w http.ResponseWriter, r *http.Request) {
	roomID := roomcode.Normalize(mux.Vars(r)["roomId"])

	count, ok := s.rooms.StrokeCount(roomID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Errorf("room %s not found", roomID))
		return
	}
	members, _ := s.rooms.Members(roomID)
	if members == nil {
		members = []string{}
	}
	sort.Strings(members)

	respondJSON(w, http.StatusOK, RoomInfo{RoomID: roomID, Strokes: count, Members: members})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	roomID := roomcode.Normalize(mux.Vars(r)["roomId"])

	strokes, ok := s.rooms.Snapshot(roomID)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Errorf("room %s not found", roomID))
		return
	}

	var buf bytes.Buffer
	if err := export.PDF(&buf, "Room "+roomID, strokes); err != nil {
		slog.Error("export failed", "room", roomID, "error", err)
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="room-%s.pdf"`, roomID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func checkOrigin(cfg config.Config) func(r *http.Request) bool {
	if cfg.AllowAnyOrigin() {
		return func(r *http.Request) bool { return true }
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("panic recovered", "error", fmt.Sprint(v...))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode json response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
