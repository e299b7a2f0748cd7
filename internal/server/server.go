package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/screenlate/screenlate/internal/controller"
	apperrors "github.com/screenlate/screenlate/internal/errors"
	"github.com/screenlate/screenlate/internal/region"
	"github.com/screenlate/screenlate/internal/trace"
)

// Messages pushed to clients.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type StatusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type StateMessage struct {
	Type  string              `json:"type"`
	State controller.Snapshot `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ControlMessage is an inbound client command.
type ControlMessage struct {
	Type   string                `json:"type"`
	Region *region.CaptureRegion `json:"region,omitempty"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// displayUpdate is one queued UI mutation.
type displayUpdate struct {
	kind  string // "text" or "status"
	value string
}

// Server handles HTTP and WebSocket connections. It implements
// controller.Display by queueing updates; a single broadcaster goroutine
// drains the queue and writes to every client, so the polling goroutine never
// touches a connection directly.
type Server struct {
	baseCtx    context.Context
	ctrl       *controller.Controller
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
	updates    chan displayUpdate
}

// New creates a server.
func New() *Server {
	s := &Server{
		baseCtx:    context.Background(),
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
		updates:    make(chan displayUpdate, UpdateQueueDepth),
	}
	go s.broadcast()
	return s
}

// Bind attaches the controller and the base context used for loop starts.
func (s *Server) Bind(ctx context.Context, ctrl *controller.Controller) {
	s.baseCtx = ctx
	s.ctrl = ctrl
}

// SetText queues a display text update.
func (s *Server) SetText(text string) { s.enqueue(displayUpdate{kind: "text", value: text}) }

// SetStatus queues a status line update.
func (s *Server) SetStatus(status string) { s.enqueue(displayUpdate{kind: "status", value: status}) }

func (s *Server) enqueue(u displayUpdate) {
	select {
	case s.updates <- u:
	default:
		slog.Debug("display update queue full, dropping", "kind", u.kind)
	}
}

func (s *Server) broadcast() {
	for u := range s.updates {
		var msg any
		switch u.kind {
		case "text":
			msg = TextMessage{Type: "text", Text: u.value}
		case "status":
			msg = StatusMessage{Type: "status", Status: u.value}
		default:
			continue
		}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn, m any) {
				ctx, cancel := context.WithTimeout(context.Background(), BroadcastWriteTimeout)
				defer cancel()
				_ = wsjson.Write(ctx, c, m)
			}(conn, msg)
		}
		s.mu.RUnlock()
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket display + control
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST control surface
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/region", s.handleRegion)
	mux.HandleFunc("POST /api/start", s.handleStart)
	mux.HandleFunc("POST /api/stop", s.handleStop)

	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	log := trace.Logger(ctx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// New clients start from the current state.
	_ = wsjson.Write(ctx, conn, StateMessage{Type: "state", State: s.ctrl.State()})

	for {
		var msg ControlMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: "rate limit exceeded"})
			continue
		}

		if err := s.dispatch(msg); err != nil {
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
			continue
		}
		_ = wsjson.Write(ctx, conn, StateMessage{Type: "state", State: s.ctrl.State()})
	}
}

// dispatch applies one control message.
func (s *Server) dispatch(msg ControlMessage) error {
	switch msg.Type {
	case "start":
		return s.ctrl.Start(s.baseCtx)
	case "stop":
		s.ctrl.Stop()
		return nil
	case "select_region":
		if msg.Region == nil {
			return apperrors.New(apperrors.CodeRegionInvalid, "missing region")
		}
		return s.ctrl.SelectRegion(*msg.Region)
	default:
		return apperrors.Newf(apperrors.CodeUnknown, "unknown message type %q", msg.Type)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ctrl.State())
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	var reg region.CaptureRegion
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, "malformed region", http.StatusBadRequest)
		return
	}
	if err := s.ctrl.SelectRegion(reg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.ctrl.State())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Start(s.baseCtx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.ctrl.State())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	writeJSON(w, s.ctrl.State())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps application error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeRegionInvalid:
		status = http.StatusBadRequest
	case apperrors.CodeInvalidState:
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
