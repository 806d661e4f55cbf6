package transport

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"docloom/internal/agents"
	"docloom/internal/events"
	"docloom/internal/services"
)

// inboundMessage is the single envelope clients send over the socket.
type inboundMessage struct {
	Type     string                         `json:"type"`
	ModelKey string                         `json:"model_key,omitempty"`
	Generate *services.GenerateChunkRequest `json:"generate,omitempty"`
	Apply    *services.ApplyChunkRequest    `json:"apply,omitempty"`
	Status   string                         `json:"status,omitempty"`
	Message  string                         `json:"message,omitempty"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// wsSession is one connected client. Writes are serialized; gorilla
// connections do not allow concurrent writers.
type wsSession struct {
	conn       *websocket.Conn
	sessionKey string
	writeMu    sync.Mutex
}

func (s *wsSession) send(msg outboundMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("transport: write to session %s failed: %v", s.sessionKey, err)
	}
}

// Hub tracks connected editing sessions and routes agent events back to the
// socket that owns them.
type Hub struct {
	svcs     *services.Services
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*wsSession
}

func NewHub(svcs *services.Services) *Hub {
	return &Hub{
		svcs: svcs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*wsSession),
	}
}

// Emitter adapts the hub into the event emitter hook so agent events reach
// the owning client. Events without a session key only hit the log.
func (h *Hub) Emitter() func(ctx context.Context, name string, evt events.AgentEvent) {
	return func(ctx context.Context, name string, evt events.AgentEvent) {
		if evt.SessionKey == "" {
			log.Printf("transport: unrouted event %s: %s", name, evt.Message)
			return
		}
		h.mu.RLock()
		sess, ok := h.conns[evt.SessionKey]
		h.mu.RUnlock()
		if !ok {
			log.Printf("transport: no connection for session %s, dropping event %s", evt.SessionKey, name)
			return
		}
		sess.send(outboundMessage{Type: name, Payload: evt})
	}
}

// HandleWS upgrades the connection and runs the session read loop until the
// client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sessionKey := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionKey == "" {
		sessionKey = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade failed: %v", err)
		return
	}
	sess := &wsSession{conn: conn, sessionKey: sessionKey}

	h.mu.Lock()
	if previous, ok := h.conns[sessionKey]; ok {
		previous.conn.Close()
	}
	h.conns[sessionKey] = sess
	h.mu.Unlock()

	sess.send(outboundMessage{Type: "session", Payload: map[string]string{"session_key": sessionKey}})

	// Replay a suspended apply request so a reconnecting client can confirm.
	if pending, ok := h.svcs.Documents.PendingApply(sessionKey); ok {
		sess.send(outboundMessage{Type: events.AgentApplyRequest, Payload: pending})
	}

	defer func() {
		h.mu.Lock()
		if h.conns[sessionKey] == sess {
			delete(h.conns, sessionKey)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	ctx := events.WithSession(r.Context(), sessionKey)
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("transport: session %s read error: %v", sessionKey, err)
			}
			return
		}
		h.dispatch(ctx, sess, msg)
	}
}

func (h *Hub) dispatch(ctx context.Context, sess *wsSession, msg inboundMessage) {
	switch msg.Type {
	case "init":
		if err := h.svcs.Documents.InitSession(ctx, sess.sessionKey, msg.ModelKey); err != nil {
			sess.send(outboundMessage{Type: "init_result", Error: err.Error()})
			return
		}
		sess.send(outboundMessage{Type: "init_result", Payload: map[string]string{"model_key": msg.ModelKey}})

	case "generate":
		if msg.Generate == nil {
			sess.send(outboundMessage{Type: "generate_result", Error: "generate payload is required"})
			return
		}
		// Generation runs several model calls; keep the read loop free.
		go func() {
			chunk, result, err := h.svcs.Documents.GenerateChunk(ctx, sess.sessionKey, *msg.Generate)
			if err != nil {
				sess.send(outboundMessage{Type: "generate_result", Error: err.Error()})
				return
			}
			sess.send(outboundMessage{Type: "generate_result", Payload: map[string]any{
				"chunk":  chunk,
				"status": result.Status,
				"score":  result.Score,
			}})
		}()

	case "apply":
		if msg.Apply == nil {
			sess.send(outboundMessage{Type: "apply_decision", Error: "apply payload is required"})
			return
		}
		go func() {
			decision, err := h.svcs.Documents.ApplyChunk(ctx, sess.sessionKey, *msg.Apply)
			if err != nil {
				sess.send(outboundMessage{Type: "apply_decision", Error: err.Error()})
				return
			}
			sess.send(outboundMessage{Type: "apply_decision", Payload: decision})
		}()

	case "apply_response":
		status := agents.StatusError
		if strings.EqualFold(msg.Status, string(agents.StatusSuccess)) {
			status = agents.StatusSuccess
		}
		if err := h.svcs.Documents.ResolveApply(sess.sessionKey, status, msg.Message); err != nil {
			sess.send(outboundMessage{Type: "apply_resolved", Error: err.Error()})
		}

	default:
		sess.send(outboundMessage{Type: "error", Error: "unknown message type: " + msg.Type})
	}
}
