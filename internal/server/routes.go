package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"webgames-server/internal/rooms"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/wins", s.winsHandler)
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.HandleFunc("/ws/", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(s.ledger.Health())
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Warn().Err(err).Msg("failed to write health response")
	}
}

// winsHandler reports aggregate win counts for one game kind. This is the
// reporting surface of the win ledger; the game core never reads it.
func (s *Server) winsHandler(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(r.URL.Query().Get("game"))
	if kind == "" {
		kind = DefaultGameKind
	}

	wins, err := s.ledger.Wins(r.Context(), kind)
	if err != nil {
		log.Error().Err(err).Str("game", kind).Msg("failed to read wins")
		http.Error(w, "Failed to read win counts", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(wins)
	if err != nil {
		http.Error(w, "Failed to marshal win counts", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Warn().Err(err).Msg("failed to write wins response")
	}
}

// wsConn adapts a websocket connection to the room layer's outbound
// interface. The gateway stays the sole owner of the connection.
type wsConn struct {
	conn *websocket.Conn
}

func (c wsConn) Send(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// gameKindFromRequest derives the game kind from the explicit query
// parameter or the path segment after /ws/, falling back to the default
// kind when absent or unregistered.
func (s *Server) gameKindFromRequest(r *http.Request) string {
	kind := strings.ToLower(r.URL.Query().Get("game"))
	if kind == "" {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ws"), "/")
		seg, _, _ := strings.Cut(rest, "/")
		kind = strings.ToLower(seg)
	}
	if kind == "" || !s.factory.Known(kind) {
		return DefaultGameKind
	}
	return kind
}

// websocketHandler terminates one client connection: it assigns an
// identity, resolves the room (directly or via quickplay), then pumps
// inbound frames into the registry until the connection dies. Leave always
// runs on the way out, however the connection ended.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	clientID := uuid.New()
	sess := rooms.NewSession(clientID, wsConn{conn: socket})
	s.connections.Add(clientID, socket)
	log.Info().Str("client", clientID.String()).Msg("client connected")

	defer func() {
		s.registry.Leave(sess)
		s.rateLimiter.RemoveConnection(clientID)
		s.connections.Remove(clientID)
		log.Info().Str("client", clientID.String()).Msg("client disconnected")
	}()

	gameKind := s.gameKindFromRequest(r)

	if strings.EqualFold(r.URL.Query().Get("quickPlayJoin"), "true") {
		roomID, foundKind, found := s.registry.QuickPlay()
		if !found {
			s.sendEvent(socket, ctx, NoFreeEvent{Event: "nofree"})
			// Connection stays open; the client decides what to do next.
		} else {
			if err := s.registry.JoinOrCreate(roomID, foundKind, sess); err != nil {
				log.Error().Err(err).Str("client", clientID.String()).Msg("quickplay join failed")
				return
			}
			s.sendEvent(socket, ctx, QuickPlayJoinedEvent{
				Event:    "quickPlayJoined",
				RoomID:   roomID.String(),
				GameKind: foundKind,
			})
		}
	} else {
		roomID, err := uuid.Parse(r.URL.Query().Get("roomID"))
		if err != nil {
			s.sendEvent(socket, ctx, ErrorEvent{Event: "error", Message: "Missing or invalid roomID"})
			socket.Close(websocket.StatusPolicyViolation, "Invalid roomID")
			return
		}
		if err := s.registry.JoinOrCreate(roomID, gameKind, sess); err != nil {
			log.Error().Err(err).Str("client", clientID.String()).Msg("join failed")
			return
		}
	}

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Str("client", clientID.String()).Msg("connection read ended")
			return
		}

		if msgType != websocket.MessageText {
			log.Debug().Str("client", clientID.String()).Msg("non-text frame ignored")
			continue
		}

		if !s.rateLimiter.Allow(clientID) {
			log.Warn().Str("client", clientID.String()).Msg("rate limit exceeded, message dropped")
			continue
		}

		s.registry.Dispatch(sess, data)
	}
}

func (s *Server) sendEvent(socket *websocket.Conn, ctx context.Context, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event")
		return
	}
	if err := socket.Write(ctx, websocket.MessageText, data); err != nil {
		log.Warn().Err(err).Msg("failed to send event")
	}
}
