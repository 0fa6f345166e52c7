package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/websocket"

	"educa/apperr"
	"educa/logger"
)

// Identity is the authenticated member of a room.
type Identity struct {
	UserID   uint
	Username string
}

// Authenticator turns an access token into an Identity.
type Authenticator func(token string) (Identity, error)

type EnrollmentChecker interface {
	Require(ctx context.Context, userID, courseID uint) error
}

const (
	tokenCookieName = "token"
	maxMessageLen   = 4000
)

// GroupName is the broadcast group of a course's room.
func GroupName(courseID uint) string {
	return "chat_" + strconv.FormatUint(uint64(courseID), 10)
}

type Server struct {
	hub  *Hub
	bus  Bus
	auth Authenticator
	gate EnrollmentChecker
	log  *logger.Logger
	now  func() time.Time
}

func NewServer(hub *Hub, bus Bus, auth Authenticator, gate EnrollmentChecker, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{hub: hub, bus: bus, auth: auth, gate: gate, log: log.With("service", "ChatServer"), now: time.Now}
}

// Start forwards bus traffic into the local hub until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	return s.bus.StartForwarder(ctx, func(env Envelope) {
		s.hub.Broadcast(env.Group, env.Event)
	})
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /chat/room/{course_id}", s.room)
	return mux
}

func (s *Server) room(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseUint(r.PathValue("course_id"), 10, 64)
	if err != nil || courseID == 0 {
		http.Error(w, "course not found", http.StatusNotFound)
		return
	}

	token := accessTokenFromRequest(r)
	if token == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := s.auth(token)
	if err != nil {
		s.log.Debug("chat auth rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if err := s.gate.Require(r.Context(), id.UserID, uint(courseID)); err != nil {
		ae := apperr.From(err)
		if ae.Status >= http.StatusInternalServerError {
			s.log.Error("chat enrollment check failed", "course_id", courseID, "error", err)
		}
		http.Error(w, http.StatusText(ae.Status), ae.Status)
		return
	}

	group := GroupName(uint(courseID))
	websocket.Handler(func(conn *websocket.Conn) {
		s.serve(conn, group, id)
	}).ServeHTTP(w, r)
}

func accessTokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	if c, err := r.Cookie(tokenCookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

type inbound struct {
	Message string `json:"message"`
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (s *Server) serve(conn *websocket.Conn, group string, id Identity) {
	sub := s.hub.Subscribe(group)
	s.log.Info("chat member connected", "group", group, "user", id.Username)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub.C {
			if err := websocket.JSON.Send(conn, ev); err != nil {
				return
			}
		}
	}()

	ctx := conn.Request().Context()
	for {
		var in inbound
		if err := websocket.JSON.Receive(conn, &in); err != nil {
			break
		}
		text := strings.TrimSpace(in.Message)
		if text == "" {
			continue
		}
		text = truncate(text, maxMessageLen)
		env := Envelope{Group: group, Event: Event{
			Type:     "chat_message",
			Message:  text,
			User:     id.Username,
			Datetime: s.now().UTC().Format(time.RFC3339),
		}}
		if err := s.bus.Publish(ctx, env); err != nil {
			s.log.Warn("chat publish failed", "group", group, "error", err)
		}
	}

	sub.Close()
	_ = conn.Close()
	<-done
	s.log.Info("chat member disconnected", "group", group, "user", id.Username)
}

// ListenAndServe runs the chat HTTP server until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start chat bus: %w", err)
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	s.log.Info("chat server listening", "addr", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown chat server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve chat: %w", err)
	}
}
