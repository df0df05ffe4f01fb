package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"focusroom/internal/config"
	"focusroom/internal/session"
)

// Server is the Socket.IO glue between connections and the coordinator.
// It tracks connected members and implements session.Broadcaster over them.
type Server struct {
	mu      sync.Mutex
	members map[string]socketio.Conn
	config  config.Config
}

func New(cfg config.Config) *Server {
	return &Server{members: make(map[string]socketio.Conn), config: cfg}
}

// State broadcasts a room state snapshot to every connected observer.
// Called by the coordinator inside its critical section; Emit only queues
// the packet on the connection's write buffer, so this never blocks.
func (srv *Server) State(st session.State) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, c := range srv.members {
		c.Emit("updateState", st)
	}
}

// Message broadcasts one appended notification to every connected observer.
func (srv *Server) Message(m session.Message) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for _, c := range srv.members {
		c.Emit("newMessage", m)
	}
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine, coord *session.Coordinator) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		srv.addMember(s)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		// one-time snapshot for the new observer
		s.Emit("updateState", coord.Snapshot())
		if backlog := coord.Messages(); len(backlog) > 0 {
			s.Emit("initialMessages", backlog)
		}
		return nil
	})

	io.OnEvent("/", "join", func(s socketio.Conn, payload struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
		Color string `json:"color"`
	}) {
		if err := coord.Join(s.ID(), payload.Name, payload.Emoji, payload.Color); err != nil {
			log.Warn().Str("sid", s.ID()).Err(err).Msg("join rejected")
			s.Emit("error", map[string]any{"code": "duplicate_participant", "message": err.Error()})
			return
		}
		log.Info().Str("sid", s.ID()).Str("name", payload.Name).Msg("join")
	})

	io.OnEvent("/", "startPomodoro", func(s socketio.Conn) {
		log.Info().Str("sid", s.ID()).Msg("startPomodoro")
		coord.Start()
	})

	io.OnEvent("/", "resetPomodoro", func(s socketio.Conn) {
		log.Info().Str("sid", s.ID()).Msg("resetPomodoro")
		coord.Reset()
	})

	io.OnEvent("/", "toggleActive", func(s socketio.Conn) {
		log.Info().Str("sid", s.ID()).Msg("toggleActive")
		coord.ToggleActive(s.ID())
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.removeMember(s)
		coord.Disconnect(s.ID())
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	// Mount to router
	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", srv.config.CORSOrigin)
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) addMember(c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.members[c.ID()] = c
}

func (srv *Server) removeMember(c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	delete(srv.members, c.ID())
}
