package ws

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RegisterMessage is the first message a client sends after connecting.
type RegisterMessage struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections to WebSocket and wires sessions into the
// directory once the client registers.
type Handler struct {
	dir    *Directory
	logger zerolog.Logger
}

func NewHandler(dir *Directory, logger zerolog.Logger) *Handler {
	return &Handler{dir: dir, logger: logger}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the connection and starts the read/write pumps.
// The session joins the directory only after a register message arrives.
func (h *Handler) HandleConnect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	session := &Session{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
	}

	go h.writePump(session, conn)
	go h.readPump(session, conn)

	return nil
}

func (h *Handler) readPump(session *Session, conn *gorillawebsocket.Conn) {
	registered := false
	defer func() {
		if registered {
			h.dir.Remove(session)
		} else {
			close(session.Send)
		}
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if registered {
			continue
		}

		var msg RegisterMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.UserID == "" {
			continue // Ignore malformed messages.
		}

		session.UserID = msg.UserID
		session.Name = msg.Name
		session.Role = msg.Role
		h.dir.Add(session)
		registered = true

		h.logger.Debug().
			Str("user_id", msg.UserID).
			Str("role", msg.Role).
			Msg("websocket session registered")
	}
}

func (h *Handler) writePump(session *Session, conn *gorillawebsocket.Conn) {
	defer conn.Close()

	for message := range session.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}
