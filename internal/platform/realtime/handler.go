package realtime

import (
	"net/http"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic-server/internal/platform/auth"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler upgrades HTTP connections and runs the read loop for each session.
type Handler struct {
	router *Router
}

func NewHandler(router *Router) *Handler {
	return &Handler{router: router}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.HandleConnect)
}

// HandleConnect upgrades the connection and starts the session. When the
// transport already carries a verified identity the session authenticates
// immediately; otherwise it waits for a hello frame.
func (h *Handler) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	session := NewSession(&gorillaConnAdapter{ws})
	go session.WritePump()

	if username := auth.UsernameFromContext(ctx); username != "" {
		h.router.Authenticate(ctx, session, username, auth.RoleFromContext(ctx))
	}

	defer func() {
		h.router.Disconnect(session)
		ws.Close()
	}()

	for {
		data, err := session.ReadMessage()
		if err != nil {
			break
		}
		h.router.HandleFrame(ctx, session, data)
	}
	return nil
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
