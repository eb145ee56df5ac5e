package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"TTVPull/internal/middleware"
	xlogger "TTVPull/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// ProgressHandler streams campaign progress events over WebSocket.
type ProgressHandler struct {
	logger   *xlogger.Logger
	hub      *middleware.ProgressHub
	upgrader websocket.Upgrader
}

func NewProgressHandler(logger *xlogger.Logger, hub *middleware.ProgressHub) *ProgressHandler {
	return &ProgressHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ProgressHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/campaigns/:id/progress", h.Stream)
	e.GET("/api/progress", h.StreamAll)
}

// Stream subscribes the client to one campaign's events.
func (h *ProgressHandler) Stream(c echo.Context) error {
	return h.stream(c, c.Param("id"))
}

// StreamAll subscribes the client to every campaign's events.
func (h *ProgressHandler) StreamAll(c echo.Context) error {
	return h.stream(c, "")
}

func (h *ProgressHandler) stream(c echo.Context, campaignID string) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return err
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(campaignID)
	defer cancel()

	// drain client frames so close handshakes are noticed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("progress client gone", xlogger.Error(err))
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
