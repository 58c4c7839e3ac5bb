package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/model"
	"github.com/eduin/eduin-backend/internal/practice"
	"github.com/eduin/eduin-backend/internal/response"
	"github.com/eduin/eduin-backend/internal/service"
	ws "github.com/eduin/eduin-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams practice sessions over WebSocket.
type WSHandler struct {
	practiceService *service.PracticeService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(practiceService *service.PracticeService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		practiceService: practiceService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// PracticeStream godoc
// WS /ws/v1/practice/sessions/:id/stream
// Pushes a state event after every transition and accepts answer, next,
// previous and ping actions.
func (h *WSHandler) PracticeStream(c *gin.Context) {
	id := c.Param("id")
	if err := h.practiceService.Touch(id); err != nil {
		status, code := practiceFailure(err)
		response.Fail(c, status, code)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id).Logger()

	snapshots, unsubscribe, err := h.practiceService.Subscribe(id)
	if err != nil {
		_, code := practiceFailure(err)
		ws.WriteError(conn, string(code), response.GetMessage(code))
		return
	}
	defer unsubscribe()

	wsLog.Info().Msg("Practice stream connected")

	// Only writeLoop writes to conn; replies are handed to it through out.
	out := make(chan interface{}, 8)
	done := make(chan struct{})
	go h.writeLoop(conn, snapshots, out, done)

	h.readLoop(conn, wsLog, id, out, done)

	unsubscribe()
	<-done
	wsLog.Info().Msg("Practice stream closed")
}

func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, id string, out chan<- interface{}, done <-chan struct{}) {
	for {
		var req ws.Request
		if err := ws.ReadJSON(conn, &req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		reply := h.dispatch(wsLog, id, req)
		if reply == nil {
			continue
		}
		select {
		case out <- reply:
		case <-done:
			return
		}
	}
}

// writeLoop forwards snapshots and replies until the subscription closes or a
// write fails. Closing the connection on exit unblocks readLoop.
func (h *WSHandler) writeLoop(conn *websocket.Conn, snapshots <-chan practice.Snapshot, out <-chan interface{}, done chan<- struct{}) {
	defer close(done)
	defer conn.Close()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				_ = ws.WriteClose(conn, websocket.CloseNormalClosure, "session closed")
				return
			}
			if err := ws.WriteTyped(conn, ws.StateEvent{Event: ws.EventState, State: snap}); err != nil {
				return
			}
		case msg := <-out:
			if err := ws.WriteTyped(conn, msg); err != nil {
				return
			}
		}
	}
}

// dispatch applies one client action. State changes reach the client through
// the subscription, so only direct replies are returned here.
func (h *WSHandler) dispatch(wsLog zerolog.Logger, id string, req ws.Request) interface{} {
	switch req.Action {
	case ws.ActionPing:
		if err := h.practiceService.Touch(id); err != nil {
			return errorEvent(err)
		}
		return ws.PongEvent{Event: ws.EventPong}

	case ws.ActionAnswer:
		correct, _, err := h.practiceService.Answer(id, req.Option)
		if err != nil {
			return errorEvent(err)
		}
		return ws.AnsweredEvent{Event: ws.EventAnswered, Option: model.NormalizeOption(req.Option), Correct: correct}

	case ws.ActionNext:
		if _, err := h.practiceService.Next(id); err != nil {
			return errorEvent(err)
		}
		return nil

	case ws.ActionPrevious:
		if _, err := h.practiceService.Previous(id); err != nil {
			return errorEvent(err)
		}
		return nil

	default:
		wsLog.Warn().Str("action", string(req.Action)).Msg("Unknown action")
		return ws.ErrorEvent{Event: ws.EventError, Code: "UNKNOWN_ACTION", Error: "unknown action: " + string(req.Action)}
	}
}

func errorEvent(err error) ws.ErrorEvent {
	_, code := practiceFailure(err)
	return ws.ErrorEvent{Event: ws.EventError, Code: string(code), Error: response.GetMessage(code)}
}
