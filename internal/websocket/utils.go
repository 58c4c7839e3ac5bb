package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// PongWait is how long a client may stay silent before the stream is dropped.
	PongWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorEvent over the WebSocket.
func WriteError(conn *websocket.Conn, code, errMsg string) error {
	return WriteTyped(conn, ErrorEvent{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(PongWait))
	return conn.ReadJSON(v)
}

// WriteClose sends a close frame with the given code and reason.
func WriteClose(conn *websocket.Conn, code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
