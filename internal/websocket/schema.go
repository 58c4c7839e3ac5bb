package websocket

import "github.com/eduin/eduin-backend/internal/practice"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionPing     Action = "ping"
)

// Request is a client message. Option is only read for answer.
type Request struct {
	Action Action `json:"action"`
	Option string `json:"option,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventAnswered Event = "answered"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// StateEvent carries a full session snapshot. Sent after every transition.
type StateEvent struct {
	Event Event             `json:"event"`
	State practice.Snapshot `json:"state"`
}

// AnsweredEvent tells the sender whether the chosen option was correct.
type AnsweredEvent struct {
	Event   Event  `json:"event"`
	Option  string `json:"option"`
	Correct bool   `json:"correct"`
}

type ErrorEvent struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongEvent struct {
	Event Event `json:"event"`
}
