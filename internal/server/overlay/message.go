package overlay

import (
	"time"

	"github.com/Alia5/flightstick/apitypes"
)

// Message types sent to overlay clients.
const (
	TypeHUD        = "hud"
	TypeRecentered = "recentered"
)

// Message is one server to client websocket frame.
type Message struct {
	Type      string        `json:"type"`
	Seq       int64         `json:"seq"`
	Timestamp int64         `json:"timestamp"` // unix milliseconds
	Data      *apitypes.HUD `json:"data,omitempty"`
}

// ClientMessage is a command sent by an overlay client. The only command is
// "recenter".
type ClientMessage struct {
	Type string `json:"type"`
}

func newHUDMessage(seq int64, hud apitypes.HUD) *Message {
	return &Message{Type: TypeHUD, Seq: seq, Timestamp: time.Now().UnixMilli(), Data: &hud}
}

func newRecenteredMessage(seq int64) *Message {
	return &Message{Type: TypeRecentered, Seq: seq, Timestamp: time.Now().UnixMilli()}
}
