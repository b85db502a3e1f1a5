package services

import (
	"time"

	"github.com/Dosada05/prediction-league/live"
)

// Broadcaster pushes live messages to websocket rooms. *live.Hub implements it.
type Broadcaster interface {
	BroadcastToRoom(room string, message live.Message)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, live.Message) {}

func broadcasterOrNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

type clock func() time.Time

func intPtr(v int) *int {
	return &v
}
