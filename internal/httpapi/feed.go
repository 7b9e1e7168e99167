package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ChangeEvent tells a connected UI that a game's state moved and should be
// re-fetched. It is the service-side stand-in for the PWA's live queries.
type ChangeEvent struct {
	GameID uuid.UUID `json:"game_id"`
	Op     string    `json:"op"`
}

// Feed fans committed-mutation events out to websocket subscribers.
type Feed struct {
	log *logrus.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewFeed builds an empty feed.
func NewFeed(log *logrus.Logger) *Feed {
	return &Feed{log: log, conns: make(map[*websocket.Conn]struct{})}
}

// Broadcast sends the event to every subscriber. Slow or dead connections
// are dropped rather than allowed to stall the caller.
func (f *Feed) Broadcast(gameID uuid.UUID, op string) {
	ev := ChangeEvent{GameID: gameID, Op: op}

	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.conns))
	for c := range f.conns {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := wsjson.Write(ctx, c, ev)
		cancel()
		if err != nil {
			f.remove(c)
			c.Close(websocket.StatusPolicyViolation, "write failed")
		}
	}
}

func (f *Feed) add(c *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conns[c] = struct{}{}
}

func (f *Feed) remove(c *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, c)
}

// Handler upgrades the request and keeps the connection subscribed until
// the client goes away.
func (f *Feed) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			f.log.WithError(err).Warn("ws accept failed")
			return
		}
		f.add(c)
		f.log.WithField("remote", r.RemoteAddr).Info("feed subscriber connected")

		// Reads are discarded; the feed is one-way. The read loop exists
		// to notice the close.
		ctx := r.Context()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				break
			}
		}
		f.remove(c)
		c.Close(websocket.StatusNormalClosure, "bye")
		f.log.WithField("remote", r.RemoteAddr).Info("feed subscriber disconnected")
	}
}
