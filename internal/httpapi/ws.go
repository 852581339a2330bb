package httpapi

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// eventBuffer is how many events a slow websocket client may lag behind
// before events are dropped for it.
const eventBuffer = 64

const writeTimeout = 2 * time.Second

// handleEvents streams layout events as JSON text messages until the client
// goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.NotFound(w, r)
		return
	}
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "err", err)
		return
	}
	s.log.Debug("websocket connect", "remote", r.RemoteAddr)
	defer s.log.Debug("websocket disconnect", "remote", r.RemoteAddr)
	defer c.Close(websocket.StatusInternalError, "")

	evs, unsubscribe := s.bus.Subscribe(eventBuffer)
	defer unsubscribe()

	// Client messages are ignored; CloseRead cancels ctx once the peer closes.
	ctx := c.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-evs:
			if !ok {
				c.Close(websocket.StatusGoingAway, "")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
