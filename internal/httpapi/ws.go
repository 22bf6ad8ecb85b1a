package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
)

const writeWait = 10 * time.Second

// Frame is one websocket message. The first frame of a stream is a snapshot;
// every later frame is an update pushed after a relevant commit.
type Frame struct {
	Type  string     `json:"type"`
	Seq   int64      `json:"seq,omitempty"`
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type subscribeFunc[T any] func(ctx context.Context, fn func(repository.Push[T])) (T, *liveq.Subscription, error)

func (s *Server) streamCart(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	stream(s, c, func(ctx context.Context, fn func(repository.Push[cart.View])) (cart.View, *liveq.Subscription, error) {
		return s.repo.WatchCart(ctx, userID, fn)
	})
}

func (s *Server) streamOrders(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	stream(s, c, func(ctx context.Context, fn func(repository.Push[[]model.Order])) ([]model.Order, *liveq.Subscription, error) {
		return s.repo.WatchOrders(ctx, userID, fn)
	})
}

// stream upgrades the request and relays one live query subscription until
// the client disconnects or the engine closes.
func stream[T any](s *Server, c *gin.Context, subscribe subscribeFunc[T]) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "path", c.Request.URL.Path, "error", err)
		return
	}
	defer conn.Close()

	// The reader only detects disconnects; clients send nothing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	out := make(chan Frame, 16)
	initial, sub, err := subscribe(c.Request.Context(), func(p repository.Push[T]) {
		f := Frame{Type: "update", Seq: p.Seq, Data: p.Value, Error: bodyOf(p.Err)}
		if p.Err != nil {
			f.Data = nil
		}
		select {
		case out <- f:
		case <-gone:
		}
	})
	if err != nil {
		s.writeFrame(conn, Frame{Type: "error", Error: bodyOf(err)})
		return
	}
	defer sub.Unsubscribe()

	s.logger.Debug("websocket stream opened", "path", c.Request.URL.Path, "subscription", sub.ID())
	if !s.writeFrame(conn, Frame{Type: "snapshot", Data: initial}) {
		return
	}

	for {
		select {
		case f := <-out:
			if !s.writeFrame(conn, f) {
				return
			}
		case <-gone:
			s.logger.Debug("websocket stream closed", "subscription", sub.ID())
			return
		case <-sub.Done():
			if err := conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait)); err != nil {
				s.logger.Debug("websocket close failed", "subscription", sub.ID(), "error", err)
			}
			return
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, f Frame) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(f); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}
