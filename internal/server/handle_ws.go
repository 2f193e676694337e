package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const wsWriteTimeout = 5 * time.Second

// handleRevealSocket streams the interview's reveal updates over a
// websocket, one JSON event per text frame. Client frames are ignored.
func handleRevealSocket(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := interviewSession(r)

		ch := broker.Subscribe(s.ID())
		defer broker.Unsubscribe(s.ID(), ch)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// CloseRead discards client frames and cancels ctx when the peer goes away.
		ctx := conn.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				logger.Debug("reveal socket closed", "interview", s.ID(), "error", ctx.Err())
				return
			case msg := <-ch:
				if msg.Type != EventReveal {
					continue
				}
				if err := writeEvent(ctx, conn, msg.Data); err != nil {
					logger.Debug("websocket write failed", "interview", s.ID(), "error", err)
					return
				}
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
