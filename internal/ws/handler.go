package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/verbyte-backend/internal/hub"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
	"github.com/DoyleJ11/verbyte-backend/internal/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	messagesPerSecond = 20
	messageBurst      = 40
	writeTimeout      = 3 * time.Second
	pingInterval      = 20 * time.Second
)

func Handler(h *hub.Hub, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		if id == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		e, err := h.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if e == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			log.Warn("websocket accept failed", zap.String("session_id", id), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			conn:    conn,
			entry:   e,
			log:     log.With(zap.String("session_id", id)),
			limiter: rate.NewLimiter(messagesPerSecond, messageBurst),
		}
		c.serve(r.Context())
	}
}

type client struct {
	conn    *websocket.Conn
	entry   *hub.Entry
	log     *zap.Logger
	limiter *rate.Limiter
}

func (c *client) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	out := make(chan session.Snapshot, 8)
	clientID := uuid.NewString()
	if err := c.entry.Session.Subscribe(ctx, clientID, out); err != nil {
		c.conn.Close(websocket.StatusGoingAway, "session closed")
		return
	}
	defer c.entry.Session.Unsubscribe(clientID)

	// Writer goroutine
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-out:
				if !ok {
					// Closed by the session: it ended or dropped us as too slow.
					c.conn.Close(websocket.StatusGoingAway, "session closed")
					return
				}
				c.write(ctx, types.ServerMessage{
					Type:    types.MsgStateSnapshot,
					Version: snap.Version,
					State:   &snap.State,
					Logs:    snap.Logs,
					Taunt:   snap.Taunt,
				})
			}
		}
	}()

	go c.keepAlive(ctx)

	// Reader loop
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					c.log.Debug("websocket read ended", zap.Error(err))
				}
			}
			return
		}

		if !c.limiter.Allow() {
			c.writeError(ctx, "rate limited")
			continue
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.writeError(ctx, "bad json")
			continue
		}
		c.handle(ctx, cm)
	}
}

func (c *client) handle(ctx context.Context, cm types.ClientMessage) {
	switch cm.Type {
	case types.MsgGuess:
		// Rejected guesses are ignored; the next snapshot is the answer.
		if _, err := c.entry.Guess(ctx, cm.Letter); err != nil {
			c.writeError(ctx, err.Error())
		}

	case types.MsgPowerUp:
		if _, err := c.entry.PowerUp(ctx, cm.Kind); err != nil {
			c.writeError(ctx, err.Error())
		}

	case types.MsgPlayAgain:
		if err := c.entry.PlayAgain(ctx); err != nil {
			c.writeError(ctx, err.Error())
		}

	// Ledger calls can take a while; keep reading input meanwhile.
	case types.MsgCreateRoom:
		go func() {
			code, link, err := c.entry.CreateRoom(ctx)
			if err != nil {
				c.writeError(ctx, err.Error())
				return
			}
			c.write(ctx, types.ServerMessage{Type: types.MsgRoomCreated, Room: code, ShareURL: link})
		}()

	case types.MsgMatchmake:
		go func() {
			if err := c.entry.Matchmake(ctx, cm.Room, cm.Avatar); err != nil {
				c.writeError(ctx, err.Error())
			}
		}()

	case types.MsgClaim:
		go func() {
			ref, err := c.entry.ClaimVictory(ctx)
			if err != nil {
				c.writeError(ctx, err.Error())
				return
			}
			c.write(ctx, types.ServerMessage{Type: types.MsgVictory, TxRef: ref})
		}()

	default:
		c.writeError(ctx, "unknown type")
	}
}

func (c *client) keepAlive(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}

func (c *client) write(ctx context.Context, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal server message", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, payload)
}

func (c *client) writeError(ctx context.Context, msg string) {
	c.write(ctx, types.ServerMessage{Type: types.MsgError, Error: msg})
}
