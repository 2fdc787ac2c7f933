package hub

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/verbyte-backend/internal/room"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
	"github.com/google/uuid"
)

var ErrHubClosed = errors.New("hub closed")

// Identity is who a session plays as. Account is a wallet address, DeviceID
// an opaque browser id.
type Identity struct {
	Account  string
	DeviceID string
}

// StatsKey prefers the device id and falls back to the wallet.
func (i Identity) StatsKey() string {
	if i.DeviceID != "" {
		return i.DeviceID
	}
	return i.Account
}

type Entry struct {
	ID       string
	Identity Identity
	Session  *session.Session
	Rooms    *room.Coordinator
	Created  time.Time
}

func (e *Entry) close() {
	e.Rooms.Close()
	e.Session.Close()
}

// Factory builds the session and coordinator for a new entry.
type Factory func(ctx context.Context, id string, ident Identity) *Entry

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	Identity Identity
	Reply    chan *Entry
}

type GetSession struct {
	ID    string
	Reply chan *Entry
}

type RemoveSession struct {
	ID string
}

type CountSessions struct {
	Reply chan int
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (CountSessions) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*Entry
	factory  Factory
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(parent context.Context, factory Factory) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*Entry),
		factory:  factory,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				id := uuid.NewString()
				e := h.factory(h.ctx, id, msg.Identity)
				h.sessions[id] = e
				msg.Reply <- e

			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case RemoveSession:
				if e := h.sessions[msg.ID]; e != nil {
					e.close()
					delete(h.sessions, msg.ID)
				}

			case CountSessions:
				msg.Reply <- len(h.sessions)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, e := range h.sessions {
		e.close()
		delete(h.sessions, id)
	}
	h.cancel()
}

func (h *Hub) Create(ctx context.Context, ident Identity) (*Entry, error) {
	reply := make(chan *Entry, 1)
	if err := h.send(ctx, CreateSession{Identity: ident, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

// Get returns nil, nil for unknown ids.
func (h *Hub) Get(ctx context.Context, id string) (*Entry, error) {
	reply := make(chan *Entry, 1)
	if err := h.send(ctx, GetSession{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

func (h *Hub) Remove(ctx context.Context, id string) error {
	return h.send(ctx, RemoveSession{ID: id})
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountSessions{Reply: reply}); err != nil {
		return 0, err
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-h.done:
		return 0, ErrHubClosed
	}
}

func (h *Hub) Shutdown() {
	h.cancel()
	<-h.done
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

func (h *Hub) await(ctx context.Context, reply chan *Entry) (*Entry, error) {
	select {
	case e := <-reply:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubClosed
	}
}
