package session

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/verbyte-backend/internal/diag"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
)

// Dispatch sends cmd and waits for the outcome. The returned error reports
// delivery problems only; engine rejections are in Result.Err.
func (s *Session) Dispatch(ctx context.Context, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)
	if err := s.send(ctx, Dispatch{Cmd: cmd, Reply: reply}); err != nil {
		return Result{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.done:
		return Result{}, ErrClosed
	}
}

func (s *Session) Logf(level diag.Level, format string, args ...any) {
	_ = s.send(s.ctx, Log{Level: level, Msg: fmt.Sprintf(format, args...)})
}

func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.done:
		return View{}, ErrClosed
	}
}

// Subscribe registers outbox for snapshots. The session closes outbox when
// it drops the client or shuts down.
func (s *Session) Subscribe(ctx context.Context, clientID string, outbox chan Snapshot) error {
	return s.send(ctx, Join{ClientID: clientID, Outbox: outbox})
}

func (s *Session) Unsubscribe(clientID string) {
	_ = s.send(s.ctx, Leave{ClientID: clientID})
}

func (s *Session) send(ctx context.Context, m Msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
}
