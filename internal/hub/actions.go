package hub

import (
	"context"

	"github.com/DoyleJ11/verbyte-backend/internal/engine"
	"github.com/DoyleJ11/verbyte-backend/internal/room"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
)

// Player is the seat-0 participant for this entry's identity.
func (e *Entry) Player(avatar string) engine.Player {
	return room.LocalPlayer(e.Identity.Account, avatar)
}

func (e *Entry) Guess(ctx context.Context, letter string) (session.Result, error) {
	return e.Session.Dispatch(ctx, engine.Command{Type: engine.CmdGuess, Letter: letter})
}

func (e *Entry) PowerUp(ctx context.Context, kind string) (session.Result, error) {
	return e.Session.Dispatch(ctx, engine.Command{Type: engine.CmdUsePowerUp, PowerUp: engine.PowerUp(kind)})
}

// CreateRoom registers a room hosted by this entry's wallet and returns its
// code and share link.
func (e *Entry) CreateRoom(ctx context.Context) (string, string, error) {
	code, err := e.Rooms.CreateRoom(ctx, e.Identity.Account)
	if err != nil {
		return "", "", err
	}
	link, err := e.Rooms.ShareURL(code)
	if err != nil {
		return code, "", err
	}
	return code, link, nil
}

func (e *Entry) Matchmake(ctx context.Context, code, avatar string) error {
	return e.Rooms.JoinOrHost(ctx, code, e.Player(avatar))
}

// ClaimVictory commits the current win for this entry's wallet and returns
// the ledger ref.
func (e *Entry) ClaimVictory(ctx context.Context) (string, error) {
	return e.Rooms.ClaimVictory(ctx, e.Identity.Account)
}

func (e *Entry) PlayAgain(ctx context.Context) error {
	return e.Rooms.Leave(ctx)
}
