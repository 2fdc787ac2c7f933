package ledger

import (
	"context"
	"errors"
	"strings"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomExists = errors.New("room already exists")
var ErrRoomFull = errors.New("room full")
var ErrHostCannotJoin = errors.New("host cannot join own room")
var ErrAccountMismatch = errors.New("account not controlled by this ledger")
var ErrMissingAccount = errors.New("account is required")
var ErrMissingWord = errors.New("word is required")

// Room is the authoritative record of one room. Guest is empty until a
// second account joins.
type Room struct {
	Code  string `json:"code"`
	Host  string `json:"host"`
	Guest string `json:"guest,omitempty"`
	Word  string `json:"-"`
}

func (r Room) HasGuest() bool {
	return r.Guest != ""
}

type PlayerJoined struct {
	RoomCode string
	Player   string
}

// Victory is a won game committed to the ledger. RoomCode is empty for bot
// matches. Ref identifies the record, a transaction hash on chain.
type Victory struct {
	Account  string `json:"account"`
	RoomCode string `json:"room_code,omitempty"`
	Ref      string `json:"ref"`
}

// Ledger is the shared record rooms are coordinated through. Every call may
// fail and callers treat failures as recoverable.
type Ledger interface {
	CreateGame(ctx context.Context, host, code, word string) error
	// JoinGame seats guest and returns the room once the join is confirmed.
	JoinGame(ctx context.Context, guest, code string) (Room, error)
	Game(ctx context.Context, code string) (Room, error)
	// SubscribeJoins streams join events for code until ctx is done, then
	// closes the channel.
	SubscribeJoins(ctx context.Context, code string) (<-chan PlayerJoined, error)
	// CommitVictory records a win for account and returns the record's ref.
	CommitVictory(ctx context.Context, account, code string) (string, error)
}

// SameAccount compares wallet addresses ignoring hex case.
func SameAccount(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// checkJoin applies the join rules shared by every implementation.
func checkJoin(r Room, guest string) error {
	switch {
	case guest == "":
		return ErrMissingAccount
	case SameAccount(r.Host, guest):
		return ErrHostCannotJoin
	case r.HasGuest() && !SameAccount(r.Guest, guest):
		return ErrRoomFull
	}
	return nil
}
