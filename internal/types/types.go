package types

import (
	"github.com/DoyleJ11/verbyte-backend/internal/diag"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
)

// Client message types.
const (
	MsgGuess      = "Guess"
	MsgPowerUp    = "PowerUp"
	MsgCreateRoom = "CreateRoom"
	MsgMatchmake  = "Matchmake"
	MsgPlayAgain  = "PlayAgain"
	MsgClaim      = "ClaimVictory"
)

// Server message types.
const (
	MsgStateSnapshot = "StateSnapshot"
	MsgRoomCreated   = "RoomCreated"
	MsgVictory       = "VictoryCommitted"
	MsgError         = "Error"
)

type ClientMessage struct {
	Type   string `json:"type"`
	Letter string `json:"letter,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Room   string `json:"room,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type ServerMessage struct {
	Type     string        `json:"type"` // "StateSnapshot" | "RoomCreated" | "VictoryCommitted" | "Error"
	Version  int           `json:"version,omitempty"`
	State    *engine.State `json:"state,omitempty"`
	Logs     []diag.Entry  `json:"logs,omitempty"`
	Taunt    string        `json:"taunt,omitempty"`
	Room     string        `json:"room,omitempty"`
	ShareURL string        `json:"share_url,omitempty"`
	TxRef    string        `json:"tx_ref,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type CreateSessionRequest struct {
	Account  string `json:"account,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

type MatchmakingRequest struct {
	Room   string `json:"room,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type GuessRequest struct {
	Letter string `json:"letter"`
}

type PowerUpRequest struct {
	Kind string `json:"kind"`
}

type RoomResponse struct {
	Code     string `json:"code"`
	ShareURL string `json:"share_url"`
}

type ClaimResponse struct {
	TxRef string `json:"tx_ref"`
}

// ActionResponse reports the state after an input. Ignored inputs leave the
// state unchanged and carry the reason.
type ActionResponse struct {
	Accepted bool         `json:"accepted"`
	Reason   string       `json:"reason,omitempty"`
	State    engine.State `json:"state"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
