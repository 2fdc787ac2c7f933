package session

import (
	"github.com/DoyleJ11/verbyte-backend/internal/diag"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
)

type Msg interface{ isSessionMsg() }

// Dispatch applies Cmd. Reply, when set, receives the outcome.
type Dispatch struct {
	Cmd   engine.Command
	Reply chan Result
}

func (Dispatch) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

// Log appends a line to the diagnostic feed.
type Log struct {
	Level diag.Level
	Msg   string
}

func (Log) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type timerKind int

const (
	timerTick timerKind = iota
	timerBot
	timerStun
)

type timerFired struct {
	kind timerKind
	gen  uint64
}

func (timerFired) isSessionMsg() {}

type tauntReady struct {
	seq  uint64
	text string
}

func (tauntReady) isSessionMsg() {}

type Result struct {
	Events []engine.Event
	State  engine.State
	Err    error
}

type Snapshot struct {
	Version int          `json:"version"`
	State   engine.State `json:"state"`
	Logs    []diag.Entry `json:"logs"`
	Taunt   string       `json:"taunt"`
}

type View struct {
	Version    int          `json:"version"`
	NumClients int          `json:"numClients"`
	State      engine.State `json:"state"`
	Logs       []diag.Entry `json:"logs"`
	Taunt      string       `json:"taunt"`
}
