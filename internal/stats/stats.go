package stats

import (
	"context"
	"errors"
	"sync"
)

var ErrEmptyKey = errors.New("stats key is required")

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Stats is the lifetime record of one device or wallet.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	WinStreak   int `json:"winStreak"`
}

// Apply folds one finished game into s. A loss breaks the streak.
func Apply(s Stats, r Result) Stats {
	s.GamesPlayed++
	switch r {
	case ResultWin:
		s.Wins++
		s.WinStreak++
	case ResultLoss:
		s.Losses++
		s.WinStreak = 0
	}
	return s
}

type Store interface {
	Get(ctx context.Context, key string) (Stats, error)
	RecordResult(ctx context.Context, key string, r Result) (Stats, error)
}

type Memory struct {
	mu   sync.Mutex
	byID map[string]Stats
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]Stats)}
}

func (m *Memory) Get(ctx context.Context, key string) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[key], nil
}

func (m *Memory) RecordResult(ctx context.Context, key string, r Result) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := Apply(m.byID[key], r)
	m.byID[key] = next
	return next, nil
}
