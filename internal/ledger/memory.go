package ledger

import (
	"context"
	"fmt"
	"sync"
)

// Memory is a process-local ledger. Joins are broadcast to every subscriber
// of the room.
type Memory struct {
	mu        sync.Mutex
	rooms     map[string]Room
	victories []Victory
	joins     *joinFanout
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]Room),
		joins: newJoinFanout(),
	}
}

func (m *Memory) CreateGame(ctx context.Context, host, code, word string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if host == "" {
		return ErrMissingAccount
	}
	if word == "" {
		return ErrMissingWord
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[code]; ok {
		return ErrRoomExists
	}
	m.rooms[code] = Room{Code: code, Host: host, Word: word}
	return nil
}

func (m *Memory) JoinGame(ctx context.Context, guest, code string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if err := checkJoin(r, guest); err != nil {
		return Room{}, err
	}
	if r.HasGuest() {
		return r, nil
	}

	r.Guest = guest
	m.rooms[code] = r

	m.joins.publish(PlayerJoined{RoomCode: code, Player: guest})
	return r, nil
}

func (m *Memory) Game(ctx context.Context, code string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return r, nil
}

func (m *Memory) SubscribeJoins(ctx context.Context, code string) (<-chan PlayerJoined, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := m.joins.add(code)
	go func() {
		<-ctx.Done()
		m.joins.remove(code, ch)
	}()
	return ch, nil
}

// Subscribers reports how many join subscriptions are open for code.
func (m *Memory) Subscribers(code string) int {
	return m.joins.count(code)
}

func (m *Memory) CommitVictory(ctx context.Context, account, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if account == "" {
		return "", ErrMissingAccount
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v := Victory{Account: account, RoomCode: code, Ref: fmt.Sprintf("memory-victory-%d", len(m.victories)+1)}
	m.victories = append(m.victories, v)
	return v.Ref, nil
}

// Victories lists the victories committed for account.
func (m *Memory) Victories(account string) []Victory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Victory
	for _, v := range m.victories {
		if SameAccount(v.Account, account) {
			out = append(out, v)
		}
	}
	return out
}
