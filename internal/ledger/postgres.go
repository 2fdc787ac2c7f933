package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const joinChannel = "verbyte_player_joined"

const postgresSchema = `CREATE TABLE IF NOT EXISTS verbyte_rooms (
	code       TEXT PRIMARY KEY,
	host       TEXT NOT NULL,
	guest      TEXT,
	word       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	joined_at  TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS verbyte_victories (
	id         BIGSERIAL PRIMARY KEY,
	account    TEXT NOT NULL,
	room_code  TEXT,
	claimed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps rooms in a table and fans join events out with
// LISTEN/NOTIFY, so several server processes can share rooms. One dedicated
// connection listens for every room; pool connections are never held while
// waiting.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listening bool
	joins     *joinFanout
}

func NewPostgres(ctx context.Context, connString string, log *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping ledger db: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	lctx, cancel := context.WithCancel(context.Background())
	return &Postgres{pool: pool, log: log, ctx: lctx, cancel: cancel, joins: newJoinFanout()}, nil
}

func (p *Postgres) Close() {
	p.cancel()
	p.pool.Close()
}

func (p *Postgres) CreateGame(ctx context.Context, host, code, word string) error {
	if host == "" {
		return ErrMissingAccount
	}
	if word == "" {
		return ErrMissingWord
	}

	_, err := p.pool.Exec(ctx, "INSERT INTO verbyte_rooms(code, host, word) VALUES($1, $2, $3)", code, host, word)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRoomExists
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (p *Postgres) Game(ctx context.Context, code string) (Room, error) {
	return p.game(ctx, p.pool, code, false)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *Postgres) game(ctx context.Context, q rowQuerier, code string, lock bool) (Room, error) {
	query := "SELECT host, COALESCE(guest, ''), word FROM verbyte_rooms WHERE code = $1"
	if lock {
		query += " FOR UPDATE"
	}

	r := Room{Code: code}
	err := q.QueryRow(ctx, query, code).Scan(&r.Host, &r.Guest, &r.Word)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrRoomNotFound
		}
		return Room{}, fmt.Errorf("read room: %w", err)
	}
	return r, nil
}

func (p *Postgres) JoinGame(ctx context.Context, guest, code string) (Room, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Room{}, err
	}
	defer tx.Rollback(ctx)

	r, err := p.game(ctx, tx, code, true)
	if err != nil {
		return Room{}, err
	}
	if err := checkJoin(r, guest); err != nil {
		return Room{}, err
	}
	if r.HasGuest() {
		return r, nil
	}

	if _, err := tx.Exec(ctx, "UPDATE verbyte_rooms SET guest = $2, joined_at = now() WHERE code = $1", code, guest); err != nil {
		return Room{}, fmt.Errorf("join room: %w", err)
	}
	// Delivered on commit.
	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", joinChannel, code+":"+guest); err != nil {
		return Room{}, fmt.Errorf("notify join: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Room{}, fmt.Errorf("commit join: %w", err)
	}

	r.Guest = guest
	return r, nil
}

func (p *Postgres) SubscribeJoins(ctx context.Context, code string) (<-chan PlayerJoined, error) {
	p.mu.Lock()
	if !p.listening {
		if err := p.startListener(ctx); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	ch := p.joins.add(code)
	p.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-p.ctx.Done():
		}
		p.joins.remove(code, ch)
	}()
	return ch, nil
}

// startListener opens the listening connection. Callers hold p.mu.
func (p *Postgres) startListener(ctx context.Context) error {
	conn, err := pgx.ConnectConfig(ctx, p.pool.Config().ConnConfig)
	if err != nil {
		return fmt.Errorf("connect join listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+joinChannel); err != nil {
		_ = conn.Close(context.Background())
		return fmt.Errorf("listen for joins: %w", err)
	}
	p.listening = true
	go p.listen(conn)
	return nil
}

// listen delivers notifications until the connection fails or the ledger
// closes. Then every open subscription is closed; the next SubscribeJoins
// reconnects.
func (p *Postgres) listen(conn *pgx.Conn) {
	defer conn.Close(context.Background())

	for {
		n, err := conn.WaitForNotification(p.ctx)
		if err != nil {
			if p.ctx.Err() == nil {
				p.log.Warn("join listener ended", zap.Error(err))
			}
			p.mu.Lock()
			p.listening = false
			p.joins.closeAll()
			p.mu.Unlock()
			return
		}
		ev, ok := parseJoinPayload(n.Payload)
		if !ok {
			p.log.Debug("ignoring join payload", zap.String("payload", n.Payload))
			continue
		}
		p.joins.publish(ev)
	}
}

func (p *Postgres) CommitVictory(ctx context.Context, account, code string) (string, error) {
	if account == "" {
		return "", ErrMissingAccount
	}
	var id int64
	err := p.pool.QueryRow(ctx,
		"INSERT INTO verbyte_victories(account, room_code) VALUES($1, NULLIF($2, '')) RETURNING id",
		account, code,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("commit victory: %w", err)
	}
	return fmt.Sprintf("pg-victory-%d", id), nil
}

func parseJoinPayload(payload string) (PlayerJoined, bool) {
	code, player, ok := strings.Cut(payload, ":")
	if !ok || code == "" || player == "" {
		return PlayerJoined{}, false
	}
	return PlayerJoined{RoomCode: code, Player: player}, true
}
