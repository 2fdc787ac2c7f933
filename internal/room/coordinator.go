package room

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/DoyleJ11/verbyte-backend/internal/diag"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
	"github.com/DoyleJ11/verbyte-backend/internal/ledger"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
	"github.com/DoyleJ11/verbyte-backend/internal/words"
	"go.uber.org/zap"
)

var ErrWalletRequired = errors.New("wallet connection required")
var ErrInvalidCode = errors.New("invalid room code")
var ErrJoinFeedLost = errors.New("join feed lost")
var ErrNotWon = errors.New("no won game to claim")
var ErrAlreadyClaimed = errors.New("victory already claimed")

const DefaultBotStartDelay = 3500 * time.Millisecond

const maxCodeAttempts = 5

type Session interface {
	Dispatch(ctx context.Context, cmd engine.Command) (session.Result, error)
	Logf(level diag.Level, format string, args ...any)
	View(ctx context.Context) (session.View, error)
}

// Catalog supplies fresh words and metadata for words read from the ledger.
type Catalog interface {
	words.Supplier
	Resolve(word string) words.WordData
}

type Config struct {
	PublicURL     string
	BotStartDelay time.Duration
	CallTimeout   time.Duration
}

// Coordinator moves one session between Lobby, Matchmaking and Playing for
// bot matches and ledger-backed rooms.
type Coordinator struct {
	sess    Session
	ledger  ledger.Ledger
	catalog Catalog
	cfg     Config
	log     *zap.Logger
	newCode func() (string, error)
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	stopWatch context.CancelFunc
	// claimed is the generation of the last game whose victory was claimed
	// or is being claimed.
	claimed uint64
}

func NewCoordinator(parent context.Context, sess Session, l ledger.Ledger, catalog Catalog, cfg Config, log *zap.Logger) *Coordinator {
	if cfg.BotStartDelay == 0 {
		cfg.BotStartDelay = DefaultBotStartDelay
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 2 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{
		sess:    sess,
		ledger:  l,
		catalog: catalog,
		cfg:     cfg,
		log:     log,
		newCode: GenerateCode,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// CreateRoom registers a fresh room with this account as host. The session
// stays in Lobby; the host enters matchmaking separately.
func (c *Coordinator) CreateRoom(ctx context.Context, account string) (string, error) {
	if account == "" {
		c.sess.Logf(diag.LevelError, "Wallet connection required.")
		return "", ErrWalletRequired
	}

	word, err := c.catalog.FetchWord(ctx)
	if err != nil {
		c.sess.Logf(diag.LevelError, "Word supply offline: %v", err)
		return "", err
	}

	var code string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err = c.newCode()
		if err != nil {
			break
		}
		err = c.ledger.CreateGame(ctx, account, code, word.Word)
		if !errors.Is(err, ledger.ErrRoomExists) {
			break
		}
		c.log.Debug("room code collision, regenerating", zap.String("room", code))
	}
	if err != nil {
		c.log.Warn("create room failed", zap.String("account", account), zap.Error(err))
		c.sess.Logf(diag.LevelError, "Node initialization failed: %v", err)
		return "", err
	}

	c.sess.Logf(diag.LevelSuccess, "Private Node %s initialized. Sync the Byte.", code)
	return code, nil
}

// JoinOrHost enters matchmaking. Without a code a bot match starts after
// BotStartDelay. With a code the local player becomes host or guest of the
// ledger room.
func (c *Coordinator) JoinOrHost(ctx context.Context, code string, local engine.Player) error {
	code = NormalizeCode(code)
	if code != "" {
		if !ValidCode(code) {
			c.sess.Logf(diag.LevelError, "Invalid node id %q.", code)
			return ErrInvalidCode
		}
		if local.ID == "" || local.ID == engine.LocalPlayerID {
			c.sess.Logf(diag.LevelError, "Wallet connection required.")
			return ErrWalletRequired
		}
	}

	res, err := c.sess.Dispatch(ctx, engine.Command{Type: engine.CmdEnterMatchmaking, Player: local, RoomCode: code})
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	gen := res.State.Generation
	me := res.State.Players[engine.LocalIndex]

	if code == "" {
		c.startBotMatch(gen, me)
		return nil
	}

	c.sess.Logf(diag.LevelWarn, "Incoming uplink request for Private Node: %s", code)
	room, err := c.ledger.Game(ctx, code)
	if err != nil {
		return c.fail(gen, err, "Node lookup failed: %v", err)
	}

	if ledger.SameAccount(room.Host, me.ID) {
		return c.host(ctx, gen, me, code)
	}
	return c.join(ctx, gen, me, room)
}

// host waits for a guest through the ledger's join stream. A guest that
// joined before the host arrived starts the match at once.
func (c *Coordinator) host(ctx context.Context, gen uint64, me engine.Player, code string) error {
	watchCtx, stop := c.watchContext()
	joins, err := c.ledger.SubscribeJoins(watchCtx, code)
	if err != nil {
		stop()
		return c.fail(gen, err, "Join feed unavailable: %v", err)
	}

	room, err := c.ledger.Game(ctx, code)
	if err != nil {
		stop()
		return c.fail(gen, err, "Node lookup failed: %v", err)
	}
	if room.HasGuest() && !ledger.SameAccount(room.Guest, me.ID) {
		stop()
		return c.startRoomMatch(ctx, gen, me, room, room.Guest)
	}

	go func() {
		defer stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case ev, ok := <-joins:
				if !ok {
					if watchCtx.Err() == nil {
						_ = c.fail(gen, ErrJoinFeedLost, "Join feed for node %s lost.", code)
					}
					return
				}
				if ev.RoomCode != code || ledger.SameAccount(ev.Player, me.ID) {
					continue
				}
				c.log.Info("challenger joined", zap.String("room", code), zap.String("account", ev.Player))
				callCtx, cancel := context.WithTimeout(c.ctx, c.cfg.CallTimeout)
				_ = c.startRoomMatch(callCtx, gen, me, room, ev.Player)
				cancel()
				return
			}
		}
	}()
	return nil
}

func (c *Coordinator) join(ctx context.Context, gen uint64, me engine.Player, room ledger.Room) error {
	if room.HasGuest() && !ledger.SameAccount(room.Guest, me.ID) {
		return c.fail(gen, ledger.ErrRoomFull, "Node %s is full.", room.Code)
	}

	if !room.HasGuest() {
		joined, err := c.ledger.JoinGame(ctx, me.ID, room.Code)
		if err != nil {
			return c.fail(gen, err, "Uplink to node %s failed: %v", room.Code, err)
		}
		room = joined
	}
	return c.startRoomMatch(ctx, gen, me, room, room.Host)
}

func (c *Coordinator) startRoomMatch(ctx context.Context, gen uint64, me engine.Player, room ledger.Room, opponent string) error {
	wd := c.catalog.Resolve(room.Word)
	res, err := c.sess.Dispatch(ctx, engine.Command{
		Type:     engine.CmdStartMatch,
		Gen:      gen,
		Players:  []engine.Player{me, RemotePlayer(opponent)},
		Word:     wd.Word,
		Category: wd.Category,
		Hint:     wd.Hint,
		RoomCode: room.Code,
	})
	if err != nil {
		return err
	}
	if errors.Is(res.Err, engine.ErrStaleGeneration) {
		return res.Err
	}
	if res.Err != nil {
		return c.fail(gen, res.Err, "Node %s data corrupted: %v", room.Code, res.Err)
	}
	return nil
}

func (c *Coordinator) startBotMatch(gen uint64, me engine.Player) {
	ctx, stop := c.watchContext()
	go func() {
		defer stop()

		t := time.NewTimer(c.cfg.BotStartDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		wd, err := c.catalog.FetchWord(ctx)
		if err != nil {
			_ = c.fail(gen, err, "Word supply offline: %v", err)
			return
		}
		c.sess.Logf(diag.LevelWarn, "Challenge received.")
		res, err := c.sess.Dispatch(ctx, engine.Command{
			Type:     engine.CmdStartMatch,
			Gen:      gen,
			Players:  []engine.Player{me, BotPlayer(strconv.FormatInt(c.now().UnixMilli(), 10))},
			Word:     wd.Word,
			Category: wd.Category,
			Hint:     wd.Hint,
		})
		if err != nil {
			if ctx.Err() == nil {
				_ = c.fail(gen, err, "Challenge delivery failed: %v", err)
			}
			return
		}
		if res.Err != nil && !errors.Is(res.Err, engine.ErrStaleGeneration) {
			_ = c.fail(gen, res.Err, "Challenge data corrupted: %v", res.Err)
		}
	}()
}

// fail reports err on the feed and reverts the session to Lobby, unless the
// session has moved on since gen.
func (c *Coordinator) fail(gen uint64, err error, format string, args ...any) error {
	c.log.Warn("room flow failed", zap.Error(err))
	c.sess.Logf(diag.LevelError, format, args...)

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	_, _ = c.sess.Dispatch(ctx, engine.Command{Type: engine.CmdReset, Gen: gen})
	return err
}

// ClaimVictory commits the session's current win to the ledger for account.
// Each won game can be claimed once; a failed claim may be retried.
func (c *Coordinator) ClaimVictory(ctx context.Context, account string) (string, error) {
	if account == "" {
		c.sess.Logf(diag.LevelError, "Wallet connection required.")
		return "", ErrWalletRequired
	}
	v, err := c.sess.View(ctx)
	if err != nil {
		return "", err
	}
	if v.State.Status != engine.StatusWon {
		return "", ErrNotWon
	}
	gen := v.State.Generation

	c.mu.Lock()
	if c.claimed == gen {
		c.mu.Unlock()
		return "", ErrAlreadyClaimed
	}
	prev := c.claimed
	c.claimed = gen
	c.mu.Unlock()

	c.sess.Logf(diag.LevelInfo, "Committing victory proof...")
	ref, err := c.ledger.CommitVictory(ctx, account, v.State.RoomCode)
	if err != nil {
		c.mu.Lock()
		if c.claimed == gen {
			c.claimed = prev
		}
		c.mu.Unlock()
		c.log.Warn("claim victory failed", zap.String("account", account), zap.Error(err))
		c.sess.Logf(diag.LevelError, "Victory commit failed: %v", err)
		return "", err
	}

	c.log.Info("victory committed", zap.String("account", account), zap.String("ref", ref))
	c.sess.Logf(diag.LevelSuccess, "Victory proof committed: %s", ref)
	return ref, nil
}

// Leave abandons any pending flow and returns the session to Lobby.
func (c *Coordinator) Leave(ctx context.Context) error {
	c.cancelWatch()
	res, err := c.sess.Dispatch(ctx, engine.Command{Type: engine.CmdReset})
	if err != nil {
		return err
	}
	return res.Err
}

func (c *Coordinator) ShareURL(code string) (string, error) {
	return ShareURL(c.cfg.PublicURL, code)
}

func (c *Coordinator) Close() {
	c.cancel()
}

// watchContext replaces the pending flow, if any, with a new cancellable one.
func (c *Coordinator) watchContext() (context.Context, context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatch != nil {
		c.stopWatch()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.stopWatch = cancel
	return ctx, cancel
}

func (c *Coordinator) cancelWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
}
