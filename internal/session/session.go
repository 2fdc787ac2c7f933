package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/DoyleJ11/verbyte-backend/internal/diag"
	"github.com/DoyleJ11/verbyte-backend/internal/engine"
	"github.com/DoyleJ11/verbyte-backend/internal/stats"
	"github.com/DoyleJ11/verbyte-backend/internal/taunt"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("session closed")

type Config struct {
	TickInterval       time.Duration
	BotInterval        time.Duration
	StunDuration       time.Duration
	BotFireProbability float64
	FeedCapacity       int
	// StatsKey identifies the device or wallet results are recorded under.
	// Empty disables recording.
	StatsKey string
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       time.Second,
		BotInterval:        5 * time.Second,
		StunDuration:       1500 * time.Millisecond,
		BotFireProbability: 0.06,
		FeedCapacity:       diag.DefaultCapacity,
	}
}

type Deps struct {
	Taunts taunt.Supplier
	Stats  stats.Store
	Log    *zap.Logger
	Rand   *rand.Rand
	Now    func() time.Time
}

// Session owns one engine.State. Every mutation, including timer firings,
// goes through the inbox and is applied by the loop goroutine.
type Session struct {
	id      string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	feed    *diag.Feed
	taunt   string
	seq     uint64

	cfg  Config
	deps Deps
	log  *zap.Logger

	stopTimers context.CancelFunc
	timersCtx  context.Context

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, id string, cfg Config, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)

	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Log.With(zap.String("session_id", id))

	s := &Session{
		id:      id,
		inbox:   make(chan Msg, 64),
		state:   engine.NewEmptyState(),
		clients: make(map[string]chan Snapshot),
		feed:    diag.NewFeed(cfg.FeedCapacity, log),
		taunt:   taunt.Initial,
		cfg:     cfg,
		deps:    deps,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Inbox exposes the mailbox so the transport layer can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Close() {
	s.cancel()
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- s.snapshot():
				default:
				}

			case Leave:
				delete(s.clients, msg.ClientID)

			case Dispatch:
				res := s.apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case Log:
				s.feed.Add(msg.Level, msg.Msg)
				s.publish()

			case timerFired:
				s.onTimer(msg)

			case tauntReady:
				if msg.seq != s.seq {
					break
				}
				s.taunt = msg.text
				s.publish()

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state.Clone(),
					Logs:       s.feed.Entries(),
					Taunt:      s.taunt,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs one command against the current state. Rejected commands leave
// state and version untouched and are not broadcast.
func (s *Session) apply(cmd engine.Command) Result {
	if cmd.Now.IsZero() {
		cmd.Now = s.deps.Now()
	}

	events, next, err := engine.Apply(s.state, cmd)
	if err != nil {
		return Result{State: s.state.Clone(), Err: err}
	}

	prev := s.state
	s.state = next
	s.react(prev, events)
	s.publish()
	return Result{Events: events, State: s.state.Clone()}
}

func (s *Session) react(prev engine.State, events []engine.Event) {
	cur := s.state
	if prev.Status == engine.StatusPlaying && cur.Status != engine.StatusPlaying {
		s.cancelTimers()
	}

	for _, ev := range events {
		switch ev.Type {
		case engine.EvtMatchmakingStarted:
			if cur.RoomCode != "" {
				s.feed.Add(diag.LevelInfo, fmt.Sprintf("Awaiting challenger in Node %s...", cur.RoomCode))
			} else {
				s.feed.Add(diag.LevelInfo, "Scanning for network challengers...")
			}

		case engine.EvtMatchStarted:
			if cur.RoomCode != "" {
				s.feed.Reset(diag.LevelInfo, fmt.Sprintf("System: Room %s Secure. Decrypting...", cur.RoomCode))
			} else {
				s.feed.Reset(diag.LevelInfo, "System: Uplink secure. Decrypting...")
			}
			s.startTimers(cur)
			s.fetchTaunt(taunt.StatusGameStart, engine.InitialHP)

		case engine.EvtVowelsScanned:
			s.feed.Add(diag.LevelInfo, "Vowel Scan complete.")

		case engine.EvtStunned:
			s.feed.Add(diag.LevelWarn, "Subsystem repair active.")
			s.after(s.cfg.StunDuration, timerStun, cur.Generation)

		case engine.EvtStunCleared:
			s.feed.Add(diag.LevelSuccess, "Reboot complete.")

		case engine.EvtGameWon:
			if ev.Reason == engine.ReasonOpponentDown {
				s.feed.Add(diag.LevelSuccess, "Opponent link severed. Node ownership confirmed.")
			} else {
				s.feed.Add(diag.LevelSuccess, "Decrypted. Victory committed.")
			}
			s.recordResult(stats.ResultWin)
			s.fetchTaunt(taunt.StatusGameWon, localHP(cur))

		case engine.EvtGameLost:
			s.feed.Add(diag.LevelError, "Terminal failure. Node offline.")
			s.recordResult(stats.ResultLoss)
			s.fetchTaunt(taunt.StatusGameLost, localHP(cur))

		case engine.EvtReset:
			s.seq++
			s.taunt = taunt.Initial
		}
	}
}

func (s *Session) onTimer(msg timerFired) {
	if msg.gen != s.state.Generation {
		return
	}

	var res Result
	switch msg.kind {
	case timerTick:
		res = s.apply(engine.Command{Type: engine.CmdTick, Gen: msg.gen})
	case timerStun:
		res = s.apply(engine.Command{Type: engine.CmdClearStun, Gen: msg.gen})
	case timerBot:
		if !engine.BotActive(s.state) || s.deps.Rand.Float64() >= s.cfg.BotFireProbability {
			return
		}
		letters := engine.Unguessed(s.state)
		if len(letters) == 0 {
			return
		}
		letter := letters[s.deps.Rand.IntN(len(letters))]
		res = s.apply(engine.Command{Type: engine.CmdBotGuess, Gen: msg.gen, Letter: letter})
	}
	if res.Err != nil && !errors.Is(res.Err, engine.ErrNotStunned) {
		s.log.Debug("timer command rejected", zap.Int("kind", int(msg.kind)), zap.Error(res.Err))
	}
}

// startTimers arms the Playing-scoped timers. They all stop when the session
// leaves Playing.
func (s *Session) startTimers(st engine.State) {
	s.cancelTimers()
	s.timersCtx, s.stopTimers = context.WithCancel(s.ctx)

	go s.every(s.timersCtx, s.cfg.TickInterval, timerTick, st.Generation)
	if engine.BotActive(st) {
		go s.every(s.timersCtx, s.cfg.BotInterval, timerBot, st.Generation)
	}
}

func (s *Session) cancelTimers() {
	if s.stopTimers != nil {
		s.stopTimers()
		s.stopTimers = nil
		s.timersCtx = nil
	}
}

func (s *Session) every(ctx context.Context, d time.Duration, kind timerKind, gen uint64) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.post(ctx, timerFired{kind: kind, gen: gen}) {
				return
			}
		}
	}
}

func (s *Session) after(d time.Duration, kind timerKind, gen uint64) {
	ctx := s.timersCtx
	if ctx == nil {
		return
	}
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			s.post(ctx, timerFired{kind: kind, gen: gen})
		}
	}()
}

func (s *Session) post(ctx context.Context, m Msg) bool {
	select {
	case s.inbox <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Session) fetchTaunt(status string, hp int) {
	s.seq++
	seq := s.seq
	supplier := s.deps.Taunts
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
		defer cancel()
		text := taunt.Fetch(ctx, supplier, s.log, status, hp)
		s.post(s.ctx, tauntReady{seq: seq, text: text})
	}()
}

func (s *Session) recordResult(r stats.Result) {
	if s.deps.Stats == nil || s.cfg.StatsKey == "" {
		return
	}
	store, key := s.deps.Stats, s.cfg.StatsKey
	go func() {
		// A closing session still records the finished game.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
		defer cancel()
		if _, err := store.RecordResult(ctx, key, r); err != nil {
			s.log.Error("record stats failed", zap.String("result", string(r)), zap.Error(err))
		}
	}()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{Version: s.version, State: s.state.Clone(), Logs: s.feed.Entries(), Taunt: s.taunt}
}

func (s *Session) publish() {
	s.version++
	s.broadcast(s.snapshot())
}

func (s *Session) shutdown() {
	s.cancelTimers()
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func localHP(st engine.State) int {
	if p, ok := st.Local(); ok {
		return p.HP
	}
	return 0
}
