package app

import (
	"context"
	"fmt"
	"time"

	"github.com/DoyleJ11/verbyte-backend/internal/config"
	"github.com/DoyleJ11/verbyte-backend/internal/hub"
	"github.com/DoyleJ11/verbyte-backend/internal/ledger"
	"github.com/DoyleJ11/verbyte-backend/internal/room"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
	"github.com/DoyleJ11/verbyte-backend/internal/stats"
	"github.com/DoyleJ11/verbyte-backend/internal/taunt"
	"github.com/DoyleJ11/verbyte-backend/internal/words"
	"go.uber.org/zap"
)

// App holds the shared backends every session is built from.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Ledger  ledger.Ledger
	Stats   stats.Store
	Words   *words.Catalog
	Taunts  taunt.Supplier
	Session session.Config
	Rooms   room.Config

	closers []func()
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Words:  words.NewDefaultCatalog(),
		Rooms:  room.Config{PublicURL: cfg.PublicURL},
	}

	a.Session = session.DefaultConfig()
	a.Session.BotFireProbability = cfg.BotFireProbability

	if cfg.GeminiAPIKey != "" {
		a.Taunts = taunt.NewGemini(taunt.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	} else {
		log.Info("GEMINI_API_KEY not set, taunts use the fallback line")
	}

	if err := a.openLedger(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openStats(ctx); err != nil {
		a.Close()
		return nil, err
	}

	log.Info("backends ready",
		zap.String("ledger", cfg.LedgerDriver),
		zap.String("stats", cfg.StatsDriver),
		zap.Int("words", a.Words.Len()),
	)
	return a, nil
}

func (a *App) openLedger(ctx context.Context) error {
	switch a.Config.LedgerDriver {
	case config.DriverPostgres:
		pg, err := ledger.NewPostgres(ctx, a.Config.DatabaseURL, a.Log.Named("ledger"))
		if err != nil {
			return fmt.Errorf("open postgres ledger: %w", err)
		}
		a.Ledger = pg
		a.closers = append(a.closers, pg.Close)
	case config.DriverEVM:
		evm, err := ledger.DialEVM(ctx, ledger.EVMConfig{
			RPCURL:     a.Config.EVMRPCURL,
			Contract:   a.Config.EVMContract,
			PrivateKey: a.Config.EVMPrivateKey,
			ChainID:    a.Config.EVMChainID,
		}, a.Log.Named("ledger"))
		if err != nil {
			return fmt.Errorf("open evm ledger: %w", err)
		}
		a.Log.Info("evm ledger relaying", zap.String("account", evm.Account()))
		a.Ledger = evm
	default:
		a.Ledger = ledger.NewMemory()
	}
	return nil
}

func (a *App) openStats(ctx context.Context) error {
	switch a.Config.StatsDriver {
	case config.DriverSQLite:
		st, err := stats.OpenSQLite(ctx, a.Config.StatsPath)
		if err != nil {
			return err
		}
		a.Stats = st
		a.closers = append(a.closers, func() { _ = st.Close() })
	case config.DriverPostgres:
		st, err := stats.OpenPostgres(ctx, a.Config.DatabaseURL)
		if err != nil {
			return err
		}
		a.Stats = st
		a.closers = append(a.closers, func() { _ = st.Close() })
	default:
		a.Stats = stats.NewMemory()
	}
	return nil
}

// NewEntry is the hub factory: one session and coordinator per player.
func (a *App) NewEntry(ctx context.Context, id string, ident hub.Identity) *hub.Entry {
	cfg := a.Session
	cfg.StatsKey = ident.StatsKey()

	log := a.Log.With(zap.String("session_id", id))
	s := session.New(ctx, id, cfg, session.Deps{
		Taunts: a.Taunts,
		Stats:  a.Stats,
		Log:    a.Log,
	})
	c := room.NewCoordinator(ctx, s, a.Ledger, a.Words, a.Rooms, log.Named("rooms"))

	log.Info("session created", zap.String("account", ident.Account))
	return &hub.Entry{ID: id, Identity: ident, Session: s, Rooms: c, Created: time.Now()}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
