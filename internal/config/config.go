package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverEVM      = "evm"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string
	PublicURL string

	LedgerDriver string
	DatabaseURL  string

	StatsDriver string
	StatsPath   string

	EVMRPCURL     string
	EVMContract   string
	EVMPrivateKey string
	EVMChainID    int64

	GeminiAPIKey string
	GeminiModel  string

	BotFireProbability float64
}

// Parse reads flags, falling back to the environment and then defaults.
// Variables from a .env file are loaded first and never override ones already
// set in the process environment.
func Parse(args []string) (Config, error) {
	var cfg Config
	var envFile string
	var port int
	var chainID int64
	var prob float64

	flags := flag.NewFlagSet("verbyte", flag.ContinueOnError)
	flags.StringVar(&envFile, "env", ".env", "dotenv file to load")
	flags.IntVar(&port, "p", 0, "Server port")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", "", "json or console")
	flags.StringVar(&cfg.PublicURL, "public-url", "", "Base URL share links point at")
	flags.StringVar(&cfg.LedgerDriver, "ledger", "", "Room ledger driver (memory, postgres or evm)")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "PostgreSQL connection string")
	flags.StringVar(&cfg.StatsDriver, "stats", "", "Stats driver (memory, sqlite or postgres)")
	flags.StringVar(&cfg.StatsPath, "stats-path", "", "SQLite stats file")
	flags.StringVar(&cfg.EVMRPCURL, "rpc", "", "EVM RPC endpoint")
	flags.StringVar(&cfg.EVMContract, "contract", "", "Game contract address")
	flags.Int64Var(&chainID, "chain-id", 0, "EVM chain id")
	flags.StringVar(&cfg.GeminiModel, "gemini-model", "", "Gemini model for taunts")
	flags.Float64Var(&prob, "bot-p", -1, "Bot fire probability per bot tick")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var err error
	if cfg.Port, err = intOr(port, "PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.EVMChainID, err = int64Or(chainID, "EVM_CHAIN_ID", 8453); err != nil {
		return Config{}, err
	}
	if cfg.BotFireProbability, err = probOr(prob, "BOT_FIRE_PROBABILITY", 0.06); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = stringOr(cfg.LogLevel, "LOG_LEVEL", "info")
	cfg.LogFormat = stringOr(cfg.LogFormat, "LOG_FORMAT", "json")
	cfg.PublicURL = stringOr(cfg.PublicURL, "PUBLIC_URL", "http://localhost:5173/")
	cfg.LedgerDriver = stringOr(cfg.LedgerDriver, "LEDGER_DRIVER", DriverMemory)
	cfg.DatabaseURL = stringOr(cfg.DatabaseURL, "DATABASE_URL", "")
	cfg.StatsDriver = stringOr(cfg.StatsDriver, "STATS_DRIVER", DriverMemory)
	cfg.StatsPath = stringOr(cfg.StatsPath, "STATS_PATH", "data/verbyte.db")
	cfg.EVMRPCURL = stringOr(cfg.EVMRPCURL, "EVM_RPC_URL", "")
	cfg.EVMContract = stringOr(cfg.EVMContract, "EVM_CONTRACT", "")
	cfg.GeminiModel = stringOr(cfg.GeminiModel, "GEMINI_MODEL", "")

	// Secrets come from the environment only.
	cfg.EVMPrivateKey = os.Getenv("EVM_PRIVATE_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.LedgerDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres ledger requires DATABASE_URL (or -d)")
		}
	case DriverEVM:
		if c.EVMRPCURL == "" || c.EVMContract == "" || c.EVMPrivateKey == "" {
			return errors.New("evm ledger requires EVM_RPC_URL, EVM_CONTRACT and EVM_PRIVATE_KEY")
		}
	default:
		return fmt.Errorf("unknown ledger driver %q", c.LedgerDriver)
	}

	switch c.StatsDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.StatsPath == "" {
			return errors.New("sqlite stats require STATS_PATH")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres stats require DATABASE_URL (or -d)")
		}
	default:
		return fmt.Errorf("unknown stats driver %q", c.StatsDriver)
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func stringOr(v, env, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return def
}

func intOr(v int, env string, def int) (int, error) {
	if v != 0 {
		return v, nil
	}
	if e := os.Getenv(env); e != "" {
		n, err := strconv.Atoi(e)
		if err != nil {
			return 0, fmt.Errorf("invalid %s env variable", env)
		}
		return n, nil
	}
	return def, nil
}

func int64Or(v int64, env string, def int64) (int64, error) {
	if v != 0 {
		return v, nil
	}
	if e := os.Getenv(env); e != "" {
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s env variable", env)
		}
		return n, nil
	}
	return def, nil
}

func probOr(v float64, env string, def float64) (float64, error) {
	if v < 0 {
		v = def
		if e := os.Getenv(env); e != "" {
			p, err := strconv.ParseFloat(e, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid %s env variable", env)
			}
			v = p
		}
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("bot fire probability %v outside [0,1]", v)
	}
	return v, nil
}
