package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type playerStats struct {
	PlayerKey   string `gorm:"primaryKey;size:128"`
	GamesPlayed int    `gorm:"not null;default:0"`
	Wins        int    `gorm:"not null;default:0"`
	Losses      int    `gorm:"not null;default:0"`
	WinStreak   int    `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (playerStats) TableName() string { return "player_stats" }

func (p playerStats) stats() Stats {
	return Stats{GamesPlayed: p.GamesPlayed, Wins: p.Wins, Losses: p.Losses, WinStreak: p.WinStreak}
}

// GormStore persists stats in Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func OpenPostgres(ctx context.Context, dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open stats postgres: %w", err)
	}
	return NewGormStore(ctx, db)
}

// NewGormStore migrates the stats table on db.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&playerStats{}); err != nil {
		return nil, fmt.Errorf("migrate stats: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormStore) Get(ctx context.Context, key string) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}
	var row playerStats
	err := g.db.WithContext(ctx).First(&row, "player_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, err
	}
	return row.stats(), nil
}

func (g *GormStore) RecordResult(ctx context.Context, key string, r Result) (Stats, error) {
	if key == "" {
		return Stats{}, ErrEmptyKey
	}

	var next Stats
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row playerStats
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "player_key = ?", key).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		next = Apply(row.stats(), r)
		row = playerStats{
			PlayerKey:   key,
			GamesPlayed: next.GamesPlayed,
			Wins:        next.Wins,
			Losses:      next.Losses,
			WinStreak:   next.WinStreak,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_key"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return Stats{}, fmt.Errorf("save stats: %w", err)
	}
	return next, nil
}
