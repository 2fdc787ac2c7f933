package diag

import (
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

const DefaultCapacity = 10

type Entry struct {
	Msg  string    `json:"msg"`
	Type Level     `json:"type"`
	At   time.Time `json:"at"`
}

// Feed is the rolling, user-visible log of a session. It keeps only the most
// recent entries and is not safe for concurrent use.
type Feed struct {
	entries  []Entry
	capacity int
	log      *zap.Logger
}

func NewFeed(capacity int, log *zap.Logger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{capacity: capacity, log: log}
}

func (f *Feed) Add(level Level, msg string) {
	f.entries = append(f.entries, Entry{Msg: msg, Type: level, At: time.Now()})
	if over := len(f.entries) - f.capacity; over > 0 {
		f.entries = append(f.entries[:0:0], f.entries[over:]...)
	}

	switch level {
	case LevelError:
		f.log.Error(msg)
	case LevelWarn:
		f.log.Warn(msg)
	default:
		f.log.Info(msg, zap.String("level", string(level)))
	}
}

// Reset replaces the feed contents with a single entry.
func (f *Feed) Reset(level Level, msg string) {
	f.entries = nil
	f.Add(level, msg)
}

func (f *Feed) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}
