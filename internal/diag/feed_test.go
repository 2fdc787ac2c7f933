package diag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_KeepsMostRecent(t *testing.T) {
	f := NewFeed(DefaultCapacity, nil)
	for i := 0; i < 14; i++ {
		f.Add(LevelInfo, fmt.Sprintf("msg %d", i))
	}

	entries := f.Entries()
	require.Len(t, entries, DefaultCapacity)
	assert.Equal(t, "msg 4", entries[0].Msg)
	assert.Equal(t, "msg 13", entries[len(entries)-1].Msg)
}

func TestFeed_ResetAndCopy(t *testing.T) {
	f := NewFeed(0, nil)
	f.Add(LevelError, "boom")
	f.Add(LevelWarn, "careful")
	f.Reset(LevelSuccess, "fresh")

	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelSuccess, entries[0].Type)

	entries[0].Msg = "mutated"
	assert.Equal(t, "fresh", f.Entries()[0].Msg)
}
