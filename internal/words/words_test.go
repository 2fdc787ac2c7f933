package words

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/verbyte-backend/internal/engine"
)

func TestDefaultCatalog_Shape(t *testing.T) {
	c := NewDefaultCatalog()
	assert.GreaterOrEqual(t, c.Len(), 100)
	assert.Len(t, c.Categories(), 20)

	for _, e := range builtin {
		assert.True(t, engine.ValidWord(e.Word), "word %q", e.Word)
		assert.Equal(t, Normalize(e.Word), e.Word)
		assert.NotEmpty(t, e.Category)
		assert.NotEmpty(t, e.Hint)
	}
}

func TestFetchWord_Deterministic(t *testing.T) {
	entries := []WordData{
		{Word: "tiger", Category: "Animals", Hint: "Big striped cat"},
		{Word: "PIZZA", Category: "Food", Hint: "Cheesy Italian dish"},
	}
	a := NewCatalog(entries, rand.New(rand.NewPCG(1, 2)))
	b := NewCatalog(entries, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 10; i++ {
		wa, err := a.FetchWord(context.Background())
		require.NoError(t, err)
		wb, err := b.FetchWord(context.Background())
		require.NoError(t, err)
		assert.Equal(t, wa, wb)
		assert.Contains(t, []string{"TIGER", "PIZZA"}, wa.Word)
	}
}

func TestFetchWord_Errors(t *testing.T) {
	_, err := NewCatalog(nil, nil).FetchWord(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDefaultCatalog().FetchWord(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	c := NewDefaultCatalog()

	w := c.Resolve("tiger")
	assert.Equal(t, "Animals", w.Category)
	assert.Equal(t, "Big striped cat", w.Hint)

	w = c.Resolve("blockchain")
	assert.Equal(t, "BLOCKCHAIN", w.Word)
	assert.Equal(t, FallbackCategory, w.Category)
}
