package words

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrEmptyCatalog = errors.New("word catalog is empty")

// FallbackCategory labels ledger words that are not in the catalog.
const FallbackCategory = "Private Node"

type WordData struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Hint     string `json:"hint"`
}

type Supplier interface {
	FetchWord(ctx context.Context) (WordData, error)
}

// Catalog is a fixed in-memory word list with uniform random selection.
type Catalog struct {
	mu      sync.Mutex
	rng     *rand.Rand
	entries []WordData
	byWord  map[string]WordData
}

var upper = cases.Upper(language.Und)

// Normalize upper-cases a word and strips surrounding space.
func Normalize(word string) string {
	return upper.String(strings.TrimSpace(word))
}

func NewCatalog(entries []WordData, rng *rand.Rand) *Catalog {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &Catalog{rng: rng, byWord: make(map[string]WordData, len(entries))}
	for _, e := range entries {
		e.Word = Normalize(e.Word)
		if e.Word == "" {
			continue
		}
		c.entries = append(c.entries, e)
		c.byWord[e.Word] = e
	}
	return c
}

func NewDefaultCatalog() *Catalog {
	return NewCatalog(builtin, nil)
}

func (c *Catalog) FetchWord(ctx context.Context) (WordData, error) {
	if err := ctx.Err(); err != nil {
		return WordData{}, err
	}
	if len(c.entries) == 0 {
		return WordData{}, ErrEmptyCatalog
	}
	c.mu.Lock()
	i := c.rng.IntN(len(c.entries))
	c.mu.Unlock()
	return c.entries[i], nil
}

func (c *Catalog) Lookup(word string) (WordData, bool) {
	w, ok := c.byWord[Normalize(word)]
	return w, ok
}

// Resolve returns catalog metadata for a word or a bare entry for unknown ones.
func (c *Catalog) Resolve(word string) WordData {
	if w, ok := c.Lookup(word); ok {
		return w
	}
	return WordData{Word: Normalize(word), Category: FallbackCategory}
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range c.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
