package optim

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/patrickmn/go-cache"
)

// Memo caches objective values keyed by the exact bits of the input.
type Memo struct {
	obj    Objective
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

func Memoize(obj Objective) *Memo {
	return &Memo{
		obj:   obj,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (m *Memo) Evaluate(ctx context.Context, x []float64) float64 {
	key := memoKey(x)
	if v, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return v.(float64)
	}

	m.misses.Add(1)
	f := m.obj(ctx, x)
	// a canceled run may have been cut short
	if ctx.Err() == nil {
		m.cache.SetDefault(key, f)
	}
	return f
}

func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

func (m *Memo) Len() int { return m.cache.ItemCount() }

func memoKey(x []float64) string {
	var sb strings.Builder
	for i, v := range x {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return sb.String()
}
