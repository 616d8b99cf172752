package analysis

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/san-kum/linmodal/internal/codegen"
	"github.com/san-kum/linmodal/internal/symbolic"
)

// FunctionCache memoizes compiled functions by name, argument list and
// expressions. Concurrent requests for the same key share one compilation.
type FunctionCache struct {
	mu    sync.RWMutex
	funcs map[string]*codegen.Function
	group singleflight.Group

	compiles atomic.Int64
	hits     atomic.Int64
}

// CacheStats counts cache traffic.
type CacheStats struct {
	Compiles int64
	Hits     int64
	Entries  int
}

func NewFunctionCache() *FunctionCache {
	return &FunctionCache{funcs: make(map[string]*codegen.Function)}
}

// Matrix returns the compiled form of m, compiling it on first use.
func (c *FunctionCache) Matrix(name string, args []codegen.Arg, m *symbolic.Matrix) (*codegen.Function, error) {
	key := cacheKey(name, args, m)

	c.mu.RLock()
	fn, ok := c.funcs[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return fn, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		fn, ok := c.funcs[key]
		c.mu.RUnlock()
		if ok {
			c.hits.Add(1)
			return fn, nil
		}

		c.compiles.Add(1)
		fn, err := codegen.CompileMatrix(name, args, m)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.funcs[key] = fn
		c.mu.Unlock()
		return fn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*codegen.Function), nil
}

func (c *FunctionCache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.funcs)
	c.mu.RUnlock()
	return CacheStats{Compiles: c.compiles.Load(), Hits: c.hits.Load(), Entries: n}
}

func cacheKey(name string, args []codegen.Arg, m *symbolic.Matrix) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteString(")")
	b.WriteString(strconv.Itoa(m.Rows()))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(m.Cols()))
	for _, e := range m.Entries() {
		b.WriteByte('|')
		b.WriteString(e.Key())
	}
	return b.String()
}
