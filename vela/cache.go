package vela

import (
	"errors"
	"sync"

	"github.com/grafana/regexp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// Default cache capacities. A size of zero or less selects an unbounded
// cache.
const (
	DefaultASTCacheSize     = 1024
	DefaultResultCacheSize  = 4096
	DefaultPatternCacheSize = 128
)

// store is the subset of the LRU cache API used here, so that unbounded
// caches can share the code path.
type store[K comparable, V any] interface {
	Add(key K, value V) (evicted bool)
	Get(key K) (value V, ok bool)
	Remove(key K) (present bool)
	Len() int
	Purge()
}

func newStore[K comparable, V any](size int) store[K, V] {
	if size <= 0 {
		return &mapStore[K, V]{items: make(map[K]V)}
	}

	c, err := lru.New[K, V](size)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}

	return c
}

// mapStore is an unbounded store guarded by a reader/writer lock.
type mapStore[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func (s *mapStore[K, V]) Add(key K, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value

	return false
}

func (s *mapStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]

	return v, ok
}

func (s *mapStore[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[key]
	delete(s.items, key)

	return ok
}

func (s *mapStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func (s *mapStore[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.items)
}

// sourceKey hashes program text. Entries keep their source so that hash
// collisions read as misses.
func sourceKey(src string) uint64 { return xxh3.HashString(src) }

type astEntry struct {
	source string
	ast    *AST
}

// Cache memoizes parsed programs by source text. It is safe for concurrent
// use and may be shared between interpreters. Text that fails to parse is
// never cached.
type Cache struct {
	asts  store[uint64, astEntry]
	group singleflight.Group
}

// NewCache returns an AST cache holding at most size programs, or an
// unbounded one if size <= 0.
func NewCache(size int) *Cache {
	return &Cache{asts: newStore[uint64, astEntry](size)}
}

// Get returns the cached AST for src.
func (c *Cache) Get(src string) (*AST, bool) {
	e, ok := c.asts.Get(sourceKey(src))
	if !ok || e.source != src {
		return nil, false
	}

	return e.ast, true
}

// Parse returns the cached AST for src, parsing and caching it on a miss.
// Concurrent misses for the same text share one parse; syntax errors of that
// parse are delivered to the listeners of every caller. It reports whether
// the AST came from the cache.
func (c *Cache) Parse(src string, ls ...ErrorListener) (*AST, bool, error) {
	if ast, ok := c.Get(src); ok {
		return ast, true, nil
	}

	v, err, _ := c.group.Do(src, func() (any, error) {
		if ast, ok := c.Get(src); ok {
			return ast, nil
		}

		ast, err := Parse(src)
		if err != nil {
			return nil, err
		}

		c.asts.Add(sourceKey(src), astEntry{source: src, ast: ast})

		return ast, nil
	})
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			for _, e := range pe.Errors {
				listeners(ls).SyntaxError(e.Pos, e.Msg)
			}
		}

		return nil, false, err
	}

	return v.(*AST), false, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return c.asts.Len() }

// Purge empties the cache.
func (c *Cache) Purge() { c.asts.Purge() }

type resultEntry struct {
	source string
	epoch  uint64
	result outcome
}

// patterns compiles and memoizes regular expressions.
type patterns struct {
	cache   store[string, *regexp.Regexp]
	metrics *metrics
}

func newPatterns(size int, m *metrics) *patterns {
	return &patterns{cache: newStore[string, *regexp.Regexp](size), metrics: m}
}

func (p *patterns) compile(pattern string) (*regexp.Regexp, error) {
	re, ok := p.cache.Get(pattern)
	p.metrics.lookup(cachePattern, ok)

	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	p.metrics.evicted(cachePattern, p.cache.Add(pattern, re))

	return re, nil
}

func (p *patterns) match(pattern, s string) (bool, error) {
	re, err := p.compile(pattern)
	if err != nil {
		return false, err
	}

	return re.MatchString(s), nil
}
