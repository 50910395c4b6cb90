package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bastiangx/dexpad/pkg/catalog"
	"github.com/bastiangx/dexpad/pkg/query"
	"github.com/bastiangx/dexpad/pkg/typechart"
)

// SearchResult is the outcome of one query.
type SearchResult struct {
	Filters query.Filters
	Matches []Species
	Total   int
	Elapsed time.Duration
}

// Searcher runs queries against a catalog and caches the full match list per
// normalized filter set. It is safe for concurrent use.
type Searcher struct {
	catalog *catalog.Catalog

	mu    sync.RWMutex
	cache *lru.Cache[string, []catalog.Entity]
}

// NewSearcher creates a searcher. A cacheSize <= 0 disables caching.
func NewSearcher(c *catalog.Catalog, cacheSize int) (*Searcher, error) {
	s := &Searcher{catalog: c}
	if err := s.Resize(cacheSize); err != nil {
		return nil, err
	}
	return s, nil
}

// Catalog returns the underlying catalog.
func (s *Searcher) Catalog() *catalog.Catalog {
	return s.catalog
}

// Resize changes the cache capacity, dropping the oldest entries first.
func (s *Searcher) Resize(size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case size <= 0:
		s.cache = nil
	case s.cache == nil:
		cache, err := lru.New[string, []catalog.Entity](size)
		if err != nil {
			return fmt.Errorf("failed to create search cache: %w", err)
		}
		s.cache = cache
	default:
		if evicted := s.cache.Resize(size); evicted > 0 {
			log.Debugf("Search cache resized to %d, evicted %d", size, evicted)
		}
	}
	return nil
}

// CacheLen returns the number of cached queries.
func (s *Searcher) CacheLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// Search parses raw and returns up to limit matches in catalog order.
// A limit <= 0 returns every match.
func (s *Searcher) Search(raw string, limit int) SearchResult {
	start := time.Now()

	var (
		filters query.Filters
		matches []catalog.Entity
	)
	if strings.TrimSpace(raw) == "" {
		matches = s.catalog.Entities()
	} else {
		filters = query.Parse(raw)
		matches = s.cached(filters)
	}

	total := len(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return SearchResult{
		Filters: filters,
		Matches: s.toSpecies(matches),
		Total:   total,
		Elapsed: time.Since(start),
	}
}

func (s *Searcher) cached(f query.Filters) []catalog.Entity {
	key := f.String()

	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()

	if cache != nil {
		if hit, ok := cache.Get(key); ok {
			return hit
		}
	}
	matches := query.Apply(s.catalog.Entities(), s.catalog.Types(), f)
	if cache != nil {
		cache.Add(key, matches)
	}
	return matches
}

// Lookup finds a species by name, or by dex number when name is empty.
func (s *Searcher) Lookup(name string, id int) (Species, error) {
	var (
		e   catalog.Entity
		err error
	)
	if strings.TrimSpace(name) != "" {
		e, err = s.catalog.ByName(name)
	} else {
		e, err = s.catalog.Get(id)
	}
	if err != nil {
		return Species{}, err
	}
	return s.species(e), nil
}

// Effectiveness analyzes a species' defensive matchups.
func (s *Searcher) Effectiveness(sp Species) typechart.Effectiveness {
	return typechart.Analyze(sp.Types)
}

func (s *Searcher) species(e catalog.Entity) Species {
	return Species{Entity: e, Types: s.catalog.TypesOf(e.ID)}
}

func (s *Searcher) toSpecies(es []catalog.Entity) []Species {
	out := make([]Species, 0, len(es))
	for _, e := range es {
		out = append(out, s.species(e))
	}
	return out
}
