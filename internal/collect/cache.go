// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zhanweicao/academic-abstract-collection/internal/scholar"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// Cache kinds in the progress database's api_cache table.
const (
	cacheKindAuthorPapers = "author-papers"
	cacheKindAuthorSearch = "author-search"
	cacheKindPaperSearch  = "paper-search"
)

// APICache stores raw API responses keyed by kind and request identity.
// progress.Store is the production implementation.
type APICache interface {
	CacheGet(ctx context.Context, kind, key string) ([]byte, bool, error)
	CachePut(ctx context.Context, kind, key string, value []byte) error
}

// CachedFetcher serves author paper lists from the cache before hitting the
// API. An author fetched but left undecided by a crashed run is served from
// cache on the next run instead of costing another API call.
type CachedFetcher struct {
	Cache APICache
	Fetch Fetcher
}

// AuthorPapers returns the cached paper list for the author, fetching and
// caching it on a miss.
func (c *CachedFetcher) AuthorPapers(ctx context.Context, authorID string) ([]types.Paper, error) {
	var papers []types.Paper
	hit, err := cacheLookup(ctx, c.Cache, cacheKindAuthorPapers, authorID, &papers)
	if err != nil {
		return nil, err
	}
	if hit {
		return papers, nil
	}

	papers, err = c.Fetch.AuthorPapers(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := cacheStore(ctx, c.Cache, cacheKindAuthorPapers, authorID, papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// CachedAuthorSearch caches seed-name author lookups so repeated runs do not
// re-query discovery for names already resolved.
type CachedAuthorSearch struct {
	Cache  APICache
	Client AuthorSearcher
}

// SearchAuthors returns cached candidates for the name, querying and
// caching on a miss.
func (c *CachedAuthorSearch) SearchAuthors(ctx context.Context, name string) ([]scholar.Candidate, error) {
	var cands []scholar.Candidate
	hit, err := cacheLookup(ctx, c.Cache, cacheKindAuthorSearch, name, &cands)
	if err != nil {
		return nil, err
	}
	if hit {
		return cands, nil
	}

	cands, err = c.Client.SearchAuthors(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := cacheStore(ctx, c.Cache, cacheKindAuthorSearch, name, cands); err != nil {
		return nil, err
	}
	return cands, nil
}

// CachedPaperSearch caches paper-search candidate mining. The cache key
// includes the year window, so the same query over a different window is a
// distinct entry.
type CachedPaperSearch struct {
	Cache  APICache
	Client PaperAuthorSearcher
}

// SearchPaperAuthors returns cached candidates for the query and window,
// querying and caching on a miss.
func (c *CachedPaperSearch) SearchPaperAuthors(ctx context.Context, query string, years []int) ([]scholar.Candidate, error) {
	key := paperSearchKey(query, years)

	var cands []scholar.Candidate
	hit, err := cacheLookup(ctx, c.Cache, cacheKindPaperSearch, key, &cands)
	if err != nil {
		return nil, err
	}
	if hit {
		return cands, nil
	}

	cands, err = c.Client.SearchPaperAuthors(ctx, query, years)
	if err != nil {
		return nil, err
	}
	if err := cacheStore(ctx, c.Cache, cacheKindPaperSearch, key, cands); err != nil {
		return nil, err
	}
	return cands, nil
}

func paperSearchKey(query string, years []int) string {
	if len(years) == 0 {
		return query
	}
	return fmt.Sprintf("%s|%d-%d", query, years[0], years[len(years)-1])
}

// cacheLookup decodes a cached entry into out, reporting whether one existed.
func cacheLookup(ctx context.Context, cache APICache, kind, key string, out any) (bool, error) {
	raw, ok, err := cache.CacheGet(ctx, kind, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding cached %s entry %q: %w", kind, key, err)
	}
	return true, nil
}

func cacheStore(ctx context.Context, cache APICache, kind, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s entry %q: %w", kind, key, err)
	}
	return cache.CachePut(ctx, kind, key, raw)
}
