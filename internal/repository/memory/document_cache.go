package memory

import (
	"fmt"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DocumentCache keeps decoded Lexical trees so repeated reads skip the inverse codec.
// Entries are keyed by id and version, so an update never serves a stale tree.
type DocumentCache struct {
	cache *cache.Cache
}

func NewDocumentCache(ttl time.Duration) *DocumentCache {
	// Purge expired items at twice the TTL
	c := cache.New(ttl, 2*ttl)
	return &DocumentCache{
		cache: c,
	}
}

func cacheKey(id uuid.UUID, version int) string {
	return fmt.Sprintf("%s@%d", id, version)
}

func (r *DocumentCache) Save(id uuid.UUID, version int, root lexical.Root) {
	r.cache.Set(cacheKey(id, version), root, cache.DefaultExpiration)
}

func (r *DocumentCache) Get(id uuid.UUID, version int) (lexical.Root, bool) {
	if x, found := r.cache.Get(cacheKey(id, version)); found {
		return x.(lexical.Root), true
	}
	return lexical.Root{}, false
}

func (r *DocumentCache) Delete(id uuid.UUID, version int) {
	r.cache.Delete(cacheKey(id, version))
}

func (r *DocumentCache) ItemCount() int {
	return r.cache.ItemCount()
}
