package storage

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// NoCache is the embedding store of runs with the cache disabled.
// Every lookup misses and every stored embedding is dropped.
type NoCache struct {
	shard string
}

// NewNoCache creates the store for the given shard.
func NewNoCache(shard string) *NoCache {
	return &NoCache{shard: shard}
}

func (n *NoCache) Store(k Key, value interface{}) error {
	log.Debug().Str("shard", n.shard).Str("key", k.Path()).Msg("cache disabled, dropping embedding")
	return nil
}

func (n *NoCache) Load(k Key, value interface{}) error {
	return fmt.Errorf("cache disabled for '%s' in '%s': %w", k.Path(), n.shard, NotFoundErr)
}

// NoCacheShard creates stores that never cache.
func NoCacheShard() Shard {
	return func(shard string) (Persistence, error) {
		return NewNoCache(shard), nil
	}
}
