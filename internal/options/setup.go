package options

import (
	"context"
	"time"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// FromConfig builds the lookup selected by cfg: uncached, Redis-backed when
// an address is set and reachable, in-process otherwise. The returned func
// releases the Redis client, if any.
func FromConfig(ctx context.Context, repo repository.OptionRepository, cfg config.OptionsConfig, log zerolog.Logger) (Lookup, func() error) {
	noop := func() error { return nil }

	if !cfg.CacheEnabled {
		log.Info().Msg("Dropdown option cache disabled")
		return Uncached(repo), noop
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("Dropdown options cached in Redis")
			return NewCachedLookup(repo, NewRedisCache(client), cfg.CacheTTL, log), client.Close
		}

		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, caching options in memory")
		client.Close()
	}

	return NewCachedLookup(repo, NewMemoryCache(), cfg.CacheTTL, log), noop
}
