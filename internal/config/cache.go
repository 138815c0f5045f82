package config

import (
	"strings"
	"time"
)

// CacheConfig drives the response cache middleware. Only the public
// flight catalog routes sit behind it; search and reservation
// responses depend on per-session and transactional state and must
// never be served from cache. Caching is skipped entirely when
// Enabled is false or no Redis client could be built.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods eligible for caching
	TTL          time.Duration   // entry lifetime
	KeyStrategy  string          // which request parts form the key
	Prefix       string          // Redis key namespace
	MaxBodyBytes int             // responses larger than this are not cached
}

// LoadCacheConfig builds a CacheConfig from the environment, with
// defaults suited to the catalog routes (GET only, short TTL).
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
