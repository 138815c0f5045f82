package config

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client backing the rate limiter and
// the catalog response cache. Redis never sees reservation or balance
// state; that lives exclusively in the transactional store.
//
// Environment:
//
//	REDIS_ADDR               host:port (takes precedence)
//	REDIS_HOST / REDIS_PORT  assembled when REDIS_ADDR is unset
//	REDIS_PASSWORD           optional
//	REDIS_DB                 database number, default 0
//	REDIS_TLS                "true"/"1" enables TLS
//
// A nil return means Redis is unreachable; callers degrade by running
// without rate limiting and caching rather than refusing to start.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); addr == "" && host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}

	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        envInt("REDIS_DB", 0),
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
