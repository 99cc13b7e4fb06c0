package config

// This file defines the Redis settings shared by the rate limiter, the
// response cache and the asynq task queue.  The parameters are loaded
// from environment variables.  If connection fails during startup,
// NewRedisClient returns nil and callers should degrade gracefully by
// disabling caching and rate limiting; the task queue keeps retrying
// on its own.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisSettings carries the connection parameters in a form both
// go-redis and asynq constructors accept.
type RedisSettings struct {
    Addr     string
    Password string
    DB       int
    TLS      *tls.Config
}

// LoadRedisSettings reads Redis parameters from the environment.
// Supported variables are:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence if both host/port and addr are set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
func LoadRedisSettings() RedisSettings {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    addr := os.Getenv("REDIS_ADDR")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    dbNum := 0
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            dbNum = n
        }
    }
    var tlsConf *tls.Config
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    return RedisSettings{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       dbNum,
        TLS:      tlsConf,
    }
}

// NewRedisClient instantiates a Redis client from the settings.  The
// returned client may be nil if a connection cannot be established.
func NewRedisClient(s RedisSettings) *redis.Client {
    client := redis.NewClient(&redis.Options{
        Addr:      s.Addr,
        Password:  s.Password,
        DB:        s.DB,
        TLSConfig: s.TLS,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
