package fx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection parameters for a shared rate cache.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TLSEnabled bool
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// RedisCache stores each rate at "fxrate:{BASE}:{QUOTE}" as
// "{rate}@{fetched unix ms}" with the entry TTL as key expiry.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func rateKey(base, quote string) string {
	return "fxrate:" + pairKey(base, quote)
}

func encodeEntry(e Entry) string {
	return strconv.FormatFloat(e.Rate, 'f', -1, 64) + "@" + strconv.FormatInt(e.FetchedAt.UnixMilli(), 10)
}

func decodeEntry(val string) (Entry, error) {
	rateStr, msStr, ok := strings.Cut(val, "@")
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Rate: rate}
	if ok {
		ms, err := strconv.ParseInt(msStr, 10, 64)
		if err != nil {
			return Entry{}, err
		}
		e.FetchedAt = time.UnixMilli(ms).UTC()
	}
	return e, nil
}

func (r *RedisCache) Get(ctx context.Context, base, quote string) (Entry, bool, error) {
	val, err := r.rdb.Get(ctx, rateKey(base, quote)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis: get rate %s: %w", pairKey(base, quote), err)
	}

	e, err := decodeEntry(val)
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis: parse rate %s: %w", pairKey(base, quote), err)
	}
	return e, true, nil
}

func (r *RedisCache) Set(ctx context.Context, base, quote string, e Entry, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, rateKey(base, quote), encodeEntry(e), ttl).Err(); err != nil {
		return fmt.Errorf("redis: set rate %s: %w", pairKey(base, quote), err)
	}
	return nil
}
