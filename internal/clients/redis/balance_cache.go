package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
	"github.com/sproutly/sproutly-backend/internal/utils"
)

// balanceCache is the redis-backed read-through view of ledger sums. Entries
// expire on a short TTL and are dropped eagerly on every append, so a stale
// read is possible but bounded and never flows back into the ledger.
type balanceCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewBalanceCache(log *logger.Logger, rdb *goredis.Client, ttl time.Duration) (services.BalanceCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &balanceCache{
		log: log.With("service", "RedisBalanceCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

// NewClient dials redis from REDIS_ADDR / REDIS_DB. Callers treat a failure
// as "run without redis".
func NewClient(log *logger.Logger) (*goredis.Client, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          utils.GetEnvAsInt("REDIS_DB", 0, log),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func balanceKey(childID uuid.UUID) string {
	return "sproutly:balance:" + childID.String()
}

func (c *balanceCache) Get(ctx context.Context, childID uuid.UUID) (int64, bool, error) {
	raw, err := c.rdb.Get(ctx, balanceKey(childID)).Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.log.Warn("Dropping unparseable cached balance", "child_id", childID, "raw", raw)
		_ = c.rdb.Del(ctx, balanceKey(childID)).Err()
		return 0, false, nil
	}
	return balance, true, nil
}

func (c *balanceCache) Set(ctx context.Context, childID uuid.UUID, balance int64) error {
	return c.rdb.Set(ctx, balanceKey(childID), strconv.FormatInt(balance, 10), c.ttl).Err()
}

func (c *balanceCache) Invalidate(ctx context.Context, childID uuid.UUID) error {
	return c.rdb.Del(ctx, balanceKey(childID)).Err()
}
