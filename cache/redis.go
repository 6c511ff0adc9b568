package cache

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/warp/paycalc/payroll"
)

// Redis caches breakdowns as JSON strings. Any error on read is a miss.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily; the first command dials addr.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (r *Redis) Get(ctx context.Context, key string) (payroll.DeductionBreakdown, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return payroll.DeductionBreakdown{}, false
	}
	var b payroll.DeductionBreakdown
	if err := json.Unmarshal([]byte(val), &b); err != nil {
		return payroll.DeductionBreakdown{}, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, b payroll.DeductionBreakdown) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, string(data), r.ttl).Err()
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
