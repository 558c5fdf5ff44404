package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set: members are admission records scored by
// microseconds, suffixed with a nonce so simultaneous admissions stay
// distinct set members. Prune, count and conditional add run inside one
// script so concurrent instances cannot over-admit.
var redisWindowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count < tonumber(ARGV[2]) then
  redis.call("ZADD", KEYS[1], ARGV[3], ARGV[3] .. "-" .. ARGV[5])
  redis.call("PEXPIRE", KEYS[1], ARGV[4])
  return 1
end
return 0
`)

// RedisWindow is a sliding-window governor backed by Redis, for deployments
// where several instances must share one admission budget.
type RedisWindow struct {
	client   *redis.Client
	key      string
	capacity int
	window   time.Duration
	nowFn    func() time.Time
}

// NewRedisWindow constructs a RedisWindow keyed under prefix.
func NewRedisWindow(client *redis.Client, prefix string, capacity int, window time.Duration) *RedisWindow {
	key := "governor:window"
	if p := strings.TrimSpace(prefix); p != "" {
		key = p + ":" + key
	}
	return &RedisWindow{
		client:   client,
		key:      key,
		capacity: capacity,
		window:   window,
		nowFn:    time.Now,
	}
}

// AdmitContext runs one admission decision against Redis.
func (r *RedisWindow) AdmitContext(ctx context.Context) (bool, error) {
	if r == nil || r.client == nil {
		return false, errors.New("governor redis: client not configured")
	}
	if r.capacity <= 0 {
		return false, nil
	}
	now := r.nowFn()
	cutoff := now.Add(-r.window).UnixMicro()
	res, err := redisWindowScript.Run(ctx, r.client,
		[]string{r.key},
		cutoff,
		r.capacity,
		now.UnixMicro(),
		r.window.Milliseconds()+1,
		uuid.NewString(),
	).Result()
	if err != nil {
		return false, err
	}
	admitted, ok := res.(int64)
	if !ok {
		return false, errors.New("governor redis: unexpected script result")
	}
	return admitted == 1, nil
}
