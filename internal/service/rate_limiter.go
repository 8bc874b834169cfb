package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/buddyai/buddy-server-go/internal/redis"
)

// rateLimitScript is a Lua script for sliding window rate limiting.
// It returns {allowed, remaining, resetAt}.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, 0, resetAt}
end

redis.call('ZADD', key, now, member)
redis.call('EXPIRE', key, window + 10)

return {1, limit - count - 1, now + window}
`)

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is a Redis sliding-window limiter shared by every instance.
type RateLimiter struct {
	client redis.Scripter
	now    func() time.Time
	seq    func() string
}

func NewRateLimiter(client redis.Scripter) *RateLimiter {
	return &RateLimiter{
		client: client,
		now:    time.Now,
		seq:    newRequestID,
	}
}

// Check records one hit for subject within scope and reports whether it is
// within limit. Errors are returned so callers choose to fail open or closed.
func (rl *RateLimiter) Check(
	ctx context.Context,
	scope, subject string,
	limit int,
	window time.Duration,
) (RateLimitDecision, error) {
	now := rl.now()
	key := redisclient.RateLimitKey(scope, subject)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{key},
		now.Unix(),
		int64(window.Seconds()),
		limit,
		rl.seq(),
	).Int64Slice()
	if err != nil {
		return RateLimitDecision{}, fmt.Errorf("run rate limit script: %w", err)
	}
	if len(result) != 3 {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit result length %d", len(result))
	}

	return RateLimitDecision{
		Allowed:   result[0] == 1,
		Limit:     limit,
		Remaining: int(result[1]),
		ResetAt:   time.Unix(result[2], 0),
	}, nil
}
