package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSignupLockTimeout is returned when a concurrent signup keeps the lock
// for longer than the guard is willing to wait.
var ErrSignupLockTimeout = errors.New("timed out waiting for signup lock")

// SignupGuard serializes signups that claim the same username or email.
type SignupGuard interface {
	// Acquire locks every key or none, waiting while a concurrent signup
	// holds one of them. Whether the account already exists is left to the
	// store.
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

type NopGuard struct{}

func (NopGuard) Acquire(context.Context, ...string) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another signup is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	minLockRetry = 10 * time.Millisecond
	maxLockRetry = 200 * time.Millisecond
)

type RedisGuard struct {
	client redis.Cmdable
	ttl    time.Duration
	// maxWait bounds how long Acquire waits for a single key. A holder that
	// died loses its key after ttl, so waiting twice as long is enough.
	maxWait time.Duration
}

func NewRedisGuard(client redis.Cmdable, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client:  client,
		ttl:     ttl,
		maxWait: 2 * ttl,
	}
}

func (g *RedisGuard) Acquire(ctx context.Context, keys ...string) (func(), error) {
	token := uuid.NewString()
	held := make([]string, 0, len(keys))

	release := func() {
		// 即使请求已被取消也要释放锁
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.ttl)
		defer cancel()
		for _, key := range held {
			_ = releaseScript.Run(ctx, g.client, []string{key}, token).Err()
		}
	}

	// 固定加锁顺序，避免两个注册请求互相等待
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	for _, key := range slices.Compact(sorted) {
		lockKey := signupLockKey(key)
		if err := g.lock(ctx, lockKey, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, lockKey)
	}

	return release, nil
}

// lock retries SET NX with exponential backoff until it wins, ctx is done or
// maxWait passes.
func (g *RedisGuard) lock(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(g.maxWait)
	wait := minLockRetry

	for {
		ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire signup lock: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrSignupLockTimeout, key)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("acquire signup lock: %w", ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, maxLockRetry)
	}
}

func signupLockKey(key string) string {
	return fmt.Sprintf("signup_lock_%s", key)
}
