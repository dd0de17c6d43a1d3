package engine

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"screensync/internal/util"
)

const runLockKey = "screensync:run-lock"

// releaseScript deletes the lock only when this holder's token still
// owns it, so an expired lock reacquired by another instance is never
// released from here.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock implements Locker on top of a single redis key with a
// TTL. The TTL bounds how long a crashed holder can block other
// instances; it should comfortably exceed a normal run's duration.
type RedisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

// NewRedisRunLock builds a lock against the given redis server.
func NewRedisRunLock(addr, password string, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		key:    runLockKey,
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock. It reports false when another
// holder currently owns it.
func (l *RedisRunLock) Acquire() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	token := util.NewID()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lock if this instance still holds it.
func (l *RedisRunLock) Release() error {
	if l.token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Result()
	l.token = ""
	return err
}
