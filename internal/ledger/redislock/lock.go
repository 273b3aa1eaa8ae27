package redislock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotAcquired = errors.New("event lock not acquired")

// Lock serializes booking traffic per event across service instances.
// The TTL bounds how long a crashed holder can block an event.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

func key(eventID string) string {
	return "booking_lock:" + eventID
}

// Acquire polls SetNX until the lock is held or the context expires.
func (l *Lock) Acquire(ctx context.Context, eventID, token string) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, key(eventID), token, l.TTL).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrNotAcquired
		case <-ticker.C:
		}
	}
}

// Release deletes the lock only if this caller still holds it.
func (l *Lock) Release(ctx context.Context, eventID, token string) error {
	val, err := l.Client.Get(ctx, key(eventID)).Result()
	if err == redis.Nil {
		return nil // expired or already released
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err = l.Client.Del(ctx, key(eventID)).Result()
		return err
	}
	return nil
}
