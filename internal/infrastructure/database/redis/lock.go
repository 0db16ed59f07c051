package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Mutex is a single-holder lock with a TTL, used to keep concurrent workers
// from rebuilding the same synonym index at once.
type Mutex struct {
	client     *Client
	key        string
	token      string
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
	logger     logging.Logger
}

// NewMutex returns an unlocked mutex on name.
func NewMutex(client *Client, name string, ttl time.Duration, log logging.Logger) *Mutex {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Mutex{
		client:     client,
		key:        client.Key("lock", name),
		token:      uuid.NewString(),
		ttl:        ttl,
		retryDelay: 100 * time.Millisecond,
		retryCount: 30,
		logger:     log,
	}
}

// TryLock makes a single attempt.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	if m.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := m.client.Underlying().SetNX(ctx, m.key, m.token, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "acquire lock")
	}
	return ok, nil
}

// Lock retries TryLock until it succeeds, retries run out or ctx ends.
func (m *Mutex) Lock(ctx context.Context) error {
	for i := 0; i <= m.retryCount; i++ {
		ok, err := m.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			m.logger.Debug("lock acquired", logging.String("key", m.key))
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "waiting for lock")
		case <-time.After(m.retryDelay):
		}
	}
	return ErrLockNotAcquired.WithDetail(m.key)
}

// Unlock releases the lock if this mutex still holds it.
func (m *Mutex) Unlock(ctx context.Context) error {
	if m.client.isClosed() {
		return ErrClientClosed
	}
	n, err := unlockScript.Run(ctx, m.client.Underlying(), []string{m.key}, m.token).Int()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "release lock")
	}
	if n == 0 {
		return ErrLockNotHeld.WithDetail(m.key)
	}
	return nil
}

//Personal.AI order the ending
