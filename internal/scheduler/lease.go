package scheduler

import (
	"context"
	"time"

	poolservice "crm_backend/internal/pool/service"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSweepLeaseKey is the Redis key guarding the escalation sweep.
const DefaultSweepLeaseKey = "crm:pool:sweep:lease"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease re-acquired by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a best-effort mutex over SET NX PX.
type RedisLease struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisLease(client redis.UniversalClient, key string, ttl time.Duration, log *logger.Logger) *RedisLease {
	if key == "" {
		key = DefaultSweepLeaseKey
	}
	return &RedisLease{client: client, key: key, ttl: ttl, log: log}
}

// Acquire takes the lease for ttl. ok is false when another holder has it.
func (l *RedisLease) Acquire(ctx context.Context) (func(context.Context), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && l.log != nil {
			l.log.Warn("sweep lease release failed", "error", err)
		}
	}
	return release, true, nil
}

var _ poolservice.SweepLease = (*RedisLease)(nil)
