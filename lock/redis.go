package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nanoncore/nano-devctl/types"
)

// DefaultTTL bounds how long a crashed holder keeps a key.
const DefaultTTL = 120 * time.Second

// acquireScript returns 1 on success, 0 if the key is held.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
	return 0
end
redis.call("HSET", key, "holder", ARGV[1], "acquired", ARGV[2])
redis.call("EXPIRE", key, tonumber(ARGV[3]))
return 1
`)

// releaseScript returns 1 on success, 0 on holder mismatch, -1 if the key
// is gone.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
	return -1
end
if redis.call("HGET", key, "holder") ~= ARGV[1] then
	return 0
end
redis.call("DEL", key)
return 1
`)

// Redis is a Locker shared by several processes through a redis server.
// Keys expire after TTL so an abandoned lock recovers on its own.
type Redis struct {
	client redis.Scripter
	prefix string
	ttl    time.Duration
}

var _ Locker = (*Redis)(nil)

// NewRedis returns a locker storing its keys under prefix.
func NewRedis(client redis.Scripter, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// TryLock implements Locker.
func (r *Redis) TryLock(ctx context.Context, key string) (Unlock, error) {
	holder, err := newHolder()
	if err != nil {
		return nil, err
	}
	rkey := r.prefix + key
	secs := int64(r.ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := acquireScript.Run(ctx, r.client, []string{rkey}, holder, now, strconv.FormatInt(secs, 10)).Int()
	if err != nil {
		return nil, types.Wrap(types.KindConnection, err, "lock: acquire %s", key)
	}
	if res == 0 {
		return nil, locked(key)
	}
	return func() error {
		res, err := releaseScript.Run(context.Background(), r.client, []string{rkey}, holder).Int()
		if err != nil {
			return types.Wrap(types.KindConnection, err, "lock: release %s", key)
		}
		if res == 0 {
			return types.Errorf(types.KindProcessLocked, "lock: %s was taken over after expiry", key)
		}
		return nil
	}, nil
}

func newHolder() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", types.Wrap(types.KindUnknown, err, "lock: holder id")
	}
	return hex.EncodeToString(b), nil
}
