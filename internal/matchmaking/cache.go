// internal/matchmaking/cache.go
// Redis-backed fast paths. Postgres stays authoritative for every invariant;
// the guard and the profile cache only shed load.

package matchmaking

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/go-redis/redis/v8"
)

type Cache interface {
    // AcquireAllocGuard is a SETNX gate in front of the allocation
    // transaction. It fails fast on double-submits from the same user.
    AcquireAllocGuard(ctx context.Context, userID int64) (bool, error)
    ReleaseAllocGuard(ctx context.Context, userID int64) error

    // Read-through cache for public user projections
    GetUserInfo(ctx context.Context, userID int64) (*UserInfo, bool)
    SetUserInfo(ctx context.Context, info *UserInfo)
}

type redisCache struct {
    client   *redis.Client
    guardTTL time.Duration
}

const userInfoTTL = 10 * time.Minute

func NewRedisCache(client *redis.Client, guardTTL time.Duration) Cache {
    return &redisCache{
        client:   client,
        guardTTL: guardTTL,
    }
}

// noopCache stands in when Redis is not configured. The guard always admits
// and the profile cache always misses, so Postgres does all the work.
type noopCache struct{}

func NewNoopCache() Cache {
    return noopCache{}
}

func (noopCache) AcquireAllocGuard(ctx context.Context, userID int64) (bool, error) {
    return true, nil
}

func (noopCache) ReleaseAllocGuard(ctx context.Context, userID int64) error {
    return nil
}

func (noopCache) GetUserInfo(ctx context.Context, userID int64) (*UserInfo, bool) {
    return nil, false
}

func (noopCache) SetUserInfo(ctx context.Context, info *UserInfo) {}

func allocGuardKey(userID int64) string {
    return fmt.Sprintf("heartlink:alloc:%d", userID)
}

func userInfoKey(userID int64) string {
    return fmt.Sprintf("heartlink:user:%d", userID)
}

func (c *redisCache) AcquireAllocGuard(ctx context.Context, userID int64) (bool, error) {
    return c.client.SetNX(ctx, allocGuardKey(userID), 1, c.guardTTL).Result()
}

func (c *redisCache) ReleaseAllocGuard(ctx context.Context, userID int64) error {
    return c.client.Del(ctx, allocGuardKey(userID)).Err()
}

func (c *redisCache) GetUserInfo(ctx context.Context, userID int64) (*UserInfo, bool) {
    data, err := c.client.Get(ctx, userInfoKey(userID)).Bytes()
    if err != nil {
        return nil, false
    }

    var info UserInfo
    if err := json.Unmarshal(data, &info); err != nil {
        return nil, false
    }

    return &info, true
}

func (c *redisCache) SetUserInfo(ctx context.Context, info *UserInfo) {
    data, err := json.Marshal(info)
    if err != nil {
        return
    }

    // Best effort; a miss just falls back to Postgres
    c.client.Set(ctx, userInfoKey(info.ID), data, userInfoTTL)
}
