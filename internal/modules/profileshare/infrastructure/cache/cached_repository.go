package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
)

const (
	keyPrefix  = "profile-share:"
	DefaultTTL = 10 * time.Minute

	fieldVersion = "v"
	fieldData    = "d"
)

var errUnreadableEntry = errors.New("unreadable cache entry")

// putScript stores a record unless the cached copy is at least as new.
var putScript = redis.NewScript(`
local kind = redis.call('TYPE', KEYS[1]).ok
if kind == 'hash' then
	local cached = tonumber(redis.call('HGET', KEYS[1], 'v'))
	if cached and cached >= tonumber(ARGV[1]) then
		return 0
	end
elseif kind ~= 'none' then
	redis.call('DEL', KEYS[1])
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// CachedRepository is a read-through, write-through Redis cache in front of a
// domain.Repository. Redis failures are logged and fall through to the
// wrapped repository.
//
// Entries carry the record version and only ever move forward, so a copy
// loaded before a concurrent Save cannot replace the one Save wrote.
// Read-modify-write paths use GetForUpdate, which skips the cache.
type CachedRepository struct {
	next   domain.Repository
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository wraps next with a Redis cache. A non-positive ttl uses DefaultTTL.
func NewCachedRepository(next domain.Repository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{next: next, client: client, ttl: ttl, logger: logger}
}

// Key returns the cache key of a user's record.
func Key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// GetByUserID implements domain.Repository
func (c *CachedRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	key := Key(userID)

	vals, err := c.client.HMGet(ctx, key, fieldVersion, fieldData).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	} else {
		rec, decodeErr := decode(vals)
		if rec != nil {
			return rec, nil
		}
		if decodeErr != nil {
			c.logger.WarnContext(ctx, "dropping unreadable cache entry", "key", key, "error", decodeErr)
			c.invalidate(ctx, userID)
		}
	}

	rec, err := c.next.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, rec); err != nil {
		c.logger.WarnContext(ctx, "cache fill failed", "user_id", userID, "error", err)
	}
	return rec, nil
}

// GetForUpdate implements domain.Repository. It never consults the cache.
func (c *CachedRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	return c.next.GetForUpdate(ctx, userID)
}

// Create implements domain.Repository
func (c *CachedRepository) Create(ctx context.Context, record *domain.Record) error {
	if err := c.next.Create(ctx, record); err != nil {
		return err
	}
	c.invalidate(ctx, record.UserID)
	return nil
}

// Save implements domain.Repository. The saved record replaces the cached
// copy. When that fails the key is dropped so readers go back to the database.
func (c *CachedRepository) Save(ctx context.Context, record *domain.Record) error {
	if err := c.next.Save(ctx, record); err != nil {
		return err
	}
	if err := c.put(ctx, record); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "user_id", record.UserID, "error", err)
		c.invalidate(ctx, record.UserID)
	}
	return nil
}

func (c *CachedRepository) put(ctx context.Context, rec *domain.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	keys := []string{Key(rec.UserID)}
	return putScript.Run(ctx, c.client, keys, rec.Version, payload, c.ttl.Milliseconds()).Err()
}

func (c *CachedRepository) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "user_id", userID, "error", err)
	}
}

// decode returns nil and no error for a missing entry.
func decode(vals []any) (*domain.Record, error) {
	if len(vals) != 2 || (vals[0] == nil && vals[1] == nil) {
		return nil, nil
	}
	version, ok := vals[0].(string)
	data, ok2 := vals[1].(string)
	if !ok || !ok2 {
		return nil, errUnreadableEntry
	}

	var rec domain.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return nil, err
	}
	rec.Version = v
	return &rec, nil
}
