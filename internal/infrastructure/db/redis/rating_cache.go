package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yamdb/review-api/internal/core/ports"
)

const (
	defaultRatingTTL = 10 * time.Minute
	// versionTTL outlives any in-flight request by a wide margin.
	versionTTL = 24 * time.Hour
	// noRating marks a title with no reviews so that it is cached too.
	noRating = "null"
)

// storeIfCurrent writes the rating only while the title's generation still
// equals the one the caller read. A missing generation key counts as 0.
var storeIfCurrent = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if (v or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RatingCache stores derived title ratings.
// Key format: rating:<title_id> for the value, rating:ver:<title_id> for its
// generation counter.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache wraps client. A non-positive ttl uses defaultRatingTTL.
func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if ttl <= 0 {
		ttl = defaultRatingTTL
	}
	return &RatingCache{client: client, ttl: ttl}
}

// Lookup returns the cached ratings among titleIDs together with the
// generation of each title, in a single MGET.
func (c *RatingCache) Lookup(ctx context.Context, titleIDs []string) (ports.RatingSnapshot, error) {
	snap := ports.RatingSnapshot{
		Hits:     make(map[string]*float64, len(titleIDs)),
		Versions: make(map[string]int64, len(titleIDs)),
	}
	if len(titleIDs) == 0 {
		return snap, nil
	}
	n := len(titleIDs)
	keys := make([]string, 2*n)
	for i, id := range titleIDs {
		keys[i] = c.key(id)
		keys[n+i] = c.versionKey(id)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return ports.RatingSnapshot{}, fmt.Errorf("rating cache lookup: %w", err)
	}
	for i, id := range titleIDs {
		ver, err := decodeVersion(vals[n+i])
		if err != nil {
			// Unknown generation: neither serve nor store this title.
			continue
		}
		snap.Versions[id] = ver
		raw, ok := vals[i].(string)
		if !ok {
			continue
		}
		if r, err := decodeRating(raw); err == nil {
			snap.Hits[id] = r
		}
	}
	return snap, nil
}

// Store caches a title's rating (nil for no reviews) until the TTL expires.
// The write is skipped when the title was invalidated after version was read.
func (c *RatingCache) Store(ctx context.Context, titleID string, rating *float64, version int64) error {
	keys := []string{c.key(titleID), c.versionKey(titleID)}
	err := storeIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatInt(version, 10), encodeRating(rating), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("rating cache store: %w", err)
	}
	return nil
}

// Invalidate bumps the title's generation and removes its cached rating.
func (c *RatingCache) Invalidate(ctx context.Context, titleID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(titleID))
		pipe.Expire(ctx, c.versionKey(titleID), versionTTL)
		pipe.Del(ctx, c.key(titleID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("rating cache invalidate: %w", err)
	}
	return nil
}

func (c *RatingCache) key(titleID string) string {
	return "rating:" + titleID
}

func (c *RatingCache) versionKey(titleID string) string {
	return "rating:ver:" + titleID
}

func decodeVersion(v any) (int64, error) {
	switch raw := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(raw, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected version type %T", v)
	}
}

func encodeRating(r *float64) string {
	if r == nil {
		return noRating
	}
	return strconv.FormatFloat(*r, 'g', -1, 64)
}

func decodeRating(raw string) (*float64, error) {
	if raw == noRating {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
