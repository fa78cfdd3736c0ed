package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%d"
	TagKeyPrefix  = "tag:%d"
	PostsListKey  = "posts:front"
)

const (
	PostTTL = 30 * time.Minute
	TagTTL  = time.Hour
	ListTTL = time.Minute
)

// FrontPageSize is the only page size cached under PostsListKey; other
// sizes and every filtered or cursored listing always hit the database.
const FrontPageSize = 20

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TagKey(tagID uint) string {
	return fmt.Sprintf(TagKeyPrefix, tagID)
}

// Aside implements the cache-aside pattern: on a hit, dest is populated
// from Redis; on a miss, fetch runs (it must fill dest) and the result
// is stored with the given TTL. With no Redis client it degrades to a
// plain fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		// Corrupt entry: drop it and fall through to fetch.
		client.Del(ctx, key)
	}

	if err := fetch(); err != nil {
		return err
	}

	if encoded, jsonErr := json.Marshal(dest); jsonErr == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), PostsListKey)
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}

func InvalidateTag(ctx context.Context, tagID uint) {
	Invalidate(ctx, TagKey(tagID))
}
