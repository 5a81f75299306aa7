package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	reportVersionKey = "report:version"
	// BumpChannel carries the new version after a ledger write
	BumpChannel = "report.bump"
)

// ReportCache stores rendered report payloads in Redis under a global
// version. Any ledger write bumps the version, which orphans every key built
// before it; orphans expire through their TTL.
//
// A nil *ReportCache or one without a client is valid and always calls the loader.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportCache creates the cache helper
func NewReportCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCache{client: client, ttl: ttl, logger: logger.Named("report_cache")}
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current version, initialising it to 1 when missing
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, reportVersionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		// SetNX so a concurrent Bump is never overwritten
		if err := c.client.SetNX(ctx, reportVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, reportVersionKey).Int64()
	}
	return ver, err
}

// BuildKey composes report:v{version}:{parts...}
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return "report:" + joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("report:v%d:%s", ver, joined), nil
}

// Fetch loads the value cached under the key made from parts into dest, or
// runs loader, stores its JSON and decodes it into dest. Redis failures are
// logged and degrade to calling the loader; only loader and codec errors are
// returned.
func (c *ReportCache) Fetch(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.enabled() {
		return load(ctx, dest, loader)
	}

	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.logger.Warn("Report cache unavailable, building uncached", zap.Error(err))
		return load(ctx, dest, loader)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
			c.logger.Debug("Report cache hit", zap.String("key", key))
			return nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return load(ctx, dest, loader)
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
	return json.Unmarshal(raw, dest)
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report and announces the new version
func (c *ReportCache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, reportVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows bump announcements from other instances
// until ctx is done. Instances sharing one Redis already see the same
// version; this keeps replicas pointed at a different Redis in step.
func (c *ReportCache) ListenForInvalidation(ctx context.Context, channel string) error {
	if !c.enabled() {
		return nil
	}
	if channel == "" {
		channel = BumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.applyAnnouncedVersion(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

// applyAnnouncedVersion moves the local version forward, never back.
func (c *ReportCache) applyAnnouncedVersion(ctx context.Context, payload string) {
	announced, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		_ = c.client.Incr(ctx, reportVersionKey).Err()
		return
	}
	current, err := c.Version(ctx)
	if err != nil || announced <= current {
		return
	}
	if err := c.client.Set(ctx, reportVersionKey, announced, 0).Err(); err != nil {
		c.logger.Warn("Failed to apply announced report version", zap.Error(err))
	}
}
