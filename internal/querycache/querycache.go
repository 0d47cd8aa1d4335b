// Package querycache provides the request/response caching discipline
// the domain operations plug into: canonical cache keys, TTL caching,
// deduplication of concurrent identical requests, a fixed retry policy
// for read operations, and invalidation by key or operation.
//
// Mutations never pass through this package; they call the client
// directly and invalidate the keys they affect.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
	"github.com/sudha-nunna/healthcare-project/pkg/logger"
	"github.com/sudha-nunna/healthcare-project/pkg/metrics"
)

const keySep = "|"

// Key builds the canonical cache key for an operation and its
// parameters. Identical (operation, parameters) pairs share one key
// and therefore at most one in-flight network call.
func Key(op string, params ...string) string {
	if len(params) == 0 {
		return op
	}
	return op + keySep + strings.Join(params, keySep)
}

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	// MaxReadRetries is the fixed number of automatic retries applied
	// to read operations. Zero disables retrying.
	MaxReadRetries int
	RetryDelay     time.Duration
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

type call struct {
	done chan struct{}
	val  interface{}
	err  error
}

// Cache is the query cache. Values live for the configured TTL;
// concurrent fetches of the same key join the in-flight call instead
// of issuing a second request.
type Cache struct {
	store   *gocache.Cache
	log     *logger.Logger
	metrics *metrics.Metrics

	retries    int
	retryDelay time.Duration

	mu       sync.Mutex
	inflight map[string]*call
}

func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}

	return &Cache{
		store:      gocache.New(cfg.TTL, cfg.CleanupInterval),
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		retries:    cfg.MaxReadRetries,
		retryDelay: cfg.RetryDelay,
		inflight:   map[string]*call{},
	}
}

// Fetch returns the cached value for key, or runs fn once and caches
// its result. Concurrent callers with the same key wait on the single
// in-flight call. Errors are never cached.
func (c *Cache) Fetch(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if val, ok := c.store.Get(key); ok {
		c.metrics.CacheHits.Inc()
		return val, nil
	}
	c.metrics.CacheMisses.Inc()

	c.mu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		c.metrics.InflightJoins.Inc()
		select {
		case <-cl.done:
			return cl.val, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	cl.val, cl.err = fn(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	if cl.err == nil {
		c.store.SetDefault(key, cl.val)
	}
	close(cl.done)

	return cl.val, cl.err
}

// FetchWithRetry is Fetch plus the fixed read retry policy: the fetch
// function is retried up to the configured count. Validation errors
// are not retried, they cannot succeed. Mutations must never go
// through here; a retried mutation risks duplicate side effects.
func (c *Cache) FetchWithRetry(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return c.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		var val interface{}
		var err error
		for attempt := 0; ; attempt++ {
			val, err = fn(ctx)
			if err == nil || attempt >= c.retries || apierror.IsValidation(err) {
				return val, err
			}
			c.metrics.ReadRetries.WithLabelValues(opOf(key)).Inc()
			c.log.Debug("retrying read operation", "key", key, "attempt", attempt+1, "error", err.Error())

			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	})
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(keys ...string) {
	for _, key := range keys {
		c.store.Delete(key)
	}
}

// InvalidateOp drops every cached entry of one operation regardless of
// parameters.
func (c *Cache) InvalidateOp(op string) {
	for key := range c.store.Items() {
		if key == op || strings.HasPrefix(key, op+keySep) {
			c.store.Delete(key)
		}
	}
}

// Flush drops everything.
func (c *Cache) Flush() {
	c.store.Flush()
}

func opOf(key string) string {
	if i := strings.Index(key, keySep); i >= 0 {
		return key[:i]
	}
	return key
}
