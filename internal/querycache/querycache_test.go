package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "specialists", Key("specialists"))
	assert.Equal(t, "specialists|Cardiologist", Key("specialists", "Cardiologist"))
	assert.Equal(t, "slots|doc-1|2026-09-01", Key("slots", "doc-1", "2026-09-01"))
}

func TestFetchCachesSuccess(t *testing.T) {
	cache := New(Config{TTL: time.Minute})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		val, err := cache.Fetch(context.Background(), "k", fn)
		require.NoError(t, err)
		assert.Equal(t, "value", val)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	cache := New(Config{TTL: time.Minute})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apierror.NewHTTP(500, "boom")
	}

	_, err := cache.Fetch(context.Background(), "k", fn)
	assert.Error(t, err)
	_, err = cache.Fetch(context.Background(), "k", fn)
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestConcurrentIdenticalFetchesShareOneCall(t *testing.T) {
	cache := New(Config{TTL: time.Minute})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return 42, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]interface{}, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Fetch(context.Background(), "shared", fn)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent identical requests must share one in-flight call")
}

func TestFetchWithRetryRetriesReads(t *testing.T) {
	cache := New(Config{TTL: time.Minute, MaxReadRetries: 2, RetryDelay: time.Millisecond})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, apierror.NewTimeout("slow", nil)
		}
		return "ok", nil
	}

	val, err := cache.FetchWithRetry(context.Background(), "k", fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchWithRetryGivesUpAfterFixedCount(t *testing.T) {
	cache := New(Config{TTL: time.Minute, MaxReadRetries: 2, RetryDelay: time.Millisecond})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apierror.NewHTTP(503, "unavailable")
	}

	_, err := cache.FetchWithRetry(context.Background(), "k", fn)
	assert.True(t, apierror.IsHTTPError(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial call plus two retries")
}

func TestFetchWithRetryNeverRetriesValidation(t *testing.T) {
	cache := New(Config{TTL: time.Minute, MaxReadRetries: 3, RetryDelay: time.Millisecond})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, apierror.NewValidation("missing field", nil)
	}

	_, err := cache.FetchWithRetry(context.Background(), "k", fn)
	assert.True(t, apierror.IsValidation(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInvalidate(t *testing.T) {
	cache := New(Config{TTL: time.Minute})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	_, err := cache.Fetch(context.Background(), Key("profile"), fn)
	require.NoError(t, err)
	cache.Invalidate(Key("profile"))
	_, err = cache.Fetch(context.Background(), Key("profile"), fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidateOpDropsAllParameterVariants(t *testing.T) {
	cache := New(Config{TTL: time.Minute})
	var calls int32

	fn := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	keys := []string{
		Key("slots", "doc-1", "2026-09-01"),
		Key("slots", "doc-2", "2026-09-01"),
		Key("specialists"),
	}
	for _, k := range keys {
		_, err := cache.Fetch(context.Background(), k, fn)
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	cache.InvalidateOp("slots")

	for _, k := range keys {
		_, err := cache.Fetch(context.Background(), k, fn)
		require.NoError(t, err)
	}
	// Both slots entries refetched, specialists still cached.
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}
