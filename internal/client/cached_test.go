package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/internal/querycache"
)

func newCachedClient(t *testing.T, baseURL string, retries int) *CachedClient {
	t.Helper()
	base := newTestClient(t, baseURL, newTestStore(t))
	cache := querycache.New(querycache.Config{
		TTL:            time.Minute,
		MaxReadRetries: retries,
		RetryDelay:     time.Millisecond,
	})
	return NewCached(base, cache)
}

func TestCachedListSpecialistsHitsNetworkOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"success":true,"specialists":[{"_id":"doc-1","name":"Dr. Rao","specialty":"Cardiologist"}]}`))
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		specialists, err := c.ListSpecialists(ctx, "Cardiologist")
		require.NoError(t, err)
		assert.Len(t, specialists, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedReadRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"warming up"}`))
			return
		}
		w.Write([]byte(`{"success":true,"prices":{"x-ray":{"Riverside General":110}}}`))
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 2)
	prices, err := c.GetPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(110), prices["x-ray"]["Riverside General"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMutationsAreNeverRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"try later"}`))
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 3)
	_, err := c.BookAppointment(context.Background(), model.BookingRequest{
		UserID: "u-1", DoctorID: "doc-1", Date: "2026-09-01", Time: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a failed booking must not be retried automatically")
}

func TestBookingInvalidatesSlots(t *testing.T) {
	var slotCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/slots":
			atomic.AddInt32(&slotCalls, 1)
			w.Write([]byte(`{"success":true,"slots":["09:00","09:30"]}`))
		case "/api/appointments":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"appointment":{"_id":"apt-1","userId":"u-1","doctorId":"doc-1","date":"2026-09-01","time":"09:00","status":"booked"}}`))
		default:
			w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 0)
	ctx := context.Background()

	_, err := c.GetSlots(ctx, "doc-1", "2026-09-01")
	require.NoError(t, err)
	_, err = c.GetSlots(ctx, "doc-1", "2026-09-01")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&slotCalls), "second read must come from cache")

	_, err = c.BookAppointment(ctx, model.BookingRequest{
		UserID: "u-1", DoctorID: "doc-1", Date: "2026-09-01", Time: "09:00",
	})
	require.NoError(t, err)

	_, err = c.GetSlots(ctx, "doc-1", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&slotCalls), "booking must invalidate the slot listing")
}

func TestEstimateIsNeverCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"success":true,"estimate":{"basePrice":100,"coverage":40,"outOfPocket":60}}`))
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		estimate, err := c.GetPriceEstimate(ctx, "mri-scan", "Riverside General")
		require.NoError(t, err)
		assert.Equal(t, float64(60), estimate.OutOfPocket)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestReviewInvalidatesDoctorReviews(t *testing.T) {
	var reviewReads int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/reviews/doctor/doc-1":
			atomic.AddInt32(&reviewReads, 1)
			w.Write([]byte(`{"success":true,"reviews":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/reviews":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"review":{"_id":"rev-1","doctorId":"doc-1","rating":5,"comment":"great"}}`))
		default:
			w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	c := newCachedClient(t, srv.URL, 0)
	ctx := context.Background()

	_, err := c.ListDoctorReviews(ctx, "doc-1")
	require.NoError(t, err)
	_, err = c.ListDoctorReviews(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&reviewReads))

	_, err = c.CreateReview(ctx, model.ReviewRequest{DoctorID: "doc-1", Rating: 5, Comment: "great"})
	require.NoError(t, err)

	_, err = c.ListDoctorReviews(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&reviewReads))
}
