package client

import (
	"context"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/internal/querycache"
)

// Cache key operation names. Each read operation owns one name; its
// parameters complete the key, so identical requests share one cache
// entry and one in-flight call.
const (
	opSpecialists = "specialists"
	opSlots       = "slots"
	opProfile     = "profile"
	opInsurance   = "insurance"
	opReviews     = "reviews"
	opPrices      = "prices"
)

// CachedClient wires the operation catalog into the query cache: reads
// go through the cache with per-operation keys and the fixed read
// retry policy; mutations call straight through, are never retried,
// and invalidate the keys they affect.
type CachedClient struct {
	*Client
	cache *querycache.Cache
}

func NewCached(c *Client, cache *querycache.Cache) *CachedClient {
	return &CachedClient{Client: c, cache: cache}
}

func fetch[T any](ctx context.Context, cache *querycache.Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	val, err := cache.FetchWithRetry(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return val.(T), nil
}

func (c *CachedClient) ListSpecialists(ctx context.Context, specialty string) ([]model.Specialist, error) {
	return fetch(ctx, c.cache, querycache.Key(opSpecialists, specialty), func(ctx context.Context) ([]model.Specialist, error) {
		return c.Client.ListSpecialists(ctx, specialty)
	})
}

func (c *CachedClient) ListSpecialistsWithFallback(ctx context.Context, specialty string) ([]model.Specialist, error) {
	return fetch(ctx, c.cache, querycache.Key(opSpecialists, "fallback", specialty), func(ctx context.Context) ([]model.Specialist, error) {
		return c.Client.ListSpecialistsWithFallback(ctx, specialty)
	})
}

func (c *CachedClient) GetSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	return fetch(ctx, c.cache, querycache.Key(opSlots, doctorID, date), func(ctx context.Context) ([]string, error) {
		return c.Client.GetSlots(ctx, doctorID, date)
	})
}

func (c *CachedClient) GetProfile(ctx context.Context) (Profile, error) {
	return fetch(ctx, c.cache, querycache.Key(opProfile), func(ctx context.Context) (Profile, error) {
		return c.Client.GetProfile(ctx)
	})
}

func (c *CachedClient) GetInsurance(ctx context.Context) (*model.Insurance, error) {
	return fetch(ctx, c.cache, querycache.Key(opInsurance), func(ctx context.Context) (*model.Insurance, error) {
		return c.Client.GetInsurance(ctx)
	})
}

func (c *CachedClient) ListDoctorReviews(ctx context.Context, doctorID string) ([]model.Review, error) {
	return fetch(ctx, c.cache, querycache.Key(opReviews, doctorID), func(ctx context.Context) ([]model.Review, error) {
		return c.Client.ListDoctorReviews(ctx, doctorID)
	})
}

func (c *CachedClient) GetPrices(ctx context.Context) (model.PriceTable, error) {
	return fetch(ctx, c.cache, querycache.Key(opPrices), func(ctx context.Context) (model.PriceTable, error) {
		return c.Client.GetPrices(ctx)
	})
}

// GetPriceEstimate intentionally bypasses the cache: estimates are
// ephemeral and live only as long as the query that requested them.

// BookAppointment books and invalidates the doctor's slots and the
// caller's profile (its appointment list changed).
func (c *CachedClient) BookAppointment(ctx context.Context, req model.BookingRequest) (model.Appointment, error) {
	apt, err := c.Client.BookAppointment(ctx, req)
	if err != nil {
		return model.Appointment{}, err
	}
	c.cache.Invalidate(querycache.Key(opSlots, req.DoctorID, req.Date))
	c.cache.InvalidateOp(opProfile)
	return apt, nil
}

// CancelAppointment cancels and invalidates profile and all slot
// listings; the appointment id does not identify the doctor or date.
func (c *CachedClient) CancelAppointment(ctx context.Context, appointmentID string) error {
	if err := c.Client.CancelAppointment(ctx, appointmentID); err != nil {
		return err
	}
	c.cache.InvalidateOp(opProfile)
	c.cache.InvalidateOp(opSlots)
	return nil
}

func (c *CachedClient) UpdateProfile(ctx context.Context, updates model.ProfileUpdate) (model.User, error) {
	user, err := c.Client.UpdateProfile(ctx, updates)
	if err != nil {
		return model.User{}, err
	}
	c.cache.InvalidateOp(opProfile)
	return user, nil
}

func (c *CachedClient) UpdateInsurance(ctx context.Context, update model.InsuranceUpdate) (*model.Insurance, error) {
	ins, err := c.Client.UpdateInsurance(ctx, update)
	if err != nil {
		return nil, err
	}
	c.cache.InvalidateOp(opInsurance)
	return ins, nil
}

// CreateReview posts a review and invalidates the doctor's reviews and
// the specialist listings, whose rating aggregates changed.
func (c *CachedClient) CreateReview(ctx context.Context, req model.ReviewRequest) (model.Review, error) {
	review, err := c.Client.CreateReview(ctx, req)
	if err != nil {
		return model.Review{}, err
	}
	c.cache.Invalidate(querycache.Key(opReviews, req.DoctorID))
	c.cache.InvalidateOp(opSpecialists)
	return review, nil
}

// Session changes drop everything cached; reads are user-scoped.

func (c *CachedClient) Login(ctx context.Context, email, password string) (model.Session, error) {
	sess, err := c.Client.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	c.cache.Flush()
	return sess, nil
}

func (c *CachedClient) Signup(ctx context.Context, name, email, password, confirmPassword string) (model.Session, error) {
	sess, err := c.Client.Signup(ctx, name, email, password, confirmPassword)
	if err != nil {
		return model.Session{}, err
	}
	c.cache.Flush()
	return sess, nil
}

func (c *CachedClient) Logout(ctx context.Context) error {
	if err := c.Client.Logout(ctx); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}
