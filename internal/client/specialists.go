package client

import (
	"context"
	"net/url"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type specialistsResponse struct {
	Success     bool               `json:"success"`
	Specialists []model.Specialist `json:"specialists"`
}

type slotsResponse struct {
	Success bool     `json:"success"`
	Slots   []string `json:"slots"`
}

// ListSpecialists fetches the provider listing, optionally filtered by
// specialty substring.
func (c *Client) ListSpecialists(ctx context.Context, specialty string) ([]model.Specialist, error) {
	path := "/api/specialists"
	if specialty != "" {
		path += "?specialty=" + url.QueryEscape(specialty)
	}

	var resp specialistsResponse
	if err := c.get(ctx, "specialists", path, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Specialists {
		resp.Specialists[i].Normalize()
	}
	return resp.Specialists, nil
}

// ListSpecialistsWithFallback lists by specialty and, when the filtered
// result is empty, retries once with no filter and uses that result
// instead.
func (c *Client) ListSpecialistsWithFallback(ctx context.Context, specialty string) ([]model.Specialist, error) {
	specialists, err := c.ListSpecialists(ctx, specialty)
	if err != nil {
		return nil, err
	}
	if len(specialists) == 0 && specialty != "" {
		return c.ListSpecialists(ctx, "")
	}
	return specialists, nil
}

// GetSlots fetches the open time slots for a doctor on a date.
func (c *Client) GetSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	if doctorID == "" || date == "" {
		return nil, apierror.NewValidation("doctor id and date are required", nil)
	}

	path := "/api/slots?doctorId=" + url.QueryEscape(doctorID) + "&date=" + url.QueryEscape(date)
	var resp slotsResponse
	if err := c.get(ctx, "slots", path, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}
