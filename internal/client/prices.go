package client

import (
	"context"
	"net/url"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type pricesResponse struct {
	Success bool             `json:"success"`
	Prices  model.PriceTable `json:"prices"`
}

type estimateResponse struct {
	Success  bool                `json:"success"`
	Estimate model.PriceEstimate `json:"estimate"`
}

// GetPrices fetches the full service price table.
func (c *Client) GetPrices(ctx context.Context) (model.PriceTable, error) {
	var resp pricesResponse
	if err := c.get(ctx, "prices", "/api/prices", &resp); err != nil {
		return nil, err
	}
	return resp.Prices, nil
}

// GetPriceEstimate fetches the estimate for a service at a hospital.
// Estimates are ephemeral and never cached beyond the query that asked.
func (c *Client) GetPriceEstimate(ctx context.Context, serviceID, hospital string) (model.PriceEstimate, error) {
	if serviceID == "" || hospital == "" {
		return model.PriceEstimate{}, apierror.NewValidation("service id and hospital are required", nil)
	}

	path := "/api/prices/estimate/" + url.PathEscape(serviceID) + "?hospital=" + url.QueryEscape(hospital)
	var resp estimateResponse
	if err := c.get(ctx, "estimate", path, &resp); err != nil {
		return model.PriceEstimate{}, err
	}
	return resp.Estimate, nil
}
