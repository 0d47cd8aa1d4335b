package client

import (
	"context"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type insuranceResponse struct {
	Success   bool             `json:"success"`
	Insurance *model.Insurance `json:"insurance"`
}

type verifyRequest struct {
	ServiceID string  `json:"serviceId"`
	Cost      float64 `json:"cost"`
}

type verifyResponse struct {
	Success bool                `json:"success"`
	Result  model.CoverageCheck `json:"result"`
}

// GetInsurance fetches the caller's insurance record; nil means none
// on file.
func (c *Client) GetInsurance(ctx context.Context) (*model.Insurance, error) {
	var resp insuranceResponse
	if err := c.get(ctx, "insurance", "/api/insurance", &resp); err != nil {
		return nil, err
	}
	return resp.Insurance, nil
}

// UpdateInsurance replaces the insurance record wholesale; there is no
// partial patch.
func (c *Client) UpdateInsurance(ctx context.Context, update model.InsuranceUpdate) (*model.Insurance, error) {
	if err := validateRequest(update); err != nil {
		return nil, err
	}

	var resp insuranceResponse
	if err := c.post(ctx, "update_insurance", "/api/insurance", update, &resp); err != nil {
		return nil, err
	}
	return resp.Insurance, nil
}

// VerifyInsurance asks the server whether the caller's policy covers a
// service at a given cost.
func (c *Client) VerifyInsurance(ctx context.Context, serviceID string, cost float64) (model.CoverageCheck, error) {
	if serviceID == "" {
		return model.CoverageCheck{}, apierror.NewValidation("service id is required", nil)
	}

	var resp verifyResponse
	if err := c.post(ctx, "verify_insurance", "/api/insurance/verify", verifyRequest{ServiceID: serviceID, Cost: cost}, &resp); err != nil {
		return model.CoverageCheck{}, err
	}
	return resp.Result, nil
}
