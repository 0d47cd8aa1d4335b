package client

import (
	"context"
	"net/url"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type reviewsResponse struct {
	Success bool           `json:"success"`
	Reviews []model.Review `json:"reviews"`
}

type reviewResponse struct {
	Success bool         `json:"success"`
	Review  model.Review `json:"review"`
}

// ListDoctorReviews fetches the reviews for one doctor.
func (c *Client) ListDoctorReviews(ctx context.Context, doctorID string) ([]model.Review, error) {
	if doctorID == "" {
		return nil, apierror.NewValidation("doctor id is required", nil)
	}

	var resp reviewsResponse
	if err := c.get(ctx, "reviews", "/api/reviews/doctor/"+url.PathEscape(doctorID), &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// CreateReview posts a review for a doctor.
func (c *Client) CreateReview(ctx context.Context, req model.ReviewRequest) (model.Review, error) {
	if err := validateRequest(req); err != nil {
		return model.Review{}, err
	}

	var resp reviewResponse
	if err := c.post(ctx, "create_review", "/api/reviews", req, &resp); err != nil {
		return model.Review{}, err
	}
	return resp.Review, nil
}
