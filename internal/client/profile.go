package client

import (
	"context"

	"github.com/sudha-nunna/healthcare-project/internal/model"
)

// Profile is the caller's user record plus their appointment history,
// as returned by GET /api/profile.
type Profile struct {
	User         model.User          `json:"user"`
	Appointments []model.Appointment `json:"appointments"`
}

type profileResponse struct {
	Success      bool                `json:"success"`
	User         model.User          `json:"user"`
	Appointments []model.Appointment `json:"appointments"`
}

type updateProfileResponse struct {
	Success bool       `json:"success"`
	User    model.User `json:"user"`
}

// GetProfile fetches the caller's profile and appointments.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var resp profileResponse
	if err := c.get(ctx, "profile", "/api/profile", &resp); err != nil {
		return Profile{}, err
	}
	return Profile{User: resp.User, Appointments: resp.Appointments}, nil
}

// UpdateProfile sends the requested changes; the server is the sole
// authority on merge semantics, nothing is applied locally.
func (c *Client) UpdateProfile(ctx context.Context, updates model.ProfileUpdate) (model.User, error) {
	var resp updateProfileResponse
	if err := c.put(ctx, "update_profile", "/api/profile", updates, &resp); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}
