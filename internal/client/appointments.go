package client

import (
	"context"
	"net/url"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type appointmentResponse struct {
	Success     bool              `json:"success"`
	Appointment model.Appointment `json:"appointment"`
}

// BookAppointment creates an appointment. The required-field check is
// the single enforcement point for the "no booking while logged out"
// guard: an empty user id fails before any network call, so the
// operation is never invoked without a session user.
func (c *Client) BookAppointment(ctx context.Context, req model.BookingRequest) (model.Appointment, error) {
	if err := validateRequest(req); err != nil {
		return model.Appointment{}, err
	}

	var resp appointmentResponse
	if err := c.post(ctx, "book_appointment", "/api/appointments", req, &resp); err != nil {
		return model.Appointment{}, err
	}
	return resp.Appointment, nil
}

// CancelAppointment transitions an appointment to cancelled. The
// record is never deleted client-side.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) error {
	if appointmentID == "" {
		return apierror.NewValidation("appointment id is required", nil)
	}
	return c.delete(ctx, "cancel_appointment", "/api/appointments/"+url.PathEscape(appointmentID), nil)
}
