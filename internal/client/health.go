package client

import (
	"context"
)

// HealthStatus is the backend's health check payload.
type HealthStatus struct {
	Status string `json:"status"`
	Uptime string `json:"uptime,omitempty"`
}

// Health pings GET /health: the connectivity self-test pages run when
// a read fails. A success also closes the circuit breaker.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "health", "/health", &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}
