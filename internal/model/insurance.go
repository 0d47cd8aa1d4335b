package model

// Insurance is the caller's insurance record. At most one per user;
// replaced wholesale on update, never patched.
type Insurance struct {
	ID           string             `json:"_id,omitempty"`
	UserID       string             `json:"userId,omitempty"`
	Provider     string             `json:"provider"`
	PolicyNumber string             `json:"policyNumber"`
	Coverage     map[string]float64 `json:"coverage,omitempty"`
	ValidFrom    string             `json:"validFrom"`
	ValidTo      string             `json:"validTo"`
}

// InsuranceUpdate is the wholesale replacement payload for POST
// /api/insurance.
type InsuranceUpdate struct {
	Provider     string             `json:"provider" validate:"required"`
	PolicyNumber string             `json:"policyNumber" validate:"required"`
	Coverage     map[string]float64 `json:"coverage,omitempty"`
	ValidFrom    string             `json:"validFrom"`
	ValidTo      string             `json:"validTo"`
}

// CoverageCheck is the server's answer to an insurance verification for
// a service and cost pair.
type CoverageCheck struct {
	Covered     bool    `json:"covered"`
	Coverage    float64 `json:"coverage"`
	OutOfPocket float64 `json:"outOfPocket"`
}
