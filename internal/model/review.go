package model

// Review is a patient review of a doctor.
type Review struct {
	ID        string  `json:"_id"`
	DoctorID  string  `json:"doctorId"`
	UserID    string  `json:"userId,omitempty"`
	UserName  string  `json:"userName,omitempty"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// ReviewRequest is the payload for POST /api/reviews.
type ReviewRequest struct {
	DoctorID string  `json:"doctorId" validate:"required"`
	Rating   float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string  `json:"comment"`
}
