package model

// ServiceFlags is the structured service availability map carried on a
// specialist record.
type ServiceFlags struct {
	VideoConsultation   bool `json:"videoConsultation"`
	HomeVisit           bool `json:"homeVisit"`
	InsuranceAccepted   bool `json:"insuranceAccepted"`
	WeekendAvailability bool `json:"weekendAvailability"`
	SameDayAppointment  bool `json:"sameDayAppointment"`
}

// Specialist is a doctor/provider record from the listing endpoint.
// Read-only from the client's perspective.
type Specialist struct {
	ID              string       `json:"_id"`
	Name            string       `json:"name"`
	Specialty       string       `json:"specialty"`
	Rating          float64      `json:"rating"`
	ReviewCount     int          `json:"reviews"`
	ConsultationFee float64      `json:"consultationFee"`
	Location        string       `json:"location,omitempty"`
	Hospital        string       `json:"hospital,omitempty"`
	ExperienceYears int          `json:"experienceYears,omitempty"`
	Services        ServiceFlags `json:"services"`
	Recommended     bool         `json:"isRecommended"`
}

// Normalize applies the defaults the backend leaves implicit. This is
// the single place optional specialist fields get their fallbacks, so
// callers never re-derive them.
func (s *Specialist) Normalize() {
	if s.Location == "" {
		s.Location = s.Hospital
	}
}
