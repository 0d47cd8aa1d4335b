package model

// User is the profile record as returned by the backend. The server is
// the sole authority on merge semantics; the client never patches a
// user locally.
type User struct {
	ID                string   `json:"_id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone,omitempty"`
	Address           string   `json:"address,omitempty"`
	DateOfBirth       string   `json:"dateOfBirth,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	BloodType         string   `json:"bloodType,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	Medications       []string `json:"medications,omitempty"`
	MedicalConditions []string `json:"medicalConditions,omitempty"`
}

// ProfileUpdate is the payload for PUT /api/profile. Nil pointer fields
// are omitted from the request so the server decides what changes.
type ProfileUpdate struct {
	Name              *string  `json:"name,omitempty"`
	Phone             *string  `json:"phone,omitempty"`
	Address           *string  `json:"address,omitempty"`
	DateOfBirth       *string  `json:"dateOfBirth,omitempty"`
	Gender            *string  `json:"gender,omitempty"`
	BloodType         *string  `json:"bloodType,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	Medications       []string `json:"medications,omitempty"`
	MedicalConditions []string `json:"medicalConditions,omitempty"`
}
