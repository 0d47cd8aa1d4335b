package model

import (
	"bytes"
	"encoding/json"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// DoctorRef is an appointment's doctor reference. The backend returns
// either a bare id string or a denormalized doctor snapshot, so it
// decodes both shapes into one type.
type DoctorRef struct {
	ID        string `json:"_id"`
	Name      string `json:"name,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Hospital  string `json:"hospital,omitempty"`
}

func (d *DoctorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.ID)
	}
	type ref DoctorRef
	return json.Unmarshal(data, (*ref)(d))
}

func (d DoctorRef) MarshalJSON() ([]byte, error) {
	if d.Name == "" && d.Specialty == "" && d.Hospital == "" {
		return json.Marshal(d.ID)
	}
	type ref DoctorRef
	return json.Marshal(ref(d))
}

// Appointment is created by booking, transitioned to cancelled by an
// explicit cancel, never deleted client-side.
type Appointment struct {
	ID     string            `json:"_id"`
	UserID string            `json:"userId"`
	Doctor DoctorRef         `json:"doctorId"`
	Date   string            `json:"date"`
	Time   string            `json:"time"`
	Status AppointmentStatus `json:"status"`
}

// BookingRequest is the payload for POST /api/appointments.
type BookingRequest struct {
	UserID   string `json:"userId" validate:"required"`
	DoctorID string `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"required"`
}
