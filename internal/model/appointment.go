package model

import "time"

// Appointment links a patient and a dentist on a calendar date. IDs are assigned by the
// caller and are not checked for uniqueness.
type Appointment struct {
	ID       int       `json:"id"`
	Patient  Patient   `json:"patient"`
	Dentist  Dentist   `json:"dentist"`
	Date     time.Time `json:"date"`
	Notes    *string   `json:"notes,omitempty"`
	Services []string  `json:"services"`
}
