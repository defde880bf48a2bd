package model

import "time"

type Patient struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	PhoneNumber    *string   `json:"phone_number,omitempty"`
	MedicalHistory *string   `json:"medical_history,omitempty"`
}

// Age returns the number of whole years between the patient's date of birth and now.
// It is computed on every call.
func (p Patient) Age(now time.Time) int {
	dob := DateOf(p.DateOfBirth)
	today := DateOf(now)

	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}

func (p Patient) AgeToday() int {
	return p.Age(time.Now())
}
