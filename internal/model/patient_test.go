package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatientAge(t *testing.T) {
	p := Patient{ID: 1, Name: "John Doe", DateOfBirth: Date(1985, time.June, 15)}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", Date(2024, time.June, 14), 38},
		{"on birthday", Date(2024, time.June, 15), 39},
		{"after birthday", Date(2024, time.December, 20), 39},
		{"earlier month", Date(2024, time.January, 31), 38},
		{"time of day ignored", time.Date(2024, time.June, 15, 23, 59, 0, 0, time.UTC), 39},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Age(tt.now))
		})
	}
}

func TestPatientAgeLeapDay(t *testing.T) {
	p := Patient{DateOfBirth: Date(2000, time.February, 29)}

	assert.Equal(t, 0, p.Age(Date(2001, time.February, 28)))
	assert.Equal(t, 1, p.Age(Date(2001, time.March, 1)))
	assert.Equal(t, 4, p.Age(Date(2004, time.February, 29)))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2024, time.December, 20, 1, 30, 0, 0, loc)

	assert.Equal(t, Date(2024, time.December, 20), DateOf(instant))
	assert.Equal(t, "2024-12-20", FormatDate(DateOf(instant)))
}
