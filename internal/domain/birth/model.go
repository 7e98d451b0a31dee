package birth

import (
	"strings"
	"time"
)

// Gender is one of the two literals accepted by the calculation service.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// RawInput is the unvalidated payload submitted by clients.
type RawInput struct {
	Date     string `json:"birthDate"`
	Time     string `json:"birthTime"`
	Location string `json:"location"`
	Gender   string `json:"gender"`
	Name     string `json:"name,omitempty"`
}

// Input is a validated birth record. It is never mutated after Validate returns it.
type Input struct {
	Date     time.Time `json:"date"`
	Hour     int       `json:"hour"`
	Minute   int       `json:"minute"`
	Location string    `json:"location"`
	Gender   Gender    `json:"gender"`
	Name     string    `json:"name,omitempty"`
}

// DateString formats the calendar date as YYYY-MM-DD.
func (in Input) DateString() string {
	return in.Date.Format(dateLayout)
}

// ClockString formats the local clock time as HH:MM.
func (in Input) ClockString() string {
	return time.Date(2000, 1, 1, in.Hour, in.Minute, 0, 0, time.UTC).Format("15:04")
}

// DisplayName falls back to the first part of the location when no name was given.
func (in Input) DisplayName() string {
	if name := strings.TrimSpace(in.Name); name != "" {
		return name
	}
	city, _, _ := strings.Cut(in.Location, ",")
	return strings.TrimSpace(city)
}
