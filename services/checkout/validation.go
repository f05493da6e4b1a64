package checkout

import (
	"regexp"
	"strings"
	"time"

	"labcart/models"
)

var (
	contactPattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// validatePatientDetails enforces the PatientDetails -> Schedule gate: a
// 10-digit contact and a valid email always; family bookings additionally
// need the patient's name, an age in [0,120] and a relation.
func validatePatientDetails(details models.PatientDetails, bookingFor string) error {
	if !contactPattern.MatchString(details.Contact) {
		return NewValidationError("contact number must be exactly 10 digits")
	}
	if !emailPattern.MatchString(details.Email) {
		return NewValidationError("a valid email address is required")
	}

	switch bookingFor {
	case models.BookingForSelf:
		return nil
	case models.BookingForFamily:
		if strings.TrimSpace(details.Name) == "" {
			return NewValidationError("patient name is required for family bookings")
		}
		if details.Age < 0 || details.Age > 120 {
			return NewValidationError("patient age must be between 0 and 120")
		}
		if strings.TrimSpace(details.Relation) == "" {
			return NewValidationError("relation to the patient is required for family bookings")
		}
		return nil
	default:
		return NewValidationError(`bookingFor must be "self" or "family"`)
	}
}

// validateAppointmentDate requires a parseable date that is not in the past.
func validateAppointmentDate(date string, now time.Time) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return NewValidationError("appointment date must be in YYYY-MM-DD format")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return NewValidationError("appointment date cannot be in the past")
	}
	return nil
}
