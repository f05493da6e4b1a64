package models

import "time"

// WizardStep is one stage of the checkout wizard. Transitions are forward
// only; cancellation returns to StepCart.
type WizardStep string

const (
	StepCart           WizardStep = "cart"
	StepPatientDetails WizardStep = "patientDetails"
	StepSchedule       WizardStep = "schedule"
	StepReview         WizardStep = "review"
	StepConfirmed      WizardStep = "confirmed"
)

// Booking-for values.
const (
	BookingForSelf   = "self"
	BookingForFamily = "family"
)

// PatientDetails is who the appointment is for and how to reach them.
type PatientDetails struct {
	Name     string `bson:"name" json:"name"`
	Age      int    `bson:"age" json:"age"`
	Relation string `bson:"relation,omitempty" json:"relation,omitempty"`
	Contact  string `bson:"contact" json:"contact"`
	Email    string `bson:"email" json:"email"`
}

// WizardState is the persisted slice of checkout progress. The chosen
// lab/date/time is deliberately absent: a stale slot selection could point at
// an expired or stolen hold, so schedule data is re-confirmed every session.
type WizardState struct {
	Step        WizardStep     `json:"step"`
	Patient     PatientDetails `json:"patient"`
	BookingFor  string         `json:"bookingFor"`
	Coupon      *Coupon        `json:"coupon,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// ScheduleSelection is the client-held slot choice, re-submitted on the
// schedule and confirm calls rather than persisted server-side.
type ScheduleSelection struct {
	LabName string `json:"labName"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	// ConfirmPartial acknowledges booking a lab that cannot run every
	// requested test.
	ConfirmPartial bool `json:"confirmPartial,omitempty"`
}
