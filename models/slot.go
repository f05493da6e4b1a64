package models

import "time"

// SlotKey identifies one bookable appointment slot.
type SlotKey struct {
	LabName string `json:"labName"`
	Date    string `json:"date"` // "YYYY-MM-DD"
	Time    string `json:"time"` // "HH:MM"
}

// SlotLock is a short-lived exclusive hold on a SlotKey. At most one
// non-expired lock exists per SlotKey at any instant.
type SlotLock struct {
	Key        SlotKey   `json:"key"`
	HolderID   string    `json:"holderId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
