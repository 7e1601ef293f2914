package domain

import "gopkg.in/guregu/null.v4"

const (
	UnknownPlate     = "UNKNOWN"
	UnknownViolation = "Unknown Violation"
	UnknownUser      = "unknown_user"

	// TimestampLayout is the civil-time layout of ViolationRecord.Timestamp.
	TimestampLayout = "2006-01-02 15:04:05"
)

// ViolationRecord is written once per reported incident and never updated.
type ViolationRecord struct {
	ViolationID   string      `json:"violation_id"`
	LicensePlate  string      `json:"license_plate"`
	Description   string      `json:"description"`
	ViolationType string      `json:"violation_type"`
	Username      string      `json:"username"`
	Email         null.String `json:"email"`
	Timestamp     string      `json:"timestamp"`
	ImageKey      null.String `json:"image_key,omitempty"`
}

// NewViolation is the caller-supplied part of a ViolationRecord.
type NewViolation struct {
	LicensePlate  string
	Description   string
	ViolationType string
	Username      string
	Email         string
	ImageKey      string
}

// VehicleOwner is external reference data, read-only for this service.
type VehicleOwner struct {
	LicensePlate  string `json:"license_plate"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
}

type ViolationNotice struct {
	To            string
	LicensePlate  string
	ViolationType string
	Description   string
}
