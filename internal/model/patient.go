package model

import (
	"time"
)

const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderOther          = "other"
	GenderPreferNotToSay = "prefer_not_to_say"
)

var validGenders = map[string]bool{
	GenderMale:           true,
	GenderFemale:         true,
	GenderOther:          true,
	GenderPreferNotToSay: true,
}

func IsValidGender(g string) bool { return validGenders[g] }

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

func IsValidBloodType(bt string) bool { return validBloodTypes[bt] }

// Patient is the canonical persisted shape. Email is a natural key,
// unique across all patients.
type Patient struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	Name             string     `db:"name" json:"name"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth      *string    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	BloodType        *string    `db:"blood_type" json:"blood_type,omitempty"`
	Allergies        StringList `db:"allergies" json:"allergies"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type CreatePatientRequest struct {
	Email            string   `json:"email" binding:"required,email"`
	Name             string   `json:"name" binding:"required,min=2,max=100"`
	Phone            *string  `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth      *string  `json:"date_of_birth"`
	Gender           *string  `json:"gender"`
	Address          *string  `json:"address" binding:"omitempty,max=500"`
	EmergencyContact *string  `json:"emergency_contact" binding:"omitempty,max=100"`
	BloodType        *string  `json:"blood_type"`
	Allergies        []string `json:"allergies"`
}

// UpdatePatientRequest carries a partial update: only non-nil fields
// are written. Email is immutable once created.
type UpdatePatientRequest struct {
	Name             *string   `json:"name" binding:"omitempty,min=2,max=100"`
	Phone            *string   `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth      *string   `json:"date_of_birth"`
	Gender           *string   `json:"gender"`
	Address          *string   `json:"address" binding:"omitempty,max=500"`
	EmergencyContact *string   `json:"emergency_contact" binding:"omitempty,max=100"`
	BloodType        *string   `json:"blood_type"`
	Allergies        *[]string `json:"allergies"`
}

// PatientStatistics aggregates a patient's record activity. Derived on
// each call from stored rows, never incrementally maintained.
type PatientStatistics struct {
	TotalRecords  int            `json:"total_records"`
	RecordsByType map[string]int `json:"records_by_type"`
	RecentRecords int            `json:"recent_records"`
	LastUpdated   time.Time      `json:"last_updated"`
	PatientInfo   *PatientInfo   `json:"patient_info,omitempty"`
}

type PatientInfo struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Age       *int     `json:"age,omitempty"`
	BloodType *string  `json:"blood_type,omitempty"`
	Allergies []string `json:"allergies"`
}

// PatientSummary is the composite view returned by the patient service.
type PatientSummary struct {
	Patient       *Patient           `json:"patient"`
	RecentRecords []*MedicalRecord   `json:"recent_records"`
	Statistics    *PatientStatistics `json:"statistics"`
	GeneratedAt   time.Time          `json:"summary_generated_at"`
}
