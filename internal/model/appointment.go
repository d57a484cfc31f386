package model

import (
	"time"
)

const (
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment holds a (doctor, date, time) slot for a patient. At most
// one confirmed appointment may occupy a slot; the booking service
// enforces that, not the store.
type Appointment struct {
	ID              string    `db:"id" json:"id"`
	PatientID       string    `db:"patient_id" json:"patient_id"`
	DoctorID        string    `db:"doctor_id" json:"doctor_id"`
	DoctorName      string    `db:"doctor_name" json:"doctor_name"`
	DoctorEmail     string    `db:"doctor_email" json:"doctor_email"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Symptoms        *string   `db:"symptoms" json:"symptoms,omitempty"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	PatientID       string  `json:"patient_id" binding:"required"`
	DoctorID        string  `json:"doctor_id" binding:"required"`
	DoctorName      string  `json:"doctor_name" binding:"required"`
	DoctorEmail     string  `json:"doctor_email" binding:"required,email"`
	AppointmentDate string  `json:"appointment_date" binding:"required"`
	AppointmentTime string  `json:"appointment_time" binding:"required"`
	Symptoms        *string `json:"symptoms"`
	Notes           *string `json:"notes"`
}
