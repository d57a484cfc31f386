package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medscanhq/medscan-api/internal/model"
)

// Store is the persistence contract both backends satisfy. Semantics
// every implementation must honor:
//
//   - Get* operations return (nil, nil) when the row is absent.
//   - Mutating operations return apperrors.NotFound when they match
//     zero rows, apperrors.Conflict on uniqueness violations, and
//     apperrors.Storage for anything else; driver errors never leak.
//   - Every mutation commits before returning; no partial application.
//   - Deleting a patient cascades to medical records and appointments
//     at the storage layer.
//   - List-valued fields come back as non-nil []string regardless of
//     how the backend encodes them.
type Store interface {
	Connect(ctx context.Context) error
	Close() error
	CreateSchema(ctx context.Context) error

	// DB exposes the underlying handle so backend-agnostic layers
	// (the admin store) can run against the active connection.
	DB() *sqlx.DB

	CreatePatient(ctx context.Context, p *model.Patient) (string, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id string, upd *model.UpdatePatientRequest) error
	DeletePatient(ctx context.Context, id string) error
	SearchPatients(ctx context.Context, query string, limit int) ([]*model.Patient, error)

	AddMedicalRecord(ctx context.Context, patientID string, rec *model.MedicalRecord) (string, error)
	GetMedicalRecord(ctx context.Context, id string) (*model.MedicalRecord, error)
	GetMedicalHistory(ctx context.Context, patientID string, limit int) ([]*model.MedicalRecord, error)
	UpdateMedicalRecord(ctx context.Context, id string, upd *model.UpdateMedicalRecordRequest) error
	DeleteMedicalRecord(ctx context.Context, id string) error

	GetPatientStatistics(ctx context.Context, patientID string) (*model.PatientStatistics, error)
	GetConditionHistory(ctx context.Context, patientID, condition string) ([]*model.MedicalRecord, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) (string, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, patientID string) ([]*model.Appointment, error)
	GetConfirmedAppointment(ctx context.Context, doctorID, date, timeSlot string) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id, status string) error
}

// recentWindow is the lookback used by per-patient statistics.
const recentWindow = 30 * 24 * time.Hour

// RecentCutoff returns the start of the statistics window.
func RecentCutoff(now time.Time) time.Time {
	return now.UTC().Add(-recentWindow)
}
