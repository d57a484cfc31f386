package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/pkg/metrics"
)

// instrumentedStore decorates a backend with per-operation prometheus
// counters and latency histograms.
type instrumentedStore struct {
	backend string
	next    Store
}

// WithMetrics wraps s so every operation is observed under the given
// backend label.
func WithMetrics(backend string, s Store) Store {
	return &instrumentedStore{backend: backend, next: s}
}

func (s *instrumentedStore) observe(operation string, start time.Time, err error) {
	metrics.ObserveStore(s.backend, operation, err, time.Since(start))
}

func (s *instrumentedStore) Connect(ctx context.Context) error {
	start := time.Now()
	err := s.next.Connect(ctx)
	s.observe("connect", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}

func (s *instrumentedStore) CreateSchema(ctx context.Context) error {
	start := time.Now()
	err := s.next.CreateSchema(ctx)
	s.observe("create_schema", start, err)
	return err
}

func (s *instrumentedStore) DB() *sqlx.DB {
	return s.next.DB()
}

func (s *instrumentedStore) CreatePatient(ctx context.Context, p *model.Patient) (string, error) {
	start := time.Now()
	id, err := s.next.CreatePatient(ctx, p)
	s.observe("create_patient", start, err)
	return id, err
}

func (s *instrumentedStore) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	start := time.Now()
	p, err := s.next.GetPatient(ctx, id)
	s.observe("get_patient", start, err)
	return p, err
}

func (s *instrumentedStore) GetPatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	start := time.Now()
	p, err := s.next.GetPatientByEmail(ctx, email)
	s.observe("get_patient_by_email", start, err)
	return p, err
}

func (s *instrumentedStore) UpdatePatient(ctx context.Context, id string, upd *model.UpdatePatientRequest) error {
	start := time.Now()
	err := s.next.UpdatePatient(ctx, id, upd)
	s.observe("update_patient", start, err)
	return err
}

func (s *instrumentedStore) DeletePatient(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeletePatient(ctx, id)
	s.observe("delete_patient", start, err)
	return err
}

func (s *instrumentedStore) SearchPatients(ctx context.Context, query string, limit int) ([]*model.Patient, error) {
	start := time.Now()
	results, err := s.next.SearchPatients(ctx, query, limit)
	s.observe("search_patients", start, err)
	return results, err
}

func (s *instrumentedStore) AddMedicalRecord(ctx context.Context, patientID string, rec *model.MedicalRecord) (string, error) {
	start := time.Now()
	id, err := s.next.AddMedicalRecord(ctx, patientID, rec)
	s.observe("add_medical_record", start, err)
	return id, err
}

func (s *instrumentedStore) GetMedicalRecord(ctx context.Context, id string) (*model.MedicalRecord, error) {
	start := time.Now()
	rec, err := s.next.GetMedicalRecord(ctx, id)
	s.observe("get_medical_record", start, err)
	return rec, err
}

func (s *instrumentedStore) GetMedicalHistory(ctx context.Context, patientID string, limit int) ([]*model.MedicalRecord, error) {
	start := time.Now()
	records, err := s.next.GetMedicalHistory(ctx, patientID, limit)
	s.observe("get_medical_history", start, err)
	return records, err
}

func (s *instrumentedStore) UpdateMedicalRecord(ctx context.Context, id string, upd *model.UpdateMedicalRecordRequest) error {
	start := time.Now()
	err := s.next.UpdateMedicalRecord(ctx, id, upd)
	s.observe("update_medical_record", start, err)
	return err
}

func (s *instrumentedStore) DeleteMedicalRecord(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteMedicalRecord(ctx, id)
	s.observe("delete_medical_record", start, err)
	return err
}

func (s *instrumentedStore) GetPatientStatistics(ctx context.Context, patientID string) (*model.PatientStatistics, error) {
	start := time.Now()
	stats, err := s.next.GetPatientStatistics(ctx, patientID)
	s.observe("get_patient_statistics", start, err)
	return stats, err
}

func (s *instrumentedStore) GetConditionHistory(ctx context.Context, patientID, condition string) ([]*model.MedicalRecord, error) {
	start := time.Now()
	records, err := s.next.GetConditionHistory(ctx, patientID, condition)
	s.observe("get_condition_history", start, err)
	return records, err
}

func (s *instrumentedStore) CreateAppointment(ctx context.Context, a *model.Appointment) (string, error) {
	start := time.Now()
	id, err := s.next.CreateAppointment(ctx, a)
	s.observe("create_appointment", start, err)
	return id, err
}

func (s *instrumentedStore) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	start := time.Now()
	a, err := s.next.GetAppointment(ctx, id)
	s.observe("get_appointment", start, err)
	return a, err
}

func (s *instrumentedStore) ListAppointments(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	start := time.Now()
	appointments, err := s.next.ListAppointments(ctx, patientID)
	s.observe("list_appointments", start, err)
	return appointments, err
}

func (s *instrumentedStore) GetConfirmedAppointment(ctx context.Context, doctorID, date, timeSlot string) (*model.Appointment, error) {
	start := time.Now()
	a, err := s.next.GetConfirmedAppointment(ctx, doctorID, date, timeSlot)
	s.observe("get_confirmed_appointment", start, err)
	return a, err
}

func (s *instrumentedStore) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	start := time.Now()
	err := s.next.UpdateAppointmentStatus(ctx, id, status)
	s.observe("update_appointment_status", start, err)
	return err
}
