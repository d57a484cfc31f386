package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/medscanhq/medscan-api/internal/model"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

// Store is the embedded, single-file backend.
type Store struct {
	path string
	db   *sqlx.DB
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", s.path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return apperrors.Storage("failed to open sqlite database", err)
	}

	// A single writer avoids SQLITE_BUSY churn; reads still queue
	// behind it but each store operation is short-lived.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return apperrors.Storage("failed to ping sqlite database", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Storage("failed to create schema", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, email, name, phone, date_of_birth, gender,
			address, emergency_contact, blood_type, allergies,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Email, p.Name, p.Phone, p.DateOfBirth, p.Gender,
		p.Address, p.EmergencyContact, p.BloodType, p.Allergies,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", apperrors.Conflict(fmt.Sprintf("patient with email %s already exists", p.Email), err)
		}
		return "", apperrors.Storage("failed to create patient", err)
	}
	return id, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	var p model.Patient
	err := s.db.GetContext(ctx, &p, `SELECT * FROM patients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get patient", err)
	}
	return &p, nil
}

func (s *Store) GetPatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	var p model.Patient
	err := s.db.GetContext(ctx, &p, `SELECT * FROM patients WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get patient by email", err)
	}
	return &p, nil
}

func (s *Store) UpdatePatient(ctx context.Context, id string, upd *model.UpdatePatientRequest) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	appendSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if upd.Name != nil {
		appendSet("name", *upd.Name)
	}
	if upd.Phone != nil {
		appendSet("phone", *upd.Phone)
	}
	if upd.DateOfBirth != nil {
		appendSet("date_of_birth", *upd.DateOfBirth)
	}
	if upd.Gender != nil {
		appendSet("gender", *upd.Gender)
	}
	if upd.Address != nil {
		appendSet("address", *upd.Address)
	}
	if upd.EmergencyContact != nil {
		appendSet("emergency_contact", *upd.EmergencyContact)
	}
	if upd.BloodType != nil {
		appendSet("blood_type", *upd.BloodType)
	}
	if upd.Allergies != nil {
		appendSet("allergies", model.StringList(*upd.Allergies))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE patients SET %s WHERE id = ?", strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Storage("failed to update patient", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}

func (s *Store) DeletePatient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage("failed to delete patient", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient")
	}
	return nil
}

func (s *Store) SearchPatients(ctx context.Context, query string, limit int) ([]*model.Patient, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	patients := []*model.Patient{}
	err := s.db.SelectContext(ctx, &patients, `
		SELECT * FROM patients
		WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(phone, '')) LIKE ?
		ORDER BY name
		LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, apperrors.Storage("failed to search patients", err)
	}
	return patients, nil
}

func (s *Store) AddMedicalRecord(ctx context.Context, patientID string, rec *model.MedicalRecord) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medical_records (
			id, patient_id, record_type, modality, diagnosis,
			symptoms, findings, recommendations, suggested_tests,
			image_path, confidence_score, doctor_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, patientID, rec.RecordType, rec.Modality, rec.Diagnosis,
		rec.Symptoms, rec.Findings, rec.Recommendations, rec.SuggestedTests,
		rec.ImagePath, rec.ConfidenceScore, rec.DoctorNotes, now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", apperrors.NotFound("patient")
		}
		return "", apperrors.Storage("failed to add medical record", err)
	}
	return id, nil
}

func (s *Store) GetMedicalRecord(ctx context.Context, id string) (*model.MedicalRecord, error) {
	var rec model.MedicalRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM medical_records WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get medical record", err)
	}
	return &rec, nil
}

func (s *Store) GetMedicalHistory(ctx context.Context, patientID string, limit int) ([]*model.MedicalRecord, error) {
	records := []*model.MedicalRecord{}
	err := s.db.SelectContext(ctx, &records, `
		SELECT * FROM medical_records
		WHERE patient_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		patientID, limit,
	)
	if err != nil {
		return nil, apperrors.Storage("failed to get medical history", err)
	}
	return records, nil
}

func (s *Store) UpdateMedicalRecord(ctx context.Context, id string, upd *model.UpdateMedicalRecordRequest) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	appendSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if upd.Diagnosis != nil {
		appendSet("diagnosis", *upd.Diagnosis)
	}
	if upd.Symptoms != nil {
		appendSet("symptoms", model.StringList(*upd.Symptoms))
	}
	if upd.Findings != nil {
		appendSet("findings", *upd.Findings)
	}
	if upd.Recommendations != nil {
		appendSet("recommendations", model.StringList(*upd.Recommendations))
	}
	if upd.SuggestedTests != nil {
		appendSet("suggested_tests", model.StringList(*upd.SuggestedTests))
	}
	if upd.ConfidenceScore != nil {
		appendSet("confidence_score", *upd.ConfidenceScore)
	}
	if upd.DoctorNotes != nil {
		appendSet("doctor_notes", *upd.DoctorNotes)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE medical_records SET %s WHERE id = ?", strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Storage("failed to update medical record", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medical record")
	}
	return nil
}

func (s *Store) DeleteMedicalRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM medical_records WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage("failed to delete medical record", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medical record")
	}
	return nil
}

func (s *Store) GetPatientStatistics(ctx context.Context, patientID string) (*model.PatientStatistics, error) {
	now := time.Now().UTC()

	var total int
	if err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = ?`, patientID); err != nil {
		return nil, apperrors.Storage("failed to count medical records", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record_type, COUNT(*)
		FROM medical_records
		WHERE patient_id = ?
		GROUP BY record_type`,
		patientID,
	)
	if err != nil {
		return nil, apperrors.Storage("failed to group records by type", err)
	}
	defer rows.Close()

	byType := map[string]int{}
	for rows.Next() {
		var recordType string
		var count int
		if err := rows.Scan(&recordType, &count); err != nil {
			return nil, apperrors.Storage("failed to scan record type count", err)
		}
		byType[recordType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("failed to iterate record type counts", err)
	}

	cutoff := now.Add(-30 * 24 * time.Hour)
	var recent int
	if err := s.db.GetContext(ctx, &recent,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = ? AND created_at >= ?`,
		patientID, cutoff); err != nil {
		return nil, apperrors.Storage("failed to count recent records", err)
	}

	return &model.PatientStatistics{
		TotalRecords:  total,
		RecordsByType: byType,
		RecentRecords: recent,
		LastUpdated:   now,
	}, nil
}

func (s *Store) GetConditionHistory(ctx context.Context, patientID, condition string) ([]*model.MedicalRecord, error) {
	pattern := "%" + strings.ToLower(condition) + "%"
	records := []*model.MedicalRecord{}
	err := s.db.SelectContext(ctx, &records, `
		SELECT * FROM medical_records
		WHERE patient_id = ? AND LOWER(COALESCE(diagnosis, '')) LIKE ?
		ORDER BY created_at DESC`,
		patientID, pattern,
	)
	if err != nil {
		return nil, apperrors.Storage("failed to get condition history", err)
	}
	return records, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, patient_id, doctor_id, doctor_name, doctor_email,
			appointment_date, appointment_time, symptoms, status, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.PatientID, a.DoctorID, a.DoctorName, a.DoctorEmail,
		a.AppointmentDate, a.AppointmentTime, a.Symptoms, a.Status, a.Notes,
		now, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", apperrors.NotFound("patient")
		}
		return "", apperrors.Storage("failed to create appointment", err)
	}
	return id, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	err := s.db.GetContext(ctx, &a, `SELECT * FROM appointments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get appointment", err)
	}
	return &a, nil
}

func (s *Store) ListAppointments(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	appointments := []*model.Appointment{}
	err := s.db.SelectContext(ctx, &appointments, `
		SELECT * FROM appointments
		WHERE patient_id = ?
		ORDER BY appointment_date DESC, appointment_time DESC`,
		patientID,
	)
	if err != nil {
		return nil, apperrors.Storage("failed to list appointments", err)
	}
	return appointments, nil
}

func (s *Store) GetConfirmedAppointment(ctx context.Context, doctorID, date, timeSlot string) (*model.Appointment, error) {
	var a model.Appointment
	err := s.db.GetContext(ctx, &a, `
		SELECT * FROM appointments
		WHERE doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status = ?`,
		doctorID, date, timeSlot, model.AppointmentStatusConfirmed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to look up appointment slot", err)
	}
	return &a, nil
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return apperrors.Storage("failed to update appointment status", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment")
	}
	return nil
}
