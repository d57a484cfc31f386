package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/model"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(v string) *string { return &v }

func seedPatient(t *testing.T, s *Store, email string) string {
	t.Helper()
	id, err := s.CreatePatient(context.Background(), &model.Patient{
		Email:     email,
		Name:      "Jane Roe",
		Allergies: model.StringList{"penicillin"},
	})
	require.NoError(t, err)
	return id
}

func TestPatientCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePatient(ctx, &model.Patient{
		Email:       "jane@example.com",
		Name:        "Jane Roe",
		Phone:       strPtr("555-0100"),
		DateOfBirth: strPtr("1990-04-12"),
		Gender:      strPtr(model.GenderFemale),
		BloodType:   strPtr("O+"),
		Allergies:   model.StringList{"penicillin", "latex"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	p, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane Roe", p.Name)
	assert.Equal(t, model.StringList{"penicillin", "latex"}, p.Allergies)
	assert.False(t, p.CreatedAt.IsZero())

	byEmail, err := s.GetPatientByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	newAllergies := []string{"latex"}
	err = s.UpdatePatient(ctx, id, &model.UpdatePatientRequest{
		Name:      strPtr("Jane R. Roe"),
		Allergies: &newAllergies,
	})
	require.NoError(t, err)

	p, err = s.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane R. Roe", p.Name)
	assert.Equal(t, model.StringList{"latex"}, p.Allergies)
	assert.True(t, p.UpdatedAt.After(p.CreatedAt) || p.UpdatedAt.Equal(p.CreatedAt))

	require.NoError(t, s.DeletePatient(ctx, id))

	p, err = s.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGetPatientAbsentReturnsNil(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPatient(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreatePatientDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedPatient(t, s, "dup@example.com")

	_, err := s.CreatePatient(context.Background(), &model.Patient{
		Email: "dup@example.com",
		Name:  "Someone Else",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUpdatePatientNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdatePatient(context.Background(), "missing", &model.UpdatePatientRequest{Name: strPtr("New Name")})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSearchPatients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []model.Patient{
		{Email: "alice@example.com", Name: "Alice Young", Phone: strPtr("555-0101")},
		{Email: "bob@example.com", Name: "Bob Stone"},
		{Email: "carol@example.com", Name: "Carol Younger"},
	} {
		p := p
		_, err := s.CreatePatient(ctx, &p)
		require.NoError(t, err)
	}

	results, err := s.SearchPatients(ctx, "young", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alice Young", results[0].Name)
	assert.Equal(t, "Carol Younger", results[1].Name)

	byPhone, err := s.SearchPatients(ctx, "555-0101", 10)
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "alice@example.com", byPhone[0].Email)
}

func TestMedicalRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	patientID := seedPatient(t, s, "records@example.com")

	score := 0.92
	recID, err := s.AddMedicalRecord(ctx, patientID, &model.MedicalRecord{
		RecordType:      model.RecordTypeXRay,
		Modality:        model.ModalityXRay,
		Diagnosis:       strPtr("Pneumonia"),
		Symptoms:        model.StringList{"cough", "fever"},
		ConfidenceScore: &score,
	})
	require.NoError(t, err)

	rec, err := s.GetMedicalRecord(ctx, recID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, patientID, rec.PatientID)
	assert.Equal(t, model.StringList{"cough", "fever"}, rec.Symptoms)
	require.NotNil(t, rec.ConfidenceScore)
	assert.InDelta(t, 0.92, *rec.ConfidenceScore, 1e-9)

	newSymptoms := []string{"cough"}
	err = s.UpdateMedicalRecord(ctx, recID, &model.UpdateMedicalRecordRequest{
		Diagnosis: strPtr("Resolved pneumonia"),
		Symptoms:  &newSymptoms,
	})
	require.NoError(t, err)

	rec, err = s.GetMedicalRecord(ctx, recID)
	require.NoError(t, err)
	assert.Equal(t, "Resolved pneumonia", *rec.Diagnosis)
	assert.Equal(t, model.StringList{"cough"}, rec.Symptoms)

	history, err := s.GetMedicalHistory(ctx, patientID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.NoError(t, s.DeleteMedicalRecord(ctx, recID))

	rec, err = s.GetMedicalRecord(ctx, recID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAddMedicalRecordUnknownPatient(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMedicalRecord(context.Background(), "missing-patient", &model.MedicalRecord{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeletePatientCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	patientID := seedPatient(t, s, "cascade@example.com")

	recID, err := s.AddMedicalRecord(ctx, patientID, &model.MedicalRecord{
		RecordType: model.RecordTypeConsultation,
		Modality:   model.ModalityClinical,
	})
	require.NoError(t, err)

	apptID, err := s.CreateAppointment(ctx, &model.Appointment{
		PatientID:       patientID,
		DoctorID:        "doc-1",
		DoctorName:      "Dr. Who",
		DoctorEmail:     "who@example.com",
		AppointmentDate: "2026-09-01",
		AppointmentTime: "10:00",
		Status:          model.AppointmentStatusConfirmed,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeletePatient(ctx, patientID))

	rec, err := s.GetMedicalRecord(ctx, recID)
	require.NoError(t, err)
	assert.Nil(t, rec)

	appt, err := s.GetAppointment(ctx, apptID)
	require.NoError(t, err)
	assert.Nil(t, appt)
}

func TestPatientStatistics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	patientID := seedPatient(t, s, "stats@example.com")

	for _, rt := range []string{model.RecordTypeXRay, model.RecordTypeXRay, model.RecordTypeLabResult} {
		_, err := s.AddMedicalRecord(ctx, patientID, &model.MedicalRecord{
			RecordType: rt,
			Modality:   model.ModalityXRay,
		})
		require.NoError(t, err)
	}

	stats, err := s.GetPatientStatistics(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 2, stats.RecordsByType[model.RecordTypeXRay])
	assert.Equal(t, 1, stats.RecordsByType[model.RecordTypeLabResult])
	assert.Equal(t, 3, stats.RecentRecords)
}

func TestConditionHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	patientID := seedPatient(t, s, "conditions@example.com")

	for _, diagnosis := range []string{"Acute Pneumonia", "Fractured rib", "pneumonia follow-up"} {
		_, err := s.AddMedicalRecord(ctx, patientID, &model.MedicalRecord{
			RecordType: model.RecordTypeXRay,
			Modality:   model.ModalityXRay,
			Diagnosis:  strPtr(diagnosis),
		})
		require.NoError(t, err)
	}

	matches, err := s.GetConditionHistory(ctx, patientID, "PNEUMONIA")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := s.GetConditionHistory(ctx, patientID, "diabetes")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppointmentSlotLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	patientID := seedPatient(t, s, "appt@example.com")

	id, err := s.CreateAppointment(ctx, &model.Appointment{
		PatientID:       patientID,
		DoctorID:        "doc-7",
		DoctorName:      "Dr. Strange",
		DoctorEmail:     "strange@example.com",
		AppointmentDate: "2026-09-02",
		AppointmentTime: "14:30",
		Status:          model.AppointmentStatusConfirmed,
	})
	require.NoError(t, err)

	taken, err := s.GetConfirmedAppointment(ctx, "doc-7", "2026-09-02", "14:30")
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, id, taken.ID)

	free, err := s.GetConfirmedAppointment(ctx, "doc-7", "2026-09-02", "15:00")
	require.NoError(t, err)
	assert.Nil(t, free)

	require.NoError(t, s.UpdateAppointmentStatus(ctx, id, model.AppointmentStatusCancelled))

	freed, err := s.GetConfirmedAppointment(ctx, "doc-7", "2026-09-02", "14:30")
	require.NoError(t, err)
	assert.Nil(t, freed)

	list, err := s.ListAppointments(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.AppointmentStatusCancelled, list[0].Status)
}

func TestUpdateAppointmentStatusNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateAppointmentStatus(context.Background(), "missing", model.AppointmentStatusCancelled)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
