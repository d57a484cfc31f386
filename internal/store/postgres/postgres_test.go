package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/model"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

// newTestStore connects to the database named by TEST_DATABASE_URL and
// skips otherwise, so the suite stays green without a running postgres.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	s := New(url, 5, 2)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(v string) *string { return &v }

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestPostgresPatientRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	email := uniqueEmail("roundtrip")

	id, err := s.CreatePatient(ctx, &model.Patient{
		Email:     email,
		Name:      "PG Patient",
		Allergies: model.StringList{"iodine"},
	})
	require.NoError(t, err)
	defer func() { _ = s.DeletePatient(ctx, id) }()

	p, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, email, p.Email)
	assert.Equal(t, model.StringList{"iodine"}, p.Allergies)

	_, err = s.CreatePatient(ctx, &model.Patient{Email: email, Name: "Duplicate"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPostgresCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	patientID, err := s.CreatePatient(ctx, &model.Patient{
		Email: uniqueEmail("cascade"),
		Name:  "Cascade Patient",
	})
	require.NoError(t, err)

	recID, err := s.AddMedicalRecord(ctx, patientID, &model.MedicalRecord{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
		Diagnosis:  strPtr("clear"),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeletePatient(ctx, patientID))

	rec, err := s.GetMedicalRecord(ctx, recID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPostgresForeignKeyMapsToNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMedicalRecord(context.Background(), "missing-patient", &model.MedicalRecord{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
