package patient

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store/sqlite"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	st := sqlite.New(filepath.Join(t.TempDir(), "patients.db"))
	require.NoError(t, st.Connect(context.Background()))
	require.NoError(t, st.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	return NewService(st, log), st
}

func strPtr(v string) *string { return &v }

func TestCreateNormalizesAndReturnsCanonical(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), &model.CreatePatientRequest{
		Email: "  Jane@Example.COM ",
		Name:  "  Jane Roe ",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.Equal(t, "Jane Roe", created.Name)
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.Allergies)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidDemographics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreatePatientRequest{
		Email:  "g@example.com",
		Name:   "G Test",
		Gender: strPtr("unknown"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(ctx, &model.CreatePatientRequest{
		Email:     "b@example.com",
		Name:      "B Test",
		BloodType: strPtr("C+"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "dup@example.com", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &model.CreatePatientRequest{Email: "DUP@example.com", Name: "Second"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestGetUnknownPatient(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateReturnsFreshRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "u@example.com", Name: "Before"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &model.UpdatePatientRequest{Name: strPtr("After")})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, created.Email, updated.Email)
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "s@example.com", Name: "Searchable"})
	require.NoError(t, err)

	results, err := svc.Search(ctx, " s ")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.Search(ctx, "search")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDeleteRemovesImageFiles(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "d@example.com", Name: "Doomed"})
	require.NoError(t, err)

	imagePath := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake image"), 0o644))

	_, err = st.AddMedicalRecord(ctx, created.ID, &model.MedicalRecord{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
		ImagePath:  &imagePath,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStatisticsIncludePatientInfo(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	dob := time.Now().UTC().AddDate(-30, 0, -1).Format("2006-01-02")
	created, err := svc.Create(ctx, &model.CreatePatientRequest{
		Email:       "info@example.com",
		Name:        "Aging Patient",
		DateOfBirth: &dob,
		BloodType:   strPtr("AB-"),
		Allergies:   []string{"dust"},
	})
	require.NoError(t, err)

	_, err = st.AddMedicalRecord(ctx, created.ID, &model.MedicalRecord{
		RecordType: model.RecordTypeMRI2D,
		Modality:   model.ModalityMRI,
	})
	require.NoError(t, err)

	stats, err := svc.GetStatistics(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
	require.NotNil(t, stats.PatientInfo)
	assert.Equal(t, "Aging Patient", stats.PatientInfo.Name)
	require.NotNil(t, stats.PatientInfo.Age)
	assert.Equal(t, 30, *stats.PatientInfo.Age)
	assert.Equal(t, []string{"dust"}, stats.PatientInfo.Allergies)
}

func TestSummaryComposesViews(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "sum@example.com", Name: "Summary Patient"})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err := st.AddMedicalRecord(ctx, created.ID, &model.MedicalRecord{
			RecordType: model.RecordTypeLabResult,
			Modality:   model.ModalityLab,
		})
		require.NoError(t, err)
	}

	summary, err := svc.GetSummary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, summary.Patient.ID)
	assert.Len(t, summary.RecentRecords, 5)
	assert.Equal(t, 7, summary.Statistics.TotalRecords)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestConditionHistoryRequiresCondition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.CreatePatientRequest{Email: "c@example.com", Name: "Cond Patient"})
	require.NoError(t, err)

	_, err = svc.GetConditionHistory(ctx, created.ID, "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	age := ageFromDOB(strPtr("1990-08-24"), now)
	require.NotNil(t, age)
	assert.Equal(t, 35, *age)

	age = ageFromDOB(strPtr("1990-08-23"), now)
	require.NotNil(t, age)
	assert.Equal(t, 36, *age)

	assert.Nil(t, ageFromDOB(nil, now))
	assert.Nil(t, ageFromDOB(strPtr("not-a-date"), now))
	assert.Nil(t, ageFromDOB(strPtr("2030-01-01"), now))
}
