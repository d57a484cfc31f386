package medical

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store/sqlite"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store, string) {
	t.Helper()
	st := sqlite.New(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, st.Connect(context.Background()))
	require.NoError(t, st.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	uploadDir := t.TempDir()
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	return NewService(st, log, uploadDir), st, uploadDir
}

func seedPatient(t *testing.T, st *sqlite.Store) string {
	t.Helper()
	id, err := st.CreatePatient(context.Background(), &model.Patient{
		Email: "patient@example.com",
		Name:  "Test Patient",
	})
	require.NoError(t, err)
	return id
}

func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestAddRecordValidation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	_, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: "hologram",
		Modality:   model.ModalityXRay,
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   "telepathy",
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType:      model.RecordTypeXRay,
		Modality:        model.ModalityXRay,
		ConfidenceScore: floatPtr(1.2),
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAddRecordUnknownPatient(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddRecord(context.Background(), "missing", &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddRecordWithImage(t *testing.T) {
	svc, st, uploadDir := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	rec, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeCT2D,
		Modality:   model.ModalityCT,
		Diagnosis:  strPtr("Nothing acute"),
	}, &ImageUpload{Data: []byte("fake scan"), Filename: "chest.PNG"})
	require.NoError(t, err)
	require.NotNil(t, rec.ImagePath)

	assert.True(t, strings.HasPrefix(*rec.ImagePath, filepath.Join(uploadDir, patientID)))
	assert.True(t, strings.HasSuffix(*rec.ImagePath, ".png"))
	assert.Contains(t, filepath.Base(*rec.ImagePath), model.ModalityCT+"_")

	data, err := os.ReadFile(*rec.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake scan"), data)
}

func TestFailedInsertRemovesImage(t *testing.T) {
	svc, st, uploadDir := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	// Break the insert path after the patient lookup succeeds.
	_, err := st.DB().Exec("DROP TABLE medical_records")
	require.NoError(t, err)

	_, err = svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, &ImageUpload{Data: []byte("img"), Filename: "orphan.png"})
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(uploadDir, patientID))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteRecordRemovesImage(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	rec, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, &ImageUpload{Data: []byte("img"), Filename: "a.jpg"})
	require.NoError(t, err)
	require.NotNil(t, rec.ImagePath)

	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))

	_, err = os.Stat(*rec.ImagePath)
	assert.True(t, os.IsNotExist(err))

	_, err = svc.GetRecord(ctx, rec.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteRecordToleratesMissingImage(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	rec, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, &ImageUpload{Data: []byte("img"), Filename: "b.jpg"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(*rec.ImagePath))
	assert.NoError(t, svc.DeleteRecord(ctx, rec.ID))
}

func TestGetImagePath(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	noImage, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeConsultation,
		Modality:   model.ModalityClinical,
	}, nil)
	require.NoError(t, err)

	_, err = svc.GetImagePath(ctx, noImage.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	withImage, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, &ImageUpload{Data: []byte("img"), Filename: "c.png"})
	require.NoError(t, err)

	path, err := svc.GetImagePath(ctx, withImage.ID)
	require.NoError(t, err)
	assert.Equal(t, *withImage.ImagePath, path)

	// A file removed out-of-band reads as absent.
	require.NoError(t, os.Remove(path))
	_, err = svc.GetImagePath(ctx, withImage.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestHistoryFiltering(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	for _, rt := range []struct{ recordType, modality string }{
		{model.RecordTypeXRay, model.ModalityXRay},
		{model.RecordTypeXRay, model.ModalityXRay},
		{model.RecordTypeLabResult, model.ModalityLab},
	} {
		_, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
			RecordType: rt.recordType,
			Modality:   rt.modality,
		}, nil)
		require.NoError(t, err)
	}

	all, err := svc.GetHistory(ctx, patientID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	xrays, err := svc.GetHistory(ctx, patientID, model.RecordTypeXRay, 0)
	require.NoError(t, err)
	assert.Len(t, xrays, 2)

	_, err = svc.GetHistory(ctx, patientID, "bogus", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	labs, err := svc.GetRecordsByModality(ctx, patientID, model.ModalityLab)
	require.NoError(t, err)
	assert.Len(t, labs, 1)
}

func TestTimelineWindow(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	rec, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, nil)
	require.NoError(t, err)

	// Age one record out of the window directly in the store.
	old := time.Now().UTC().AddDate(0, 0, -90)
	_, err = st.DB().Exec("UPDATE medical_records SET created_at = ? WHERE id = ?", old, rec.ID)
	require.NoError(t, err)

	_, err = svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeMRI2D,
		Modality:   model.ModalityMRI,
	}, nil)
	require.NoError(t, err)

	timeline, err := svc.GetTimeline(ctx, patientID, 30)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, model.RecordTypeMRI2D, timeline[0].RecordType)
}

func TestSummaryTopConditions(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	diagnoses := []string{
		"pneumonia", "Pneumonia ", "pneumonia",
		"fracture", "fracture",
		"asthma", "bronchitis", "covid", "flu", "migraine",
	}
	for _, d := range diagnoses {
		d := d
		_, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
			RecordType: model.RecordTypeConsultation,
			Modality:   model.ModalityClinical,
			Diagnosis:  &d,
		}, nil)
		require.NoError(t, err)
	}

	summary, err := svc.GetSummary(ctx, patientID)
	require.NoError(t, err)
	assert.Equal(t, len(diagnoses), summary.TotalRecords)
	assert.Equal(t, len(diagnoses), summary.RecordsByModality[model.ModalityClinical])
	assert.Len(t, summary.RecentRecords, 10)

	// Five conditions, most frequent first; ties resolve alphabetically.
	require.Len(t, summary.CommonConditions, 5)
	assert.Equal(t, 3, summary.CommonConditions["pneumonia"])
	assert.Equal(t, 2, summary.CommonConditions["fracture"])
	assert.Contains(t, summary.CommonConditions, "asthma")
	assert.Contains(t, summary.CommonConditions, "bronchitis")
	assert.Contains(t, summary.CommonConditions, "covid")
	assert.NotContains(t, summary.CommonConditions, "migraine")
}

func TestUpdateRecordConfidenceBounds(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	patientID := seedPatient(t, st)

	rec, err := svc.AddRecord(ctx, patientID, &model.CreateMedicalRecordRequest{
		RecordType: model.RecordTypeXRay,
		Modality:   model.ModalityXRay,
	}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateRecord(ctx, rec.ID, &model.UpdateMedicalRecordRequest{
		ConfidenceScore: floatPtr(-0.1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	updated, err := svc.UpdateRecord(ctx, rec.ID, &model.UpdateMedicalRecordRequest{
		ConfidenceScore: floatPtr(0.75),
		Diagnosis:       strPtr("stable"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ConfidenceScore)
	assert.InDelta(t, 0.75, *updated.ConfidenceScore, 1e-9)
}
