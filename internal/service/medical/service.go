package medical

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

const (
	defaultHistoryLimit = 100
	summaryRecentSize   = 10
	summaryTopN         = 5
)

// ImageUpload carries a medical image alongside a record creation.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// Service owns medical records and their on-disk image artifacts.
// Images live under uploadDir/<patient_id>/ and are written before the
// row insert; a failed insert removes the file again so the two never
// diverge.
type Service struct {
	store     store.Store
	logger    *logger.Logger
	uploadDir string
}

func NewService(s store.Store, l *logger.Logger, uploadDir string) *Service {
	return &Service{store: s, logger: l.WithComponent("medical-service"), uploadDir: uploadDir}
}

func validateRecordRequest(recordType, modality string, confidence *float64) error {
	if !model.IsValidRecordType(recordType) {
		return apperrors.Validationf("invalid record type: %s", recordType)
	}
	if !model.IsValidModality(modality) {
		return apperrors.Validationf("invalid modality: %s", modality)
	}
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return apperrors.Validation("confidence score must be between 0 and 1")
	}
	return nil
}

// AddRecord creates a record for a patient, optionally persisting an
// attached image first.
func (s *Service) AddRecord(ctx context.Context, patientID string, req *model.CreateMedicalRecordRequest, image *ImageUpload) (*model.MedicalRecord, error) {
	if err := validateRecordRequest(req.RecordType, req.Modality, req.ConfidenceScore); err != nil {
		return nil, err
	}

	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	rec := &model.MedicalRecord{
		PatientID:       patientID,
		RecordType:      req.RecordType,
		Modality:        req.Modality,
		Diagnosis:       req.Diagnosis,
		Symptoms:        model.StringList(req.Symptoms),
		Findings:        req.Findings,
		Recommendations: model.StringList(req.Recommendations),
		SuggestedTests:  model.StringList(req.SuggestedTests),
		ConfidenceScore: req.ConfidenceScore,
		DoctorNotes:     req.DoctorNotes,
	}

	var imagePath string
	if image != nil {
		imagePath, err = s.writeImage(patientID, req.Modality, image)
		if err != nil {
			return nil, err
		}
		rec.ImagePath = &imagePath
	}

	id, err := s.store.AddMedicalRecord(ctx, patientID, rec)
	if err != nil {
		if imagePath != "" {
			if rmErr := os.Remove(imagePath); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.WithFields(map[string]interface{}{"path": imagePath}).Error(rmErr, "failed to remove orphaned image")
			}
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"record_id":  id,
		"patient_id": patientID,
		"modality":   req.Modality,
	}).Info("medical record added")

	return s.GetRecord(ctx, id)
}

func (s *Service) writeImage(patientID, modality string, image *ImageUpload) (string, error) {
	dir := filepath.Join(s.uploadDir, patientID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Storage("failed to create image directory", err)
	}

	ext := strings.ToLower(filepath.Ext(image.Filename))
	if ext == "" {
		ext = ".bin"
	}
	name := fmt.Sprintf("%s_%s%s", modality, time.Now().UTC().Format("20060102_150405.000000"), ext)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, image.Data, 0o644); err != nil {
		return "", apperrors.Storage("failed to write image file", err)
	}
	return path, nil
}

func (s *Service) GetRecord(ctx context.Context, id string) (*model.MedicalRecord, error) {
	rec, err := s.store.GetMedicalRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("medical record")
	}
	return rec, nil
}

// GetHistory returns the patient's records, newest first, optionally
// narrowed to one record type.
func (s *Service) GetHistory(ctx context.Context, patientID, recordType string, limit int) ([]*model.MedicalRecord, error) {
	if recordType != "" && !model.IsValidRecordType(recordType) {
		return nil, apperrors.Validationf("invalid record type: %s", recordType)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.store.GetMedicalHistory(ctx, patientID, limit)
	if err != nil {
		return nil, err
	}
	if recordType == "" {
		return records, nil
	}

	filtered := make([]*model.MedicalRecord, 0, len(records))
	for _, rec := range records {
		if rec.RecordType == recordType {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id string, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if req.ConfidenceScore != nil && (*req.ConfidenceScore < 0 || *req.ConfidenceScore > 1) {
		return nil, apperrors.Validation("confidence score must be between 0 and 1")
	}
	if err := s.store.UpdateMedicalRecord(ctx, id, req); err != nil {
		return nil, err
	}
	return s.GetRecord(ctx, id)
}

// DeleteRecord removes the row and then the image artifact. A file that
// is already gone does not fail the delete.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMedicalRecord(ctx, id); err != nil {
		return err
	}

	if rec.ImagePath != nil {
		if err := os.Remove(*rec.ImagePath); err != nil && !os.IsNotExist(err) {
			s.logger.WithFields(map[string]interface{}{"record_id": id, "path": *rec.ImagePath}).Error(err, "failed to remove image file")
		}
	}

	s.logger.WithFields(map[string]interface{}{"record_id": id}).Info("medical record deleted")
	return nil
}

func (s *Service) GetRecordsByModality(ctx context.Context, patientID, modality string) ([]*model.MedicalRecord, error) {
	if !model.IsValidModality(modality) {
		return nil, apperrors.Validationf("invalid modality: %s", modality)
	}

	records, err := s.store.GetMedicalHistory(ctx, patientID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	filtered := make([]*model.MedicalRecord, 0, len(records))
	for _, rec := range records {
		if rec.Modality == modality {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// GetTimeline returns records created in the trailing window of days,
// newest first.
func (s *Service) GetTimeline(ctx context.Context, patientID string, days int) ([]*model.MedicalRecord, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	records, err := s.store.GetMedicalHistory(ctx, patientID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}

	timeline := make([]*model.MedicalRecord, 0, len(records))
	for _, rec := range records {
		if !rec.CreatedAt.Before(cutoff) {
			timeline = append(timeline, rec)
		}
	}
	return timeline, nil
}

// GetSummary aggregates a patient's records: counts per modality, the
// five most frequent diagnoses, and the ten most recent records.
func (s *Service) GetSummary(ctx context.Context, patientID string) (*model.RecordsSummary, error) {
	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	records, err := s.store.GetMedicalHistory(ctx, patientID, defaultHistoryLimit*100)
	if err != nil {
		return nil, err
	}

	byModality := map[string]int{}
	conditionCounts := map[string]int{}
	for _, rec := range records {
		byModality[rec.Modality]++
		if rec.Diagnosis != nil {
			diagnosis := strings.ToLower(strings.TrimSpace(*rec.Diagnosis))
			if diagnosis != "" {
				conditionCounts[diagnosis]++
			}
		}
	}

	recent := records
	if len(recent) > summaryRecentSize {
		recent = recent[:summaryRecentSize]
	}

	return &model.RecordsSummary{
		TotalRecords:      len(records),
		RecordsByModality: byModality,
		RecentRecords:     recent,
		CommonConditions:  topConditions(conditionCounts, summaryTopN),
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// topConditions keeps the n most frequent diagnoses; ties break on the
// diagnosis text so the result is stable.
func topConditions(counts map[string]int, n int) map[string]int {
	type kv struct {
		diagnosis string
		count     int
	}
	ranked := make([]kv, 0, len(counts))
	for d, c := range counts {
		ranked = append(ranked, kv{d, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].diagnosis < ranked[j].diagnosis
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	top := make(map[string]int, len(ranked))
	for _, r := range ranked {
		top[r.diagnosis] = r.count
	}
	return top
}

// GetImagePath resolves the image file for a record, verifying it still
// exists on disk.
func (s *Service) GetImagePath(ctx context.Context, recordID string) (string, error) {
	rec, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return "", err
	}
	if rec.ImagePath == nil {
		return "", apperrors.NotFound("image")
	}
	if _, err := os.Stat(*rec.ImagePath); err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NotFound("image")
		}
		return "", apperrors.Storage("failed to stat image file", err)
	}
	return *rec.ImagePath, nil
}
