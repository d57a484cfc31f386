package patient

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

const (
	searchLimit       = 50
	summaryRecentSize = 5

	// allRecordsLimit bounds "fetch everything" reads; a patient with
	// more rows than this has outgrown the per-request cleanup path.
	allRecordsLimit = 10000
)

// Service owns patient lifecycle and read-model composition. Deleting a
// patient also removes image artifacts belonging to their records; the
// store cascade takes care of the rows.
type Service struct {
	store  store.Store
	logger *logger.Logger
}

func NewService(s store.Store, l *logger.Logger) *Service {
	return &Service{store: s, logger: l.WithComponent("patient-service")}
}

func validateDemographics(gender, bloodType *string) error {
	if gender != nil && !model.IsValidGender(*gender) {
		return apperrors.Validationf("invalid gender: %s", *gender)
	}
	if bloodType != nil && !model.IsValidBloodType(*bloodType) {
		return apperrors.Validationf("invalid blood type: %s", *bloodType)
	}
	return nil
}

// Create registers a patient. Email is a natural key; a duplicate is a
// conflict whether caught by the pre-check or the unique constraint.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := validateDemographics(req.Gender, req.BloodType); err != nil {
		return nil, err
	}

	existing, err := s.store.GetPatientByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("patient with this email already exists", nil)
	}

	p := &model.Patient{
		Email:            req.Email,
		Name:             req.Name,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		BloodType:        req.BloodType,
		Allergies:        model.StringList(req.Allergies),
	}

	id, err := s.store.CreatePatient(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(map[string]interface{}{"patient_id": id}).Info("patient created")

	// Read back the canonical row so the caller sees store-assigned
	// timestamps and normalized list fields.
	created, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperrors.Storage("patient vanished after create", nil)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("patient")
	}
	return p, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	p, err := s.store.GetPatientByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("patient")
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if err := validateDemographics(req.Gender, req.BloodType); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePatient(ctx, id, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the patient, their rows (via the store cascade) and
// any image files their records reference. A missing file is not an
// error; the record is already going away.
func (s *Service) Delete(ctx context.Context, id string) error {
	records, err := s.store.GetMedicalHistory(ctx, id, allRecordsLimit)
	if err != nil {
		return err
	}

	if err := s.store.DeletePatient(ctx, id); err != nil {
		return err
	}

	for _, rec := range records {
		if rec.ImagePath == nil {
			continue
		}
		if err := os.Remove(*rec.ImagePath); err != nil && !os.IsNotExist(err) {
			s.logger.WithFields(map[string]interface{}{
				"patient_id": id,
				"path":       *rec.ImagePath,
			}).Error(err, "failed to remove image file")
		}
	}

	s.logger.WithFields(map[string]interface{}{"patient_id": id}).Info("patient deleted")
	return nil
}

// Search matches name, email or phone. Queries shorter than two
// characters after trimming return an empty result rather than scanning
// the table.
func (s *Service) Search(ctx context.Context, query string) ([]*model.Patient, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []*model.Patient{}, nil
	}
	return s.store.SearchPatients(ctx, query, searchLimit)
}

// GetStatistics returns per-patient record aggregates with the patient
// header attached.
func (s *Service) GetStatistics(ctx context.Context, id string) (*model.PatientStatistics, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetPatientStatistics(ctx, id)
	if err != nil {
		return nil, err
	}

	stats.PatientInfo = &model.PatientInfo{
		Name:      p.Name,
		Email:     p.Email,
		Age:       ageFromDOB(p.DateOfBirth, time.Now().UTC()),
		BloodType: p.BloodType,
		Allergies: p.Allergies,
	}
	return stats, nil
}

func (s *Service) GetConditionHistory(ctx context.Context, id, condition string) ([]*model.MedicalRecord, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, apperrors.Validation("condition is required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetConditionHistory(ctx, id, condition)
}

// GetSummary composes the patient, their most recent records and their
// statistics into a single view.
func (s *Service) GetSummary(ctx context.Context, id string) (*model.PatientSummary, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.GetMedicalHistory(ctx, id, summaryRecentSize)
	if err != nil {
		return nil, err
	}

	stats, err := s.GetStatistics(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.PatientSummary{
		Patient:       p,
		RecentRecords: recent,
		Statistics:    stats,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// ageFromDOB computes whole years from an ISO date of birth; malformed
// or absent dates yield nil rather than an error.
func ageFromDOB(dob *string, now time.Time) *int {
	if dob == nil {
		return nil
	}
	born, err := time.Parse("2006-01-02", *dob)
	if err != nil {
		return nil
	}
	age := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}
