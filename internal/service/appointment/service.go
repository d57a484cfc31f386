package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

// Service books and cancels appointments. Slot exclusivity — at most
// one confirmed appointment per (doctor, date, time) — is enforced here
// with a pre-insert check, not as a database constraint, so cancelled
// rows never block the slot.
type Service struct {
	store  store.Store
	logger *logger.Logger
}

func NewService(s store.Store, l *logger.Logger) *Service {
	return &Service{store: s, logger: l.WithComponent("appointment-service")}
}

// Book confirms an appointment in the requested slot, rejecting the
// request when the slot already holds a confirmed appointment.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	req.AppointmentDate = strings.TrimSpace(req.AppointmentDate)
	req.AppointmentTime = strings.TrimSpace(req.AppointmentTime)
	if _, err := time.Parse("2006-01-02", req.AppointmentDate); err != nil {
		return nil, apperrors.Validationf("invalid appointment date: %s", req.AppointmentDate)
	}
	if _, err := time.Parse("15:04", req.AppointmentTime); err != nil {
		return nil, apperrors.Validationf("invalid appointment time: %s", req.AppointmentTime)
	}

	patient, err := s.store.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	taken, err := s.store.GetConfirmedAppointment(ctx, req.DoctorID, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, apperrors.Conflict("time slot is already booked", nil)
	}

	a := &model.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		DoctorName:      req.DoctorName,
		DoctorEmail:     req.DoctorEmail,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Symptoms:        req.Symptoms,
		Status:          model.AppointmentStatusConfirmed,
		Notes:           req.Notes,
	}

	id, err := s.store.CreateAppointment(ctx, a)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"appointment_id": id,
		"doctor_id":      req.DoctorID,
		"date":           req.AppointmentDate,
		"time":           req.AppointmentTime,
	}).Info("appointment booked")

	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperrors.NotFound("appointment")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	return s.store.ListAppointments(ctx, patientID)
}

// Cancel moves a confirmed appointment to cancelled, freeing its slot.
func (s *Service) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Validation("appointment is already cancelled")
	}

	if err := s.store.UpdateAppointmentStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{"appointment_id": id}).Info("appointment cancelled")
	return s.Get(ctx, id)
}
