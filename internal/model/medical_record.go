package model

import (
	"time"
)

const (
	RecordTypeXRay         = "xray"
	RecordTypeCT2D         = "ct_2d"
	RecordTypeCT3D         = "ct_3d"
	RecordTypeMRI2D        = "mri_2d"
	RecordTypeMRI3D        = "mri_3d"
	RecordTypeUltrasound   = "ultrasound"
	RecordTypeLabResult    = "lab_result"
	RecordTypeConsultation = "consultation"
	RecordTypePrescription = "prescription"
	RecordTypeSurgery      = "surgery"
)

var validRecordTypes = map[string]bool{
	RecordTypeXRay:         true,
	RecordTypeCT2D:         true,
	RecordTypeCT3D:         true,
	RecordTypeMRI2D:        true,
	RecordTypeMRI3D:        true,
	RecordTypeUltrasound:   true,
	RecordTypeLabResult:    true,
	RecordTypeConsultation: true,
	RecordTypePrescription: true,
	RecordTypeSurgery:      true,
}

func IsValidRecordType(rt string) bool { return validRecordTypes[rt] }

const (
	ModalityXRay       = "xray"
	ModalityCT         = "ct"
	ModalityMRI        = "mri"
	ModalityUltrasound = "ultrasound"
	ModalityLab        = "lab"
	ModalityClinical   = "clinical"
)

var validModalities = map[string]bool{
	ModalityXRay:       true,
	ModalityCT:         true,
	ModalityMRI:        true,
	ModalityUltrasound: true,
	ModalityLab:        true,
	ModalityClinical:   true,
}

func IsValidModality(m string) bool { return validModalities[m] }

// MedicalRecord is owned by a patient and cascade-deleted with it.
// ImagePath, when set, references an artifact on disk that lives and
// dies with the record.
type MedicalRecord struct {
	ID              string     `db:"id" json:"id"`
	PatientID       string     `db:"patient_id" json:"patient_id"`
	RecordType      string     `db:"record_type" json:"record_type"`
	Modality        string     `db:"modality" json:"modality"`
	Diagnosis       *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Symptoms        StringList `db:"symptoms" json:"symptoms"`
	Findings        *string    `db:"findings" json:"findings,omitempty"`
	Recommendations StringList `db:"recommendations" json:"recommendations"`
	SuggestedTests  StringList `db:"suggested_tests" json:"suggested_tests"`
	ImagePath       *string    `db:"image_path" json:"image_path,omitempty"`
	ConfidenceScore *float64   `db:"confidence_score" json:"confidence_score,omitempty"`
	DoctorNotes     *string    `db:"doctor_notes" json:"doctor_notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateMedicalRecordRequest struct {
	RecordType      string   `json:"record_type" binding:"required"`
	Modality        string   `json:"modality" binding:"required"`
	Diagnosis       *string  `json:"diagnosis" binding:"omitempty,max=500"`
	Symptoms        []string `json:"symptoms"`
	Findings        *string  `json:"findings"`
	Recommendations []string `json:"recommendations"`
	SuggestedTests  []string `json:"suggested_tests"`
	ConfidenceScore *float64 `json:"confidence_score"`
	DoctorNotes     *string  `json:"doctor_notes"`
}

type UpdateMedicalRecordRequest struct {
	Diagnosis       *string   `json:"diagnosis" binding:"omitempty,max=500"`
	Symptoms        *[]string `json:"symptoms"`
	Findings        *string   `json:"findings"`
	Recommendations *[]string `json:"recommendations"`
	SuggestedTests  *[]string `json:"suggested_tests"`
	ConfidenceScore *float64  `json:"confidence_score"`
	DoctorNotes     *string   `json:"doctor_notes"`
}

// RecordsSummary groups a patient's records by modality and surfaces
// the five most frequent diagnoses.
type RecordsSummary struct {
	TotalRecords      int              `json:"total_records"`
	RecordsByModality map[string]int   `json:"records_by_modality"`
	RecentRecords     []*MedicalRecord `json:"recent_records"`
	CommonConditions  map[string]int   `json:"common_conditions"`
	GeneratedAt       time.Time        `json:"summary_generated_at"`
}
