package model

import (
	"time"
)

const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

const (
	ActivityLogin                 = "login"
	ActivityLogout                = "logout"
	ActivityImageUpload           = "image_upload"
	ActivityAnalysisRequest       = "analysis_request"
	ActivityReportGeneration      = "report_generation"
	ActivityAppointmentBooking    = "appointment_booking"
	ActivityPatientCreation       = "patient_creation"
	ActivityMedicalRecordCreation = "medical_record_creation"
	ActivityAdminAction           = "admin_action"
)

const (
	ModerationStatusPending  = "pending"
	ModerationStatusApproved = "approved"
	ModerationStatusRejected = "rejected"
	ModerationStatusFlagged  = "flagged"
)

var validModerationStatuses = map[string]bool{
	ModerationStatusPending:  true,
	ModerationStatusApproved: true,
	ModerationStatusRejected: true,
	ModerationStatusFlagged:  true,
}

func IsValidModerationStatus(s string) bool { return validModerationStatuses[s] }

// UserActivityLog records who did what, when. Append-only.
type UserActivityLog struct {
	ID           string    `db:"id" json:"id"`
	UserID       *string   `db:"user_id" json:"user_id,omitempty"`
	UserEmail    *string   `db:"user_email" json:"user_email,omitempty"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Description  string    `db:"description" json:"description"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	Metadata     Metadata  `db:"metadata" json:"metadata,omitempty"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	SessionID    *string   `db:"session_id" json:"session_id,omitempty"`
}

// SystemLog is a leveled message with a component tag. Append-only.
type SystemLog struct {
	ID         string    `db:"id" json:"id"`
	Level      string    `db:"level" json:"level"`
	Component  string    `db:"component" json:"component"`
	Message    string    `db:"message" json:"message"`
	StackTrace *string   `db:"stack_trace" json:"stack_trace,omitempty"`
	Metadata   Metadata  `db:"metadata" json:"metadata,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// ModerationAction is the immutable record of an admin decision on a
// flagged item.
type ModerationAction struct {
	ID         string    `db:"id" json:"id"`
	AdminID    string    `db:"admin_id" json:"admin_id"`
	AdminEmail string    `db:"admin_email" json:"admin_email"`
	TargetType string    `db:"target_type" json:"target_type"`
	TargetID   string    `db:"target_id" json:"target_id"`
	ActionType string    `db:"action_type" json:"action_type"`
	Reason     *string   `db:"reason" json:"reason,omitempty"`
	Status     string    `db:"status" json:"status"`
	Metadata   Metadata  `db:"metadata" json:"metadata,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// ContentFlag is a user report awaiting moderation. Status transitions
// pending -> approved/rejected/flagged under admin action.
type ContentFlag struct {
	ID            string    `db:"id" json:"id"`
	ContentType   string    `db:"content_type" json:"content_type"`
	ContentID     string    `db:"content_id" json:"content_id"`
	ReporterID    *string   `db:"reporter_id" json:"reporter_id,omitempty"`
	ReporterEmail *string   `db:"reporter_email" json:"reporter_email,omitempty"`
	Reason        string    `db:"reason" json:"reason"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Status        string    `db:"status" json:"status"`
	AdminNotes    *string   `db:"admin_notes" json:"admin_notes,omitempty"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}

type AdminUser struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	Role         string     `db:"role" json:"role"`
	Permissions  StringList `db:"permissions" json:"permissions"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type CreateContentFlagRequest struct {
	ContentType   string  `json:"content_type" binding:"required"`
	ContentID     string  `json:"content_id" binding:"required"`
	ReporterID    *string `json:"reporter_id"`
	ReporterEmail *string `json:"reporter_email" binding:"omitempty,email"`
	Reason        string  `json:"reason" binding:"required"`
	Description   *string `json:"description" binding:"omitempty,max=1000"`
}

type ModerateContentRequest struct {
	Status     string  `json:"status" binding:"required"`
	ActionType string  `json:"action_type" binding:"required"`
	Reason     *string `json:"reason"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type CreateAdminUserRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Role        string   `json:"role" binding:"required"`
	Permissions []string `json:"permissions"`
	Password    string   `json:"password" binding:"required,min=8"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AnalyticsData is the aggregate the admin dashboard reads. Every
// field is recomputed from the base tables on request.
type AnalyticsData struct {
	TotalUsers            int       `json:"total_users"`
	ActiveUsersToday      int       `json:"active_users_today"`
	TotalAnalyses         int       `json:"total_analyses"`
	AnalysesToday         int       `json:"analyses_today"`
	TotalAppointments     int       `json:"total_appointments"`
	AppointmentsToday     int       `json:"appointments_today"`
	TotalPatients         int       `json:"total_patients"`
	PatientsToday         int       `json:"patients_today"`
	ErrorRate             float64   `json:"error_rate"`
	AnalysisRequests      int       `json:"analysis_requests"`
	AnalysisRequestsToday int       `json:"analysis_requests_today"`
	GeneratedAt           time.Time `json:"generated_at"`
}

// AnalyticsCacheEntry is a keyed, expiring cached aggregate persisted
// alongside the log tables.
type AnalyticsCacheEntry struct {
	ID        string    `db:"id" json:"id"`
	CacheKey  string    `db:"cache_key" json:"cache_key"`
	Data      Metadata  `db:"data" json:"data"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DashboardStats is the composite admin dashboard payload.
type DashboardStats struct {
	Analytics        *AnalyticsData     `json:"analytics"`
	RecentActivities []*UserActivityLog `json:"recent_activities"`
	RecentLogs       []*SystemLog       `json:"recent_logs"`
	PendingFlags     []*ContentFlag     `json:"pending_flags"`
	SystemInfo       map[string]string  `json:"system_info"`
}

// SystemHealth scores overall service health from recent aggregates.
type SystemHealth struct {
	HealthScore float64            `json:"health_score"`
	Status      string             `json:"status"`
	Metrics     map[string]float64 `json:"metrics"`
	LastUpdated time.Time          `json:"last_updated"`
}
