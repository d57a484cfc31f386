package admin

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medscanhq/medscan-api/internal/model"
	"github.com/medscanhq/medscan-api/internal/store"
	"github.com/medscanhq/medscan-api/pkg/auth"
	"github.com/medscanhq/medscan-api/pkg/cache"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
	"github.com/medscanhq/medscan-api/pkg/logger"
	"github.com/medscanhq/medscan-api/pkg/security"
)

const (
	analyticsCacheKey = "analytics:overview"
	analyticsCacheTTL = 5 * time.Minute

	dashboardActivityLimit = 10
	dashboardLogLimit      = 10
	dashboardFlagLimit     = 10
)

// Service owns the admin surface: activity and system logging,
// analytics, content moderation, and admin accounts. Analytics are
// always recomputed from the base tables; the cache only bounds how
// often.
type Service struct {
	admin   *store.AdminStore
	cache   cache.Cache
	tokens  *auth.TokenManager
	logger  *logger.Logger
	backend string
}

func NewService(admin *store.AdminStore, c cache.Cache, tokens *auth.TokenManager, l *logger.Logger, backend string) *Service {
	return &Service{
		admin:   admin,
		cache:   c,
		tokens:  tokens,
		logger:  l.WithComponent("admin-service"),
		backend: backend,
	}
}

// LogActivity appends a user activity entry. Logging never fails a
// caller's request path; callers decide whether to propagate the error.
func (s *Service) LogActivity(ctx context.Context, activityType, description string, userID, userEmail, ipAddress, userAgent, sessionID *string, metadata map[string]interface{}) error {
	entry := &model.UserActivityLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		UserEmail:    userEmail,
		ActivityType: activityType,
		Description:  description,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		Metadata:     model.Metadata(metadata),
		Timestamp:    time.Now().UTC(),
		SessionID:    sessionID,
	}
	return s.admin.LogUserActivity(ctx, entry)
}

// LogSystemEvent appends a leveled system log entry.
func (s *Service) LogSystemEvent(ctx context.Context, level, component, message string, stackTrace *string, metadata map[string]interface{}) error {
	entry := &model.SystemLog{
		ID:         uuid.NewString(),
		Level:      level,
		Component:  component,
		Message:    message,
		StackTrace: stackTrace,
		Metadata:   model.Metadata(metadata),
		Timestamp:  time.Now().UTC(),
	}
	return s.admin.LogSystemEvent(ctx, entry)
}

// GetAnalytics returns platform aggregates. Freshness is served from
// the in-process memo first, then the durable analytics_cache row
// (which survives restarts and is shared between instances on the
// client/server backend), and only then recomputed.
func (s *Service) GetAnalytics(ctx context.Context) (*model.AnalyticsData, error) {
	if data, ok := s.cache.Get(ctx, analyticsCacheKey); ok {
		var cached model.AnalyticsData
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	if entry, err := s.admin.GetAnalyticsCache(ctx, analyticsCacheKey); err == nil && entry != nil {
		if raw, mErr := json.Marshal(entry.Data); mErr == nil {
			var cached model.AnalyticsData
			if json.Unmarshal(raw, &cached) == nil && !cached.GeneratedAt.IsZero() {
				s.cache.Set(ctx, analyticsCacheKey, raw, analyticsCacheTTL)
				return &cached, nil
			}
		}
	}

	analytics, err := s.computeAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	s.persistAnalytics(ctx, analytics)
	return analytics, nil
}

func (s *Service) persistAnalytics(ctx context.Context, analytics *model.AnalyticsData) {
	raw, err := json.Marshal(analytics)
	if err != nil {
		return
	}
	s.cache.Set(ctx, analyticsCacheKey, raw, analyticsCacheTTL)

	var payload model.Metadata
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	entry := &model.AnalyticsCacheEntry{
		ID:        uuid.NewString(),
		CacheKey:  analyticsCacheKey,
		Data:      payload,
		ExpiresAt: analytics.GeneratedAt.Add(analyticsCacheTTL),
		CreatedAt: analytics.GeneratedAt,
	}
	if err := s.admin.PutAnalyticsCache(ctx, entry); err != nil {
		s.logger.Error(err, "failed to persist analytics cache entry")
	}
}

func (s *Service) computeAnalytics(ctx context.Context) (*model.AnalyticsData, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	analytics := &model.AnalyticsData{GeneratedAt: now}

	var err error
	if analytics.TotalUsers, err = s.admin.CountDistinctUsersSince(ctx, time.Time{}); err != nil {
		return nil, err
	}
	if analytics.ActiveUsersToday, err = s.admin.CountDistinctUsersSince(ctx, dayStart); err != nil {
		return nil, err
	}
	if analytics.TotalPatients, err = s.admin.Count(ctx, "patients"); err != nil {
		return nil, err
	}
	if analytics.PatientsToday, err = s.admin.CountSince(ctx, "patients", dayStart); err != nil {
		return nil, err
	}
	if analytics.TotalAnalyses, err = s.admin.Count(ctx, "medical_records"); err != nil {
		return nil, err
	}
	if analytics.AnalysesToday, err = s.admin.CountSince(ctx, "medical_records", dayStart); err != nil {
		return nil, err
	}
	if analytics.TotalAppointments, err = s.admin.Count(ctx, "appointments"); err != nil {
		return nil, err
	}
	if analytics.AppointmentsToday, err = s.admin.CountSince(ctx, "appointments", dayStart); err != nil {
		return nil, err
	}
	if analytics.AnalysisRequests, err = s.admin.CountActivities(ctx, model.ActivityAnalysisRequest); err != nil {
		return nil, err
	}
	if analytics.AnalysisRequestsToday, err = s.admin.CountActivitiesSince(ctx, model.ActivityAnalysisRequest, dayStart); err != nil {
		return nil, err
	}

	totalLogs, err := s.admin.Count(ctx, "system_logs")
	if err != nil {
		return nil, err
	}
	errorLogs, err := s.admin.CountSystemLogsByLevel(ctx, model.LogLevelError)
	if err != nil {
		return nil, err
	}
	if totalLogs > 0 {
		analytics.ErrorRate = float64(errorLogs) / float64(totalLogs)
	}

	return analytics, nil
}

// GetDashboardStats composes the admin dashboard payload.
func (s *Service) GetDashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	analytics, err := s.GetAnalytics(ctx)
	if err != nil {
		return nil, err
	}

	activities, err := s.admin.GetRecentActivities(ctx, dashboardActivityLimit)
	if err != nil {
		return nil, err
	}
	logs, err := s.admin.GetRecentLogs(ctx, dashboardLogLimit)
	if err != nil {
		return nil, err
	}
	flags, err := s.admin.GetPendingFlags(ctx, dashboardFlagLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Analytics:        analytics,
		RecentActivities: activities,
		RecentLogs:       logs,
		PendingFlags:     flags,
		SystemInfo: map[string]string{
			"database_backend": s.backend,
		},
	}, nil
}

// GetSystemHealth scores service health from the recent error rate.
func (s *Service) GetSystemHealth(ctx context.Context) (*model.SystemHealth, error) {
	analytics, err := s.GetAnalytics(ctx)
	if err != nil {
		return nil, err
	}

	score := 100.0 - analytics.ErrorRate*100.0
	if score < 0 {
		score = 0
	}

	status := "healthy"
	switch {
	case score < 70:
		status = "unhealthy"
	case score < 90:
		status = "degraded"
	}

	return &model.SystemHealth{
		HealthScore: score,
		Status:      status,
		Metrics: map[string]float64{
			"error_rate":         analytics.ErrorRate,
			"active_users_today": float64(analytics.ActiveUsersToday),
			"analyses_today":     float64(analytics.AnalysesToday),
		},
		LastUpdated: time.Now().UTC(),
	}, nil
}

func (s *Service) GetRecentActivities(ctx context.Context, limit int) ([]*model.UserActivityLog, error) {
	if limit <= 0 {
		limit = dashboardActivityLimit
	}
	return s.admin.GetRecentActivities(ctx, limit)
}

func (s *Service) GetRecentLogs(ctx context.Context, limit int) ([]*model.SystemLog, error) {
	if limit <= 0 {
		limit = dashboardLogLimit
	}
	return s.admin.GetRecentLogs(ctx, limit)
}

// FlagContent records a user report; every new flag starts pending.
func (s *Service) FlagContent(ctx context.Context, req *model.CreateContentFlagRequest) (*model.ContentFlag, error) {
	flag := &model.ContentFlag{
		ID:            uuid.NewString(),
		ContentType:   req.ContentType,
		ContentID:     req.ContentID,
		ReporterID:    req.ReporterID,
		ReporterEmail: req.ReporterEmail,
		Reason:        req.Reason,
		Description:   req.Description,
		Status:        model.ModerationStatusPending,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.admin.CreateContentFlag(ctx, flag); err != nil {
		return nil, err
	}
	return flag, nil
}

func (s *Service) GetPendingFlags(ctx context.Context, limit int) ([]*model.ContentFlag, error) {
	if limit <= 0 {
		limit = dashboardFlagLimit
	}
	return s.admin.GetPendingFlags(ctx, limit)
}

// ModerateContent resolves a flag and records who did it and why, as a
// single transaction.
func (s *Service) ModerateContent(ctx context.Context, flagID string, admin *auth.Claims, req *model.ModerateContentRequest) (*model.ContentFlag, error) {
	if !model.IsValidModerationStatus(req.Status) {
		return nil, apperrors.Validationf("invalid moderation status: %s", req.Status)
	}
	if req.Status == model.ModerationStatusPending {
		return nil, apperrors.Validation("cannot moderate back to pending")
	}

	action := &model.ModerationAction{
		ID:         uuid.NewString(),
		AdminID:    admin.AdminID,
		AdminEmail: admin.Email,
		TargetType: "content_flag",
		TargetID:   flagID,
		ActionType: req.ActionType,
		Reason:     req.Reason,
		Status:     req.Status,
		Timestamp:  time.Now().UTC(),
	}

	if err := s.admin.Moderate(ctx, flagID, req.Status, req.AdminNotes, action); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"flag_id":  flagID,
		"admin_id": admin.AdminID,
		"status":   req.Status,
	}).Info("content moderated")

	flag, err := s.admin.GetContentFlag(ctx, flagID)
	if err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, apperrors.NotFound("content flag")
	}
	return flag, nil
}

// CreateAdminUser registers an admin account with a bcrypt-hashed
// password.
func (s *Service) CreateAdminUser(ctx context.Context, req *model.CreateAdminUserRequest) (*model.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.admin.GetAdminUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("admin user with this email already exists", nil)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Storage("failed to hash password", err)
	}

	user := &model.AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Permissions:  model.StringList(req.Permissions),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.admin.CreateAdminUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{"admin_id": user.ID, "role": user.Role}).Info("admin user created")
	return user, nil
}

// Authenticate verifies credentials and issues a session token. The
// same error covers unknown email, wrong password and disabled
// accounts.
func (s *Service) Authenticate(ctx context.Context, req *model.AdminLoginRequest) (string, *model.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.admin.GetAdminUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive || !security.CheckPassword(user.PasswordHash, req.Password) {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.admin.TouchAdminLogin(ctx, user.ID, now); err != nil {
		s.logger.Error(err, "failed to record admin login time")
	}
	user.LastLogin = &now

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, apperrors.Storage("failed to issue session token", err)
	}

	if logErr := s.LogActivity(ctx, model.ActivityLogin, "admin login", &user.ID, &user.Email, nil, nil, nil, nil); logErr != nil {
		s.logger.Error(logErr, "failed to log admin login activity")
	}
	return token, user, nil
}
