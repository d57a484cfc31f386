package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medscanhq/medscan-api/internal/model"
	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

// AdminStore layers the activity/system-log, moderation and analytics
// schema onto whichever backend is active. Queries are written with ?
// placeholders and rebound for the active driver, and all time
// comparisons take Go-computed cutoffs, so the same DML runs on both
// backends; only DDL differs (owned by each backend's CreateSchema).
type AdminStore struct {
	base Store
}

func NewAdminStore(base Store) *AdminStore {
	return &AdminStore{base: base}
}

func (s *AdminStore) db() *sqlx.DB {
	return s.base.DB()
}

func (s *AdminStore) LogUserActivity(ctx context.Context, a *model.UserActivityLog) error {
	query := s.db().Rebind(`
		INSERT INTO user_activity_logs
		(id, user_id, user_email, activity_type, description, ip_address, user_agent, metadata, timestamp, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db().ExecContext(ctx, query,
		a.ID, a.UserID, a.UserEmail, a.ActivityType, a.Description,
		a.IPAddress, a.UserAgent, a.Metadata, a.Timestamp, a.SessionID,
	)
	if err != nil {
		return apperrors.Storage("failed to log user activity", err)
	}
	return nil
}

func (s *AdminStore) LogSystemEvent(ctx context.Context, l *model.SystemLog) error {
	query := s.db().Rebind(`
		INSERT INTO system_logs
		(id, level, component, message, stack_trace, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db().ExecContext(ctx, query,
		l.ID, l.Level, l.Component, l.Message, l.StackTrace, l.Metadata, l.Timestamp,
	)
	if err != nil {
		return apperrors.Storage("failed to log system event", err)
	}
	return nil
}

func (s *AdminStore) GetRecentActivities(ctx context.Context, limit int) ([]*model.UserActivityLog, error) {
	activities := []*model.UserActivityLog{}
	query := s.db().Rebind(`
		SELECT * FROM user_activity_logs
		ORDER BY timestamp DESC
		LIMIT ?`)
	if err := s.db().SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, apperrors.Storage("failed to get recent activities", err)
	}
	return activities, nil
}

func (s *AdminStore) GetRecentLogs(ctx context.Context, limit int) ([]*model.SystemLog, error) {
	logs := []*model.SystemLog{}
	query := s.db().Rebind(`
		SELECT * FROM system_logs
		ORDER BY timestamp DESC
		LIMIT ?`)
	if err := s.db().SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, apperrors.Storage("failed to get recent logs", err)
	}
	return logs, nil
}

func (s *AdminStore) CreateContentFlag(ctx context.Context, f *model.ContentFlag) error {
	query := s.db().Rebind(`
		INSERT INTO content_flags
		(id, content_type, content_id, reporter_id, reporter_email, reason, description, status, admin_notes, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db().ExecContext(ctx, query,
		f.ID, f.ContentType, f.ContentID, f.ReporterID, f.ReporterEmail,
		f.Reason, f.Description, f.Status, f.AdminNotes, f.Timestamp,
	)
	if err != nil {
		return apperrors.Storage("failed to create content flag", err)
	}
	return nil
}

func (s *AdminStore) GetContentFlag(ctx context.Context, id string) (*model.ContentFlag, error) {
	var f model.ContentFlag
	query := s.db().Rebind(`SELECT * FROM content_flags WHERE id = ?`)
	err := s.db().GetContext(ctx, &f, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get content flag", err)
	}
	return &f, nil
}

func (s *AdminStore) GetPendingFlags(ctx context.Context, limit int) ([]*model.ContentFlag, error) {
	flags := []*model.ContentFlag{}
	query := s.db().Rebind(`
		SELECT * FROM content_flags
		WHERE status = ?
		ORDER BY timestamp DESC
		LIMIT ?`)
	if err := s.db().SelectContext(ctx, &flags, query, model.ModerationStatusPending, limit); err != nil {
		return nil, apperrors.Storage("failed to get pending flags", err)
	}
	return flags, nil
}

// Moderate updates the flag's status and records the moderation action
// in one transaction: either both land or neither does.
func (s *AdminStore) Moderate(ctx context.Context, flagID, status string, adminNotes *string, action *model.ModerationAction) error {
	tx, err := s.db().BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Storage("failed to begin moderation transaction", err)
	}
	defer tx.Rollback()

	updateQuery := tx.Rebind(`
		UPDATE content_flags
		SET status = ?, admin_notes = ?
		WHERE id = ?`)
	res, err := tx.ExecContext(ctx, updateQuery, status, adminNotes, flagID)
	if err != nil {
		return apperrors.Storage("failed to update flag status", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read rows affected", err)
	}
	if rows == 0 {
		return apperrors.NotFound("content flag")
	}

	insertQuery := tx.Rebind(`
		INSERT INTO moderation_actions
		(id, admin_id, admin_email, target_type, target_id, action_type, reason, status, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, insertQuery,
		action.ID, action.AdminID, action.AdminEmail, action.TargetType, action.TargetID,
		action.ActionType, action.Reason, action.Status, action.Metadata, action.Timestamp,
	)
	if err != nil {
		return apperrors.Storage("failed to record moderation action", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage("failed to commit moderation", err)
	}
	return nil
}

// countableTables guards the aggregate helpers against arbitrary table
// interpolation.
var countableTables = map[string]string{
	"patients":           "created_at",
	"medical_records":    "created_at",
	"appointments":       "created_at",
	"user_activity_logs": "timestamp",
	"system_logs":        "timestamp",
}

func (s *AdminStore) Count(ctx context.Context, table string) (int, error) {
	if _, ok := countableTables[table]; !ok {
		return 0, apperrors.Validationf("cannot count table %s", table)
	}
	var count int
	if err := s.db().GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, apperrors.Storage(fmt.Sprintf("failed to count %s", table), err)
	}
	return count, nil
}

// CountSince counts rows created at or after the cutoff; passing the
// day's start yields "today" counts without dialect-specific date
// truncation.
func (s *AdminStore) CountSince(ctx context.Context, table string, cutoff time.Time) (int, error) {
	column, ok := countableTables[table]
	if !ok {
		return 0, apperrors.Validationf("cannot count table %s", table)
	}
	var count int
	query := s.db().Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s >= ?", table, column))
	if err := s.db().GetContext(ctx, &count, query, cutoff); err != nil {
		return 0, apperrors.Storage(fmt.Sprintf("failed to count recent %s", table), err)
	}
	return count, nil
}

func (s *AdminStore) CountActivities(ctx context.Context, activityType string) (int, error) {
	var count int
	query := s.db().Rebind(`SELECT COUNT(*) FROM user_activity_logs WHERE activity_type = ?`)
	if err := s.db().GetContext(ctx, &count, query, activityType); err != nil {
		return 0, apperrors.Storage("failed to count activities", err)
	}
	return count, nil
}

func (s *AdminStore) CountActivitiesSince(ctx context.Context, activityType string, cutoff time.Time) (int, error) {
	var count int
	query := s.db().Rebind(`SELECT COUNT(*) FROM user_activity_logs WHERE activity_type = ? AND timestamp >= ?`)
	if err := s.db().GetContext(ctx, &count, query, activityType, cutoff); err != nil {
		return 0, apperrors.Storage("failed to count recent activities", err)
	}
	return count, nil
}

// CountDistinctUsersSince counts distinct user emails seen in the
// activity log at or after the cutoff; a zero cutoff counts all time.
func (s *AdminStore) CountDistinctUsersSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	if cutoff.IsZero() {
		if err := s.db().GetContext(ctx, &count,
			`SELECT COUNT(DISTINCT user_email) FROM user_activity_logs WHERE user_email IS NOT NULL`); err != nil {
			return 0, apperrors.Storage("failed to count distinct users", err)
		}
		return count, nil
	}
	query := s.db().Rebind(`SELECT COUNT(DISTINCT user_email) FROM user_activity_logs WHERE user_email IS NOT NULL AND timestamp >= ?`)
	if err := s.db().GetContext(ctx, &count, query, cutoff); err != nil {
		return 0, apperrors.Storage("failed to count distinct users", err)
	}
	return count, nil
}

func (s *AdminStore) CountSystemLogsByLevel(ctx context.Context, level string) (int, error) {
	var count int
	query := s.db().Rebind(`SELECT COUNT(*) FROM system_logs WHERE level = ?`)
	if err := s.db().GetContext(ctx, &count, query, level); err != nil {
		return 0, apperrors.Storage("failed to count system logs", err)
	}
	return count, nil
}

func (s *AdminStore) CreateAdminUser(ctx context.Context, u *model.AdminUser) error {
	query := s.db().Rebind(`
		INSERT INTO admin_users
		(id, email, name, role, permissions, password_hash, is_active, last_login, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db().ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Role, u.Permissions, u.PasswordHash,
		u.IsActive, u.LastLogin, u.CreatedAt,
	)
	if err != nil {
		return apperrors.Storage("failed to create admin user", err)
	}
	return nil
}

func (s *AdminStore) GetAdminUserByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var u model.AdminUser
	query := s.db().Rebind(`SELECT * FROM admin_users WHERE email = ?`)
	err := s.db().GetContext(ctx, &u, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to get admin user", err)
	}
	return &u, nil
}

func (s *AdminStore) TouchAdminLogin(ctx context.Context, id string, at time.Time) error {
	query := s.db().Rebind(`UPDATE admin_users SET last_login = ? WHERE id = ?`)
	if _, err := s.db().ExecContext(ctx, query, at, id); err != nil {
		return apperrors.Storage("failed to update admin last login", err)
	}
	return nil
}

// PutAnalyticsCache upserts a keyed cached aggregate with its expiry.
func (s *AdminStore) PutAnalyticsCache(ctx context.Context, entry *model.AnalyticsCacheEntry) error {
	deleteQuery := s.db().Rebind(`DELETE FROM analytics_cache WHERE cache_key = ?`)
	if _, err := s.db().ExecContext(ctx, deleteQuery, entry.CacheKey); err != nil {
		return apperrors.Storage("failed to evict analytics cache entry", err)
	}

	insertQuery := s.db().Rebind(`
		INSERT INTO analytics_cache (id, cache_key, data, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db().ExecContext(ctx, insertQuery,
		entry.ID, entry.CacheKey, entry.Data, entry.ExpiresAt, entry.CreatedAt); err != nil {
		return apperrors.Storage("failed to write analytics cache entry", err)
	}
	return nil
}

// GetAnalyticsCache returns the entry for key, or nil when absent or
// expired.
func (s *AdminStore) GetAnalyticsCache(ctx context.Context, key string) (*model.AnalyticsCacheEntry, error) {
	var entry model.AnalyticsCacheEntry
	query := s.db().Rebind(`SELECT * FROM analytics_cache WHERE cache_key = ?`)
	err := s.db().GetContext(ctx, &entry, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to read analytics cache entry", err)
	}
	if time.Now().UTC().After(entry.ExpiresAt) {
		return nil, nil
	}
	return &entry, nil
}
