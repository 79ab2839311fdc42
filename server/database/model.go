package database

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/wego-social/wego-tools/internal/xpgtype"
	"github.com/wego-social/wego-tools/server/wego"
)

type Activity struct {
	ID                   string                      `db:"activity_id"`
	Title                string                      `db:"activity_title"`
	Description          string                      `db:"activity_description"`
	Tags                 pq.StringArray              `db:"activity_tags"`
	Address              string                      `db:"activity_address"`
	Date                 time.Time                   `db:"activity_date"`
	MaxParticipants      int                         `db:"activity_max_participants"`
	ParticipantsCount    int                         `db:"activity_participants_count"`
	ComputedParticipants int                         `db:"activity_computed_participants"`
	Popularity           sql.NullInt64               `db:"activity_popularity"`
	CreatorID            string                      `db:"activity_creator_id"`
	CreatorName          string                      `db:"activity_creator_name"`
	ChatID               string                      `db:"activity_chat_id"`
	CoverPhotoURL        string                      `db:"activity_cover_photo_url"`
	ImportedAt           time.Time                   `db:"activity_imported_at"`
	Raw                  xpgtype.JSON[wego.Activity] `db:"activity_raw_json"`
}

type Report struct {
	ID         int       `db:"report_id"`
	ActivityID string    `db:"report_activity_id"`
	ReporterID string    `db:"report_reporter_id"`
	Reason     string    `db:"report_reason"`
	Details    string    `db:"report_details"`
	CreatedAt  time.Time `db:"report_created_at"`
}

type ReportWithActivity struct {
	Report
	ActivityTitle string `db:"activity_title"`
}

type Resolution struct {
	TargetID     string    `db:"resolution_target_id"`
	ResolvedType string    `db:"resolution_resolved_type"`
	ResolvedID   string    `db:"resolution_resolved_id"`
	ResolvedAt   time.Time `db:"resolution_resolved_at"`
}

type Session struct {
	ID           string    `db:"session_id"`
	UserID       string    `db:"session_user_id"`
	UserName     string    `db:"session_user_name"`
	AvatarURL    string    `db:"session_avatar_url"`
	AccessToken  string    `db:"session_access_token"`
	RefreshToken string    `db:"session_refresh_token"`
	CreatedAt    time.Time `db:"session_created_at"`
	ExpiresAt    time.Time `db:"session_expires_at"`
}
