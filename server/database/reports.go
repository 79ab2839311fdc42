package database

import (
	"context"
	"fmt"
)

func (d *Database) InsertReport(ctx context.Context, report Report) error {
	query := `
		INSERT INTO reports (report_activity_id, report_reporter_id, report_reason, report_details, report_created_at)
		VALUES (:report_activity_id, :report_reporter_id, :report_reason, :report_details, now())
	`

	if _, err := d.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

func (d *Database) HasReported(ctx context.Context, activityID string, reporterID string) (bool, error) {
	var count int
	if err := d.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM reports WHERE report_activity_id = $1 AND report_reporter_id = $2", activityID, reporterID); err != nil {
		return false, fmt.Errorf("failed to check report: %w", err)
	}

	return count > 0, nil
}

func (d *Database) GetReports(ctx context.Context, limit int) ([]ReportWithActivity, error) {
	query := `
		SELECT r.*, COALESCE(a.activity_title, '') AS activity_title
		FROM reports r
		LEFT JOIN activities a ON r.report_activity_id = a.activity_id
		ORDER BY r.report_created_at DESC
		LIMIT $1
	`

	var reports []ReportWithActivity
	if err := d.db.SelectContext(ctx, &reports, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}

	return reports, nil
}
