package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (d *Database) InsertResolution(ctx context.Context, resolution Resolution) error {
	query := `
		INSERT INTO resolutions (resolution_target_id, resolution_resolved_type, resolution_resolved_id, resolution_resolved_at)
		VALUES (:resolution_target_id, :resolution_resolved_type, :resolution_resolved_id, now())
		ON CONFLICT (resolution_target_id) DO UPDATE SET
			resolution_resolved_type = EXCLUDED.resolution_resolved_type,
			resolution_resolved_id = EXCLUDED.resolution_resolved_id,
			resolution_resolved_at = now()
	`

	if _, err := d.db.NamedExecContext(ctx, query, resolution); err != nil {
		return fmt.Errorf("failed to upsert resolution: %w", err)
	}

	return nil
}

func (d *Database) GetResolution(ctx context.Context, targetID string) (*Resolution, error) {
	var resolution Resolution
	if err := d.db.GetContext(ctx, &resolution, "SELECT * FROM resolutions WHERE resolution_target_id = $1", targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: resolution for %q", ErrNotFound, targetID)
		}
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}

	return &resolution, nil
}
