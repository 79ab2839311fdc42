package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (d *Database) InsertActivity(ctx context.Context, activity Activity) error {
	query := `
		INSERT INTO activities (activity_id, activity_title, activity_description, activity_tags, activity_address, activity_date, activity_max_participants, activity_participants_count, activity_computed_participants, activity_popularity, activity_creator_id, activity_creator_name, activity_chat_id, activity_cover_photo_url, activity_imported_at, activity_raw_json)
		VALUES (:activity_id, :activity_title, :activity_description, :activity_tags, :activity_address, :activity_date, :activity_max_participants, :activity_participants_count, :activity_computed_participants, :activity_popularity, :activity_creator_id, :activity_creator_name, :activity_chat_id, :activity_cover_photo_url, now(), :activity_raw_json)
		ON CONFLICT (activity_id) DO UPDATE SET
			activity_title = EXCLUDED.activity_title,
			activity_description = EXCLUDED.activity_description,
			activity_tags = EXCLUDED.activity_tags,
			activity_address = EXCLUDED.activity_address,
			activity_date = EXCLUDED.activity_date,
			activity_max_participants = EXCLUDED.activity_max_participants,
			activity_participants_count = EXCLUDED.activity_participants_count,
			activity_computed_participants = EXCLUDED.activity_computed_participants,
			activity_popularity = EXCLUDED.activity_popularity,
			activity_creator_id = EXCLUDED.activity_creator_id,
			activity_creator_name = EXCLUDED.activity_creator_name,
			activity_chat_id = EXCLUDED.activity_chat_id,
			activity_cover_photo_url = EXCLUDED.activity_cover_photo_url,
			activity_imported_at = now(),
			activity_raw_json = EXCLUDED.activity_raw_json
	`

	if _, err := d.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}

	return nil
}

func (d *Database) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	var activity Activity
	if err := d.db.GetContext(ctx, &activity, "SELECT * FROM activities WHERE activity_id = $1", activityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %q", ErrNotFound, activityID)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return &activity, nil
}

func (d *Database) GetActivities(ctx context.Context) ([]Activity, error) {
	query := `
		SELECT * FROM activities
		ORDER BY activity_date DESC, activity_title DESC
	`

	var activities []Activity
	if err := d.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	return activities, nil
}

// GetFullActivities returns cached activities whose computed occupancy has
// reached the participant limit, most recently imported first. Used by the
// moderation dashboard to spot capacity pressure.
func (d *Database) GetFullActivities(ctx context.Context, limit int) ([]Activity, error) {
	query := `
		SELECT * FROM activities
		WHERE activity_max_participants > 0
		AND activity_computed_participants >= activity_max_participants
		ORDER BY activity_imported_at DESC
		LIMIT $1
	`

	var activities []Activity
	if err := d.db.SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get full activities: %w", err)
	}

	return activities, nil
}
