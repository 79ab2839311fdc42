package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/wego-social/wego-tools/internal/tsync"
	"github.com/wego-social/wego-tools/internal/xerrors"
	"github.com/wego-social/wego-tools/internal/xpgtype"
	"github.com/wego-social/wego-tools/server/database"
	"github.com/wego-social/wego-tools/server/participation"
	"github.com/wego-social/wego-tools/server/wego"
)

// refreshActivities periodically re-imports the upstream activity list into
// the local cache so the moderation dashboard and the resolver's audit trail
// work from fresh data.
func (s *Server) refreshActivities() {
	for {
		s.doRefreshActivities()
		time.Sleep(time.Duration(s.Cfg.Refresh.Interval))
	}
}

func (s *Server) doRefreshActivities() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	activities, err := s.Client.GetActivities(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch activities for refresh", slog.Any("err", err))
		return
	}

	eg, ctx := tsync.ErrorGroupWithContext(ctx)
	eg.SetLimit(max(s.Cfg.Refresh.Workers, 1))

	for _, activity := range activities {
		eg.Go(func() error {
			return s.ImportActivity(ctx, activity)
		})
	}

	if err = eg.Wait(); err != nil {
		for _, importErr := range xerrors.Unwrap(err) {
			slog.ErrorContext(ctx, "failed to import activity", slog.Any("err", importErr))
		}
	}

	slog.InfoContext(ctx, "refreshed activity cache", slog.Int("activities", len(activities)))
}

// ImportActivity recomputes the occupancy summary for an upstream activity
// and upserts it into the cache.
func (s *Server) ImportActivity(ctx context.Context, activity wego.Activity) error {
	summary := participation.Account(activity, activity.MaxParticipants)

	row := database.Activity{
		ID:                   activity.ID,
		Title:                activity.Title,
		Description:          activity.Description,
		Tags:                 pq.StringArray(activity.Tags),
		Address:              activity.Location.Address,
		Date:                 activity.Date,
		MaxParticipants:      activity.MaxParticipants,
		ParticipantsCount:    summary.DisplayedPopularity,
		ComputedParticipants: summary.ComputedParticipants,
		Popularity: sql.NullInt64{
			Int64: int64(activity.Popularity.Value),
			Valid: activity.Popularity.OK,
		},
		CreatorID:     activity.CreatedBy.ID,
		CreatorName:   activity.CreatedBy.Name,
		ChatID:        activity.Chat.ID,
		CoverPhotoURL: activity.CoverPhotoURL,
		Raw:           xpgtype.NewJSON(activity),
	}

	if err := s.DB.InsertActivity(ctx, row); err != nil {
		return fmt.Errorf("failed to upsert activity %q: %w", activity.ID, err)
	}

	return nil
}
