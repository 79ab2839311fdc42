package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wego-social/wego-tools/internal/xquery"
	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/wego"
)

func (h *handler) Activities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := xquery.ParseInt(r.URL.Query(), "limit", 0)

	// The event list is the denormalized shape: no participants array, so the
	// accounting falls back to counts and the popularity gap.
	activities, err := h.Client.GetEvents(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch activities upstream, serving cache", slog.Any("err", err))

		cached, cacheErr := h.DB.GetActivities(ctx)
		if cacheErr != nil {
			h.ServerError(w, r, "failed to fetch activities", errors.Join(err, cacheErr))
			return
		}

		activities = make([]wego.Activity, 0, len(cached))
		for _, row := range cached {
			activity := row.Raw.V
			activity.ID = row.ID
			activities = append(activities, activity)
		}
	}

	if limit > 0 && limit < len(activities) {
		activities = activities[:limit]
	}

	responses := make([]ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, newActivityResponse(activity))
	}

	h.JSON(w, r, http.StatusOK, responses)
}

func (h *handler) Activity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID := r.PathValue("activity_id")

	activity, err := h.Client.GetActivity(ctx, activityID)
	if err != nil {
		if errors.Is(err, wego.ErrNotFound) {
			h.Error(w, r, http.StatusNotFound, "activity not found")
			return
		}

		// Upstream hiccup, serve the cached record if we have one.
		cached, cacheErr := h.DB.GetActivity(ctx, activityID)
		if cacheErr != nil {
			h.ServerError(w, r, "failed to fetch activity", err)
			return
		}
		slog.ErrorContext(ctx, "Failed to fetch activity upstream, serving cache", slog.String("activity_id", activityID), slog.Any("err", err))
		fallback := cached.Raw.V
		fallback.ID = cached.ID
		h.JSON(w, r, http.StatusOK, newActivityResponse(fallback))
		return
	}

	if err = h.ImportActivity(ctx, *activity); err != nil {
		slog.ErrorContext(ctx, "Failed to cache activity", slog.String("activity_id", activity.ID), slog.Any("err", err))
	}

	h.JSON(w, r, http.StatusOK, newActivityResponse(*activity))
}

// FullActivities lists cached activities at or over their participant limit,
// for moderators watching capacity pressure.
func (h *handler) FullActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := auth.GetSession(r)
	if !ok || !h.Auth.IsModerator(session.UserID) {
		h.Error(w, r, http.StatusForbidden, "moderator access required")
		return
	}

	limit := xquery.ParseInt(r.URL.Query(), "limit", 50)

	activities, err := h.DB.GetFullActivities(ctx, limit)
	if err != nil {
		h.ServerError(w, r, "failed to fetch full activities", err)
		return
	}

	responses := make([]ActivityResponse, 0, len(activities))
	for _, row := range activities {
		activity := row.Raw.V
		activity.ID = row.ID
		responses = append(responses, newActivityResponse(activity))
	}

	h.JSON(w, r, http.StatusOK, responses)
}
