package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wego-social/wego-tools/internal/xquery"
	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/database"
	"github.com/wego-social/wego-tools/server/realtime"
	"github.com/wego-social/wego-tools/server/resolve"
	"github.com/wego-social/wego-tools/server/wego"
)

const (
	minReportDetailsLen = 10
	maxReportDetailsLen = 500
	maxReviewCommentLen = 500
)

func (h *handler) ResolveTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := r.PathValue("target_id")

	target, err := h.Resolvers.For(targetID).Resolve(ctx)
	if err != nil {
		if errors.Is(err, resolve.ErrUnresolved) {
			h.Error(w, r, http.StatusNotFound, "target is not linked to an activity or group")
			return
		}
		h.ServerError(w, r, "failed to resolve target", err)
		return
	}

	if err = h.DB.InsertResolution(ctx, database.Resolution{
		TargetID:     targetID,
		ResolvedType: string(target.Type),
		ResolvedID:   target.ID,
		ResolvedAt:   time.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to record resolution", slog.String("target_id", targetID), slog.Any("err", err))
	}

	rs := TargetResponse{
		Type: string(target.Type),
		ID:   target.ID,
	}
	if target.Activity != nil {
		activity := newActivityResponse(*target.Activity)
		rs.Activity = &activity
	}

	h.JSON(w, r, http.StatusOK, rs)
}

// Resolution returns the persisted outcome of an earlier resolution, without
// touching the upstream API.
func (h *handler) Resolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := r.PathValue("target_id")

	resolution, err := h.DB.GetResolution(ctx, targetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.Error(w, r, http.StatusNotFound, "target has not been resolved")
			return
		}
		h.ServerError(w, r, "failed to fetch resolution", err)
		return
	}

	h.JSON(w, r, http.StatusOK, TargetResponse{
		Type: resolution.ResolvedType,
		ID:   resolution.ResolvedID,
	})
}

// resolveActivity maps a target id onto the activity it belongs to. The
// shared resolver short-circuits, so fetching reviews and then submitting one
// against the same target runs the lookup chain at most once.
func (h *handler) resolveActivity(w http.ResponseWriter, r *http.Request, targetID string) (resolve.Target, bool) {
	resolver := h.Resolvers.For(targetID)

	target, ok := resolver.Resolved()
	if ok {
		if target.Type != resolve.TargetActivity {
			h.Error(w, r, http.StatusConflict, "target resolved to a group, not an activity")
			return resolve.Target{}, false
		}
		return target, true
	}

	target, err := resolver.Resolve(r.Context())
	if err != nil {
		if errors.Is(err, resolve.ErrUnresolved) {
			h.Error(w, r, http.StatusNotFound, "target is not linked to an activity")
			return resolve.Target{}, false
		}
		h.ServerError(w, r, "failed to resolve target", err)
		return resolve.Target{}, false
	}
	if target.Type != resolve.TargetActivity {
		h.Error(w, r, http.StatusConflict, "target resolved to a group, not an activity")
		return resolve.Target{}, false
	}
	return target, true
}

func (h *handler) Reviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, ok := h.resolveActivity(w, r, r.PathValue("target_id"))
	if !ok {
		return
	}

	reviews, err := h.Client.GetReviews(ctx, target.ID)
	if err != nil {
		h.ServerError(w, r, "failed to fetch reviews", err)
		return
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, newReviewResponse(review))
	}

	h.JSON(w, r, http.StatusOK, responses)
}

func (h *handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := auth.GetSession(r); !ok {
		h.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var create wego.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	create.Comment = strings.TrimSpace(create.Comment)

	// Validation happens before any lookup so a bad submission never costs a
	// network round trip.
	errs := map[string][]string{}
	if create.Rating < 1 || create.Rating > 5 {
		errs["rating"] = append(errs["rating"], "rating must be between 1 and 5")
	}
	if len(create.Comment) > maxReviewCommentLen {
		errs["comment"] = append(errs["comment"], "comment must be at most 500 characters")
	}
	if len(errs) > 0 {
		h.ValidationError(w, r, errs)
		return
	}

	target, ok := h.resolveActivity(w, r, r.PathValue("target_id"))
	if !ok {
		return
	}

	review, err := h.Client.CreateReview(ctx, target.ID, create)
	if err != nil {
		h.ServerError(w, r, "failed to submit review", err)
		return
	}

	h.Hub.Broadcast(target.ID, realtime.EventActivityReview, newReviewResponse(*review), "")

	h.JSON(w, r, http.StatusCreated, newReviewResponse(*review))
}

func (h *handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := auth.GetSession(r)
	if !ok {
		h.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var create wego.ReportCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		h.Error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	create.Reason = strings.TrimSpace(create.Reason)
	create.Details = strings.TrimSpace(create.Details)

	errs := map[string][]string{}
	if create.Reason == "" {
		errs["reason"] = append(errs["reason"], "reason is required")
	}
	if len(create.Details) < minReportDetailsLen {
		errs["details"] = append(errs["details"], "details must be at least 10 characters")
	}
	if len(create.Details) > maxReportDetailsLen {
		errs["details"] = append(errs["details"], "details must be at most 500 characters")
	}
	if len(errs) > 0 {
		h.ValidationError(w, r, errs)
		return
	}

	target, ok := h.resolveActivity(w, r, r.PathValue("target_id"))
	if !ok {
		return
	}

	if err := h.Client.CreateReport(ctx, target.ID, create); err != nil {
		h.ServerError(w, r, "failed to submit report", err)
		return
	}

	report := database.Report{
		ActivityID: target.ID,
		ReporterID: session.UserID,
		Reason:     create.Reason,
		Details:    create.Details,
		CreatedAt:  time.Now(),
	}
	if err := h.DB.InsertReport(ctx, report); err != nil {
		slog.ErrorContext(ctx, "Failed to record report", slog.String("activity_id", target.ID), slog.Any("err", err))
	}

	activityTitle := target.ID
	if target.Activity != nil {
		activityTitle = target.Activity.Title
	}
	go h.Notifier.NotifyReport(context.WithoutCancel(ctx), report, activityTitle)

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) HasReported(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, ok := h.resolveActivity(w, r, r.PathValue("target_id"))
	if !ok {
		return
	}

	reported, err := h.Client.HasReported(ctx, target.ID)
	if err != nil {
		h.ServerError(w, r, "failed to check report status", err)
		return
	}

	if session, ok := auth.GetSession(r); ok && !reported {
		local, err := h.DB.HasReported(ctx, target.ID, session.UserID)
		if err != nil {
			h.ServerError(w, r, "failed to check report status", err)
			return
		}
		reported = local
	}

	h.JSON(w, r, http.StatusOK, wego.HasReported{HasReported: reported})
}

func (h *handler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, ok := auth.GetSession(r)
	if !ok || !h.Auth.IsModerator(session.UserID) {
		h.Error(w, r, http.StatusForbidden, "moderator access required")
		return
	}

	limit := xquery.ParseInt(r.URL.Query(), "limit", 50)

	reports, err := h.DB.GetReports(ctx, limit)
	if err != nil {
		h.ServerError(w, r, "failed to fetch reports", err)
		return
	}

	responses := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, ReportResponse{
			ID:            report.ID,
			ActivityID:    report.ActivityID,
			ActivityTitle: report.ActivityTitle,
			ReporterID:    report.ReporterID,
			Reason:        report.Reason,
			Details:       report.Details,
			CreatedAt:     report.CreatedAt,
		})
	}

	h.JSON(w, r, http.StatusOK, responses)
}
