package web

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wego-social/wego-tools/internal/omit"
	"github.com/wego-social/wego-tools/server/wego"
)

func TestNewActivityResponseSplitsDisplayAndGating(t *testing.T) {
	activity := wego.Activity{
		ID:              "a1",
		Title:           "Bouldering",
		MaxParticipants: 3,
		Participants: []wego.Participant{
			{User: wego.UserRef{ID: "u1"}},
			{User: wego.UserRef{ID: "u2"}},
			{User: wego.UserRef{ID: "u3"}},
		},
		CreatedBy:  wego.UserRef{ID: "u1", Name: "Sam"},
		Popularity: omit.New(12),
		Date:       time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}

	rs := newActivityResponse(activity)

	if rs.Participation.DisplayedPopularity != 12 {
		t.Errorf("expected displayed popularity 12, got %d", rs.Participation.DisplayedPopularity)
	}
	if rs.Participation.ComputedParticipants != 3 {
		t.Errorf("expected computed participants 3, got %d", rs.Participation.ComputedParticipants)
	}
	if !rs.Participation.IsFull || !rs.Participation.JoinBlockedForNonCreator {
		t.Errorf("expected activity to be full and join-blocked: %+v", rs.Participation)
	}
}

func TestProblemResponses(t *testing.T) {
	h := &handler{}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/activities/missing", nil)
	h.Error(rec, r, 404, "activity not found")

	if rec.Code != 404 {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem content type, got %q", ct)
	}

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	if p.Status != 404 || p.Detail != "activity not found" {
		t.Errorf("unexpected problem: %+v", p)
	}
}

func TestValidationErrorCarriesFieldErrors(t *testing.T) {
	h := &handler{}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/targets/t1/report", nil)
	h.ValidationError(rec, r, map[string][]string{
		"details": {"details must be at least 10 characters"},
	})

	if rec.Code != 400 {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	if len(p.Errors["details"]) != 1 {
		t.Errorf("expected one details error, got %+v", p.Errors)
	}
}
