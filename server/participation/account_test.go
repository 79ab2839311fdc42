package participation

import (
	"testing"

	"github.com/wego-social/wego-tools/internal/omit"
	"github.com/wego-social/wego-tools/server/wego"
)

func participant(userID string) wego.Participant {
	return wego.Participant{User: wego.UserRef{ID: userID}}
}

func TestAccountCreatorAlreadyCounted(t *testing.T) {
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u1"), participant("u2")},
		CreatedBy:    wego.UserRef{ID: "u1"},
	}

	summary := Account(activity, 4)

	if summary.ComputedParticipants != 2 {
		t.Errorf("expected 2 computed participants, got %d", summary.ComputedParticipants)
	}
	if summary.CreatorOccupiesSlot {
		t.Error("expected no implicit creator slot when creator is listed")
	}
}

func TestAccountImplicitCreatorSlot(t *testing.T) {
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u2")},
		CreatedBy:    wego.UserRef{ID: "u1"},
	}

	summary := Account(activity, 4)

	if summary.ComputedParticipants != 2 {
		t.Errorf("expected 2 computed participants, got %d", summary.ComputedParticipants)
	}
	if !summary.CreatorOccupiesSlot {
		t.Error("expected implicit creator slot when creator is missing")
	}
}

func TestAccountDeduplicatesParticipants(t *testing.T) {
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u2"), participant("u2"), participant("u3")},
		CreatedBy:    wego.UserRef{ID: "u2"},
	}

	summary := Account(activity, 0)

	if summary.ComputedParticipants != 2 {
		t.Errorf("expected 2 computed participants, got %d", summary.ComputedParticipants)
	}
}

func TestAccountFullActivity(t *testing.T) {
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u1")},
		CreatedBy:    wego.UserRef{ID: "u2"},
	}

	summary := Account(activity, 2)

	if summary.DisplayedPopularity != 2 {
		t.Errorf("expected displayed popularity 2, got %d", summary.DisplayedPopularity)
	}
	if !summary.IsFull {
		t.Error("expected activity to be full")
	}
	if !summary.JoinBlockedForNonCreator {
		t.Error("expected joins to be blocked")
	}
}

func TestAccountDisplayAndGatingDiverge(t *testing.T) {
	// Inflated server popularity must show on the badge but never block joins.
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u1")},
		CreatedBy:    wego.UserRef{ID: "u1"},
		Popularity:   omit.New(5),
	}

	summary := Account(activity, 3)

	if summary.DisplayedPopularity != 5 {
		t.Errorf("expected displayed popularity 5, got %d", summary.DisplayedPopularity)
	}
	if !summary.IsFull {
		t.Error("expected display-path full indicator")
	}
	if summary.ComputedParticipants != 1 {
		t.Errorf("expected 1 computed participant, got %d", summary.ComputedParticipants)
	}
	if summary.JoinBlockedForNonCreator {
		t.Error("expected joins to stay open despite inflated popularity")
	}
}

func TestAccountListShapeInfersCreatorFromPopularityGap(t *testing.T) {
	activity := wego.Activity{
		ParticipantsCount: 2,
		Popularity:        omit.New(3),
		CreatedBy:         wego.UserRef{ID: "u1"},
	}

	summary := Account(activity, 4)

	if !summary.CreatorOccupiesSlot {
		t.Error("expected creator slot inferred from popularity gap")
	}
	if summary.ComputedParticipants != 3 {
		t.Errorf("expected 3 computed participants, got %d", summary.ComputedParticipants)
	}
}

func TestAccountListShapeWithoutPopularity(t *testing.T) {
	activity := wego.Activity{
		ParticipantsCount: 2,
		CreatedBy:         wego.UserRef{ID: "u1"},
	}

	summary := Account(activity, 4)

	if summary.CreatorOccupiesSlot {
		t.Error("expected no creator slot without a popularity gap")
	}
	if summary.DisplayedPopularity != 2 {
		t.Errorf("expected displayed popularity 2, got %d", summary.DisplayedPopularity)
	}
}

func TestAccountEmptyActivity(t *testing.T) {
	summary := Account(wego.Activity{}, 0)

	if summary.DisplayedPopularity != 0 || summary.ComputedParticipants != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.IsFull || summary.JoinBlockedForNonCreator {
		t.Error("expected no gating without a participant limit")
	}
}

func TestAccountIsPure(t *testing.T) {
	activity := wego.Activity{
		Participants: []wego.Participant{participant("u1"), participant("u2")},
		CreatedBy:    wego.UserRef{ID: "u3"},
		Popularity:   omit.New(2),
	}

	first := Account(activity, 5)
	second := Account(activity, 5)

	if first != second {
		t.Errorf("expected identical summaries, got %+v and %+v", first, second)
	}
}
