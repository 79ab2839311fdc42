package participation

import (
	"slices"

	"github.com/wego-social/wego-tools/server/wego"
)

// Summary is the display/gating breakdown for a single activity.
//
// DisplayedPopularity and JoinBlockedForNonCreator are deliberately computed
// independently: the display number prefers the server-reported popularity
// field so badges match what other clients show, while join gating always
// uses the locally recomputed participant count so a stale or inflated
// popularity value can never block or allow joins incorrectly.
type Summary struct {
	// DisplayedPopularity is the occupancy number shown to users.
	DisplayedPopularity int
	// ComputedParticipants is the locally recomputed occupancy, including the
	// creator's implicit slot when the creator is missing from the
	// participants array.
	ComputedParticipants int
	// CreatorOccupiesSlot reports whether an implicit slot was added for the
	// creator.
	CreatorOccupiesSlot bool
	// IsFull is the display-path full indicator, derived from
	// DisplayedPopularity.
	IsFull bool
	// JoinBlockedForNonCreator gates joins, derived from
	// ComputedParticipants.
	JoinBlockedForNonCreator bool
}

// Account derives a consistent occupancy summary from an activity payload.
// The API returns participants in several shapes depending on the endpoint
// (explicit array, denormalized count, separate popularity counter) and the
// creator is not guaranteed to appear in the participants array; this
// reconciles all of them.
//
// Account is a pure function over possibly-partial data. Missing fields
// default to zero and there is no error path: this runs on the display path
// where an approximate number beats a failure.
func Account(activity wego.Activity, maxParticipants int) Summary {
	var (
		stored              int
		creatorOccupiesSlot bool
	)
	if activity.HasParticipants() {
		ids := uniqueParticipantIDs(activity.Participants)
		stored = len(ids)
		creatorOccupiesSlot = activity.CreatedBy.ID != "" && !slices.Contains(ids, activity.CreatedBy.ID)
	} else {
		// List payloads only carry a denormalized count. Infer the creator's
		// implicit slot from the gap between popularity and the count.
		stored = max(activity.ParticipantsCount, 0)
		creatorOccupiesSlot = activity.Popularity.Or(0) > stored
	}

	computed := stored
	if creatorOccupiesSlot {
		computed++
	}

	displayed := max(activity.Popularity.Or(computed), 0)

	return Summary{
		DisplayedPopularity:      displayed,
		ComputedParticipants:     computed,
		CreatorOccupiesSlot:      creatorOccupiesSlot,
		IsFull:                   maxParticipants > 0 && displayed >= maxParticipants,
		JoinBlockedForNonCreator: maxParticipants > 0 && computed >= maxParticipants,
	}
}

// uniqueParticipantIDs maps participant entries to user ids, dropping
// duplicates and entries without a resolvable user.
func uniqueParticipantIDs(participants []wego.Participant) []string {
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.User.ID == "" {
			continue
		}
		if slices.Contains(ids, p.User.ID) {
			continue
		}
		ids = append(ids, p.User.ID)
	}
	return ids
}
