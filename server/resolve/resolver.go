package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wego-social/wego-tools/server/wego"
)

// ErrUnresolved is returned once every lookup strategy has been exhausted.
var ErrUnresolved = errors.New("target is not linked to an activity")

type TargetType string

const (
	TargetActivity TargetType = "activity"
	TargetGroup    TargetType = "group"
)

// Target is the outcome of a successful resolution.
type Target struct {
	Type TargetType
	ID   string

	// Activity is set when Type is TargetActivity, so callers do not need to
	// refetch the record they just resolved.
	Activity *wego.Activity
}

// Lookup is the subset of the WeGo client the resolver needs.
type Lookup interface {
	GetActivity(ctx context.Context, activityID string) (*wego.Activity, error)
	GetActivityByChat(ctx context.Context, chatID string) (*wego.Activity, error)
	GetActivities(ctx context.Context) ([]wego.Activity, error)
	GetChat(ctx context.Context, chatID string) (*wego.Chat, error)
	GetGroup(ctx context.Context, groupID string) (*wego.Group, error)
}

func New(lookup Lookup, targetID string) *Resolver {
	return &Resolver{
		lookup:   lookup,
		targetID: targetID,
	}
}

// Resolver maps an id of ambiguous kind (activity id, chat id, group id) to
// its authoritative record, trying progressively more expensive strategies:
//
//  1. direct activity lookup
//  2. chat lookup, following groupInfo.relatedActivity when present
//  3. chat-indexed activity lookup
//  4. full activity-list scan matching each activity's chat reference
//  5. direct group lookup (only when the id is not a chat either)
//
// A resolver is one-shot: the first completed attempt, successful or not, is
// cached and every later call returns the cached outcome without touching the
// network. Individual strategy failures are absorbed and the chain advances;
// only exhausting every strategy yields ErrUnresolved.
type Resolver struct {
	lookup   Lookup
	targetID string

	mu        sync.Mutex
	attempted bool
	target    Target
	err       error
}

// Resolved returns the cached target if a successful resolution has already
// happened.
func (r *Resolver) Resolved() (Target, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.attempted && r.err == nil
}

func (r *Resolver) Resolve(ctx context.Context) (Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.attempted {
		return r.target, r.err
	}

	target, err := r.resolve(ctx)
	if err != nil && ctx.Err() != nil {
		// A cancelled attempt is not an attempt; leave the one-shot budget
		// intact for the next caller.
		return Target{}, ctx.Err()
	}

	r.attempted = true
	r.target = target
	r.err = err

	return r.target, r.err
}

func (r *Resolver) resolve(ctx context.Context) (Target, error) {
	activity, err := r.lookup.GetActivity(ctx, r.targetID)
	if err == nil {
		return Target{Type: TargetActivity, ID: activity.ID, Activity: activity}, nil
	}
	slog.DebugContext(ctx, "Direct activity lookup failed, trying chat",
		slog.String("target_id", r.targetID), slog.Any("err", err))

	chat, err := r.lookup.GetChat(ctx, r.targetID)
	if err != nil {
		slog.DebugContext(ctx, "Chat lookup failed, trying group",
			slog.String("target_id", r.targetID), slog.Any("err", err))
		return r.resolveGroup(ctx)
	}

	if relatedID := chat.GroupInfo.RelatedActivity.ID; relatedID != "" {
		activity, err = r.lookup.GetActivity(ctx, relatedID)
		if err == nil {
			return Target{Type: TargetActivity, ID: activity.ID, Activity: activity}, nil
		}
		slog.DebugContext(ctx, "Related activity fetch failed, trying chat index",
			slog.String("target_id", r.targetID), slog.String("related_id", relatedID), slog.Any("err", err))
	}

	activity, err = r.lookup.GetActivityByChat(ctx, r.targetID)
	if err == nil {
		return Target{Type: TargetActivity, ID: activity.ID, Activity: activity}, nil
	}
	slog.DebugContext(ctx, "Chat-indexed activity lookup failed, scanning activity list",
		slog.String("target_id", r.targetID), slog.Any("err", err))

	return r.resolveByScan(ctx)
}

// resolveByScan walks the full activity list looking for the activity whose
// chat reference matches the original target id.
func (r *Resolver) resolveByScan(ctx context.Context) (Target, error) {
	activities, err := r.lookup.GetActivities(ctx)
	if err != nil {
		slog.DebugContext(ctx, "Activity list scan failed",
			slog.String("target_id", r.targetID), slog.Any("err", err))
		return Target{}, fmt.Errorf("%w: %s", ErrUnresolved, r.targetID)
	}

	for _, activity := range activities {
		if activity.Chat.ID == r.targetID {
			return Target{Type: TargetActivity, ID: activity.ID, Activity: &activity}, nil
		}
	}

	return Target{}, fmt.Errorf("%w: %s", ErrUnresolved, r.targetID)
}

func (r *Resolver) resolveGroup(ctx context.Context) (Target, error) {
	group, err := r.lookup.GetGroup(ctx, r.targetID)
	if err != nil {
		slog.DebugContext(ctx, "Group lookup failed",
			slog.String("target_id", r.targetID), slog.Any("err", err))
		return Target{}, fmt.Errorf("%w: %s", ErrUnresolved, r.targetID)
	}

	return Target{Type: TargetGroup, ID: group.ID}, nil
}
