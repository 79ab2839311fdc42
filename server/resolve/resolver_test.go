package resolve

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/wego-social/wego-tools/server/wego"
)

var errLookup = errors.New("lookup failed")

type fakeLookup struct {
	calls []string

	activities       map[string]*wego.Activity
	activitiesByChat map[string]*wego.Activity
	activityList     []wego.Activity
	activityListOK   bool
	chats            map[string]*wego.Chat
	groups           map[string]*wego.Group
}

func (f *fakeLookup) GetActivity(_ context.Context, activityID string) (*wego.Activity, error) {
	f.calls = append(f.calls, "activity:"+activityID)
	if activity, ok := f.activities[activityID]; ok {
		return activity, nil
	}
	return nil, errLookup
}

func (f *fakeLookup) GetActivityByChat(_ context.Context, chatID string) (*wego.Activity, error) {
	f.calls = append(f.calls, "activity-by-chat:"+chatID)
	if activity, ok := f.activitiesByChat[chatID]; ok {
		return activity, nil
	}
	return nil, errLookup
}

func (f *fakeLookup) GetActivities(_ context.Context) ([]wego.Activity, error) {
	f.calls = append(f.calls, "activity-list")
	if !f.activityListOK {
		return nil, errLookup
	}
	return f.activityList, nil
}

func (f *fakeLookup) GetChat(_ context.Context, chatID string) (*wego.Chat, error) {
	f.calls = append(f.calls, "chat:"+chatID)
	if chat, ok := f.chats[chatID]; ok {
		return chat, nil
	}
	return nil, errLookup
}

func (f *fakeLookup) GetGroup(_ context.Context, groupID string) (*wego.Group, error) {
	f.calls = append(f.calls, "group:"+groupID)
	if group, ok := f.groups[groupID]; ok {
		return group, nil
	}
	return nil, errLookup
}

func TestResolveDirectActivity(t *testing.T) {
	lookup := &fakeLookup{
		activities: map[string]*wego.Activity{"a1": {ID: "a1"}},
	}

	target, err := New(lookup, "a1").Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Type != TargetActivity || target.ID != "a1" {
		t.Errorf("unexpected target: %+v", target)
	}
	if target.Activity == nil {
		t.Error("expected resolved activity record to be attached")
	}

	want := []string{"activity:a1"}
	if !slices.Equal(lookup.calls, want) {
		t.Errorf("expected calls %v, got %v", want, lookup.calls)
	}
}

func TestResolveViaChatRelatedActivity(t *testing.T) {
	lookup := &fakeLookup{
		activities: map[string]*wego.Activity{"a1": {ID: "a1"}},
		chats: map[string]*wego.Chat{
			"c1": {ID: "c1", GroupInfo: wego.GroupInfo{RelatedActivity: wego.Ref{ID: "a1"}}},
		},
	}

	target, err := New(lookup, "c1").Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Type != TargetActivity || target.ID != "a1" {
		t.Errorf("unexpected target: %+v", target)
	}

	// Exactly activity lookup, chat lookup, related fetch. No list scan.
	want := []string{"activity:c1", "chat:c1", "activity:a1"}
	if !slices.Equal(lookup.calls, want) {
		t.Errorf("expected calls %v, got %v", want, lookup.calls)
	}
}

func TestResolveViaActivityListScan(t *testing.T) {
	lookup := &fakeLookup{
		chats:          map[string]*wego.Chat{"c1": {ID: "c1"}},
		activityList:   []wego.Activity{{ID: "a0"}, {ID: "a1", Chat: wego.Ref{ID: "c1"}}},
		activityListOK: true,
	}

	target, err := New(lookup, "c1").Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Type != TargetActivity || target.ID != "a1" {
		t.Errorf("unexpected target: %+v", target)
	}

	want := []string{"activity:c1", "chat:c1", "activity-by-chat:c1", "activity-list"}
	if !slices.Equal(lookup.calls, want) {
		t.Errorf("expected calls %v, got %v", want, lookup.calls)
	}
}

func TestResolveViaChatIndex(t *testing.T) {
	lookup := &fakeLookup{
		chats:            map[string]*wego.Chat{"c1": {ID: "c1"}},
		activitiesByChat: map[string]*wego.Activity{"c1": {ID: "a1"}},
	}

	target, err := New(lookup, "c1").Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Type != TargetActivity || target.ID != "a1" {
		t.Errorf("unexpected target: %+v", target)
	}

	// The chat index answers before the list scan is ever needed.
	want := []string{"activity:c1", "chat:c1", "activity-by-chat:c1"}
	if !slices.Equal(lookup.calls, want) {
		t.Errorf("expected calls %v, got %v", want, lookup.calls)
	}
}

func TestResolveGroupFallback(t *testing.T) {
	lookup := &fakeLookup{
		groups: map[string]*wego.Group{"g1": {ID: "g1"}},
	}

	target, err := New(lookup, "g1").Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Type != TargetGroup || target.ID != "g1" {
		t.Errorf("unexpected target: %+v", target)
	}

	want := []string{"activity:g1", "chat:g1", "group:g1"}
	if !slices.Equal(lookup.calls, want) {
		t.Errorf("expected calls %v, got %v", want, lookup.calls)
	}
}

func TestResolveExhaustion(t *testing.T) {
	lookup := &fakeLookup{}

	_, err := New(lookup, "x1").Resolve(context.Background())
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolvedReportsCachedOutcome(t *testing.T) {
	lookup := &fakeLookup{
		activities: map[string]*wego.Activity{"a1": {ID: "a1"}},
	}
	resolver := New(lookup, "a1")

	if _, ok := resolver.Resolved(); ok {
		t.Error("expected no cached target before the first attempt")
	}

	if _, err := resolver.Resolve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	callsAfterResolve := len(lookup.calls)

	target, ok := resolver.Resolved()
	if !ok || target.ID != "a1" {
		t.Errorf("expected the cached target, got %+v (ok=%t)", target, ok)
	}
	if len(lookup.calls) != callsAfterResolve {
		t.Errorf("expected Resolved to stay off the network, got %v", lookup.calls)
	}

	failed := New(&fakeLookup{}, "x1")
	if _, err := failed.Resolve(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if _, ok = failed.Resolved(); ok {
		t.Error("expected no cached target after an exhausted attempt")
	}
}

func TestResolveShortCircuitsAfterSuccess(t *testing.T) {
	lookup := &fakeLookup{
		activities: map[string]*wego.Activity{"a1": {ID: "a1"}},
	}
	resolver := New(lookup, "a1")

	if _, err := resolver.Resolve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	callsAfterFirst := len(lookup.calls)

	for range 3 {
		target, err := resolver.Resolve(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if target.ID != "a1" {
			t.Errorf("unexpected target: %+v", target)
		}
	}

	if len(lookup.calls) != callsAfterFirst {
		t.Errorf("expected no further lookups after resolution, got %v", lookup.calls)
	}
}

func TestResolveShortCircuitsAfterExhaustion(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := New(lookup, "x1")

	if _, err := resolver.Resolve(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	callsAfterFirst := len(lookup.calls)

	if _, err := resolver.Resolve(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected cached ErrUnresolved, got %v", err)
	}

	if len(lookup.calls) != callsAfterFirst {
		t.Errorf("expected no further lookups after a failed attempt, got %v", lookup.calls)
	}
}

func TestResolveCancelledAttemptIsNotCached(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := New(lookup, "x1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := resolver.Resolve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	callsAfterFirst := len(lookup.calls)

	// The cancelled attempt must not burn the one-shot budget.
	if _, err := resolver.Resolve(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if len(lookup.calls) == callsAfterFirst {
		t.Error("expected the chain to run again after a cancelled attempt")
	}
}
