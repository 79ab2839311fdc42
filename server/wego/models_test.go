package wego

import (
	"encoding/json"
	"testing"
)

func TestActivityUnmarshalParticipantShapes(t *testing.T) {
	// The three participant shapes the API is known to return, mixed in one
	// payload: bare id, {"user": id} and {"user": {"_id": ...}}.
	payload := `{
		"_id": "a1",
		"title": "Bouldering",
		"maxParticipants": 4,
		"participants": [
			"u1",
			{"user": "u2"},
			{"user": {"_id": "u3", "name": "Carol"}, "role": "member"}
		],
		"createdBy": {"_id": "u9", "name": "Dave"}
	}`

	var activity Activity
	if err := json.Unmarshal([]byte(payload), &activity); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if activity.ID != "a1" {
		t.Errorf("expected id a1, got %q", activity.ID)
	}
	if !activity.HasParticipants() {
		t.Fatal("expected participants array to be present")
	}
	want := []string{"u1", "u2", "u3"}
	for i, id := range want {
		if activity.Participants[i].User.ID != id {
			t.Errorf("participant %d: expected %q, got %q", i, id, activity.Participants[i].User.ID)
		}
	}
	if activity.Participants[2].User.Name != "Carol" {
		t.Errorf("expected populated participant name, got %q", activity.Participants[2].User.Name)
	}
	if activity.CreatedBy.ID != "u9" {
		t.Errorf("expected creator u9, got %q", activity.CreatedBy.ID)
	}
}

func TestActivityUnmarshalMissingParticipants(t *testing.T) {
	payload := `{"id": "a1", "participantsCount": 3, "popularity": 4}`

	var activity Activity
	if err := json.Unmarshal([]byte(payload), &activity); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if activity.HasParticipants() {
		t.Error("expected absent participants array")
	}
	if activity.ParticipantsCount != 3 {
		t.Errorf("expected participantsCount 3, got %d", activity.ParticipantsCount)
	}
	if !activity.Popularity.OK || activity.Popularity.Value != 4 {
		t.Errorf("expected popularity 4, got %+v", activity.Popularity)
	}
}

func TestActivityUnmarshalEmptyParticipants(t *testing.T) {
	payload := `{"id": "a1", "participants": []}`

	var activity Activity
	if err := json.Unmarshal([]byte(payload), &activity); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !activity.HasParticipants() {
		t.Error("expected an empty participants array to count as present")
	}
	if activity.Popularity.OK {
		t.Error("expected absent popularity to stay unset")
	}
}

func TestActivityUnmarshalChatReference(t *testing.T) {
	for name, payload := range map[string]string{
		"bare id":   `{"id": "a1", "chat": "c1"}`,
		"populated": `{"id": "a1", "chat": {"_id": "c1", "type": "group"}}`,
	} {
		var activity Activity
		if err := json.Unmarshal([]byte(payload), &activity); err != nil {
			t.Fatalf("%s: unexpected error: %s", name, err)
		}
		if activity.Chat.ID != "c1" {
			t.Errorf("%s: expected chat c1, got %q", name, activity.Chat.ID)
		}
	}
}

func TestLocationUnmarshalShapes(t *testing.T) {
	var fromString Location
	if err := json.Unmarshal([]byte(`"Berlin"`), &fromString); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if fromString.Address != "Berlin" {
		t.Errorf("expected address Berlin, got %q", fromString.Address)
	}

	var fromObject Location
	if err := json.Unmarshal([]byte(`{"address": "Berlin", "coordinates": [13.4, 52.5]}`), &fromObject); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if fromObject.Address != "Berlin" || len(fromObject.Coordinates) != 2 {
		t.Errorf("unexpected location: %+v", fromObject)
	}
}

func TestGroupInfoRelatedActivityFallback(t *testing.T) {
	var legacy GroupInfo
	if err := json.Unmarshal([]byte(`{"relatedActivityDetails": {"_id": "a1"}}`), &legacy); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if legacy.RelatedActivity.ID != "a1" {
		t.Errorf("expected related activity a1 from legacy field, got %q", legacy.RelatedActivity.ID)
	}

	var both GroupInfo
	if err := json.Unmarshal([]byte(`{"relatedActivity": "a1", "relatedActivityDetails": "a2"}`), &both); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if both.RelatedActivity.ID != "a1" {
		t.Errorf("expected plain reference to win, got %q", both.RelatedActivity.ID)
	}
}

func TestChatUnmarshalNullParticipantUser(t *testing.T) {
	payload := `{
		"_id": "c1",
		"type": "group",
		"participants": [{"user": null, "role": "member"}, {"user": "u1", "role": "admin"}]
	}`

	var chat Chat
	if err := json.Unmarshal([]byte(payload), &chat); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if chat.Participants[0].User.ID != "" {
		t.Errorf("expected empty user for null participant, got %q", chat.Participants[0].User.ID)
	}
	if chat.Participants[1].User.ID != "u1" {
		t.Errorf("expected u1, got %q", chat.Participants[1].User.ID)
	}
}
