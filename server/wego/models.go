package wego

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wego-social/wego-tools/internal/omit"
)

// The WeGo API is backed by Mongo and its response shapes are not uniform:
// references come back either as bare id strings or as populated documents,
// ids are sometimes "_id" and sometimes "id", and list endpoints omit the
// participants array entirely. The types below normalize all of that at the
// decoding boundary so the rest of the codebase only ever sees one shape.

type idAlias struct {
	ID      string `json:"id"`
	MongoID string `json:"_id"`
}

func (a idAlias) id() string {
	if a.MongoID != "" {
		return a.MongoID
	}
	return a.ID
}

// UserRef is a user reference that may arrive as a bare id string or as a
// populated user document.
type UserRef struct {
	ID        string
	Name      string
	AvatarURL string
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = UserRef{}
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &u.ID)
	}

	var raw struct {
		idAlias
		Name      string `json:"name"`
		Username  string `json:"username"`
		AvatarURL string `json:"avatar"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode user reference: %w", err)
	}
	u.ID = raw.id()
	u.Name = raw.Name
	if u.Name == "" {
		u.Name = raw.Username
	}
	u.AvatarURL = raw.AvatarURL
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.ID)
}

// Participant is one entry of an activity's participants array. Entries come
// back as bare user id strings, as {"user": "<id>"} or as
// {"user": {"_id": ...}} depending on the endpoint.
type Participant struct {
	User     UserRef
	Role     string
	JoinedAt time.Time
}

func (p *Participant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.User.ID)
	}

	var raw struct {
		User     UserRef   `json:"user"`
		Role     string    `json:"role"`
		JoinedAt time.Time `json:"joinedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode participant: %w", err)
	}
	p.User = raw.User
	p.Role = raw.Role
	p.JoinedAt = raw.JoinedAt
	return nil
}

// Ref is a generic id-or-populated-document reference (chats, groups).
type Ref struct {
	ID string
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.ID = ""
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var raw idAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode reference: %w", err)
	}
	r.ID = raw.id()
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Location is either a plain address string or {address, coordinates}.
type Location struct {
	Address     string    `json:"address"`
	Coordinates []float64 `json:"coordinates"`
}

func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.Address)
	}

	type location Location
	var raw location
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode location: %w", err)
	}
	*l = Location(raw)
	return nil
}

type Activity struct {
	ID          string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Location    Location  `json:"location"`
	Date        time.Time `json:"date"`

	MaxParticipants int `json:"maxParticipants"`

	// Participants is nil when the payload omitted the array entirely, and
	// non-nil (possibly empty) when the array was present. Accounting relies
	// on that distinction.
	Participants      []Participant `json:"participants"`
	ParticipantsCount int           `json:"participantsCount"`

	CreatedBy     UserRef        `json:"createdBy"`
	Popularity    omit.Omit[int] `json:"popularity,omitzero"`
	Chat          Ref            `json:"chat"`
	CoverPhotoURL string         `json:"cover"`
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	type activity Activity
	var raw struct {
		idAlias
		activity
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Activity(raw.activity)
	a.ID = raw.id()
	return nil
}

// HasParticipants reports whether the payload carried an explicit
// participants array.
func (a Activity) HasParticipants() bool {
	return a.Participants != nil
}

type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

type ChatParticipant struct {
	User UserRef `json:"user"`
	Role string  `json:"role"`
}

type GroupInfo struct {
	Name            string
	RelatedActivity Ref
}

func (g *GroupInfo) UnmarshalJSON(data []byte) error {
	// Older API builds populate relatedActivityDetails instead of
	// relatedActivity; accept either, preferring the plain reference.
	var raw struct {
		Name                   string `json:"name"`
		RelatedActivity        Ref    `json:"relatedActivity"`
		RelatedActivityDetails Ref    `json:"relatedActivityDetails"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode group info: %w", err)
	}
	g.Name = raw.Name
	g.RelatedActivity = raw.RelatedActivity
	if g.RelatedActivity.ID == "" {
		g.RelatedActivity = raw.RelatedActivityDetails
	}
	return nil
}

type Chat struct {
	ID           string            `json:"-"`
	Type         ChatType          `json:"type"`
	Participants []ChatParticipant `json:"participants"`
	GroupInfo    GroupInfo         `json:"groupInfo"`
}

func (c *Chat) UnmarshalJSON(data []byte) error {
	type chat Chat
	var raw struct {
		idAlias
		chat
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Chat(raw.chat)
	c.ID = raw.id()
	return nil
}

type Group struct {
	ID          string  `json:"-"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CreatedBy   UserRef `json:"createdBy"`
}

func (g *Group) UnmarshalJSON(data []byte) error {
	type group Group
	var raw struct {
		idAlias
		group
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = Group(raw.group)
	g.ID = raw.id()
	return nil
}

type Review struct {
	ID        string    `json:"-"`
	User      UserRef   `json:"user"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) UnmarshalJSON(data []byte) error {
	type review Review
	var raw struct {
		idAlias
		review
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Review(raw.review)
	r.ID = raw.id()
	return nil
}

type ReviewCreate struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReportCreate struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

type HasReported struct {
	HasReported bool `json:"hasReported"`
}
