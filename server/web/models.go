package web

import (
	"time"

	"github.com/wego-social/wego-tools/server/participation"
	"github.com/wego-social/wego-tools/server/wego"
)

// ActivityResponse is an activity enriched with its reconciled occupancy.
type ActivityResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	Address         string    `json:"address,omitempty"`
	Date            time.Time `json:"date"`
	MaxParticipants int       `json:"maxParticipants"`
	CreatorID       string    `json:"creatorId"`
	CreatorName     string    `json:"creatorName,omitempty"`
	ChatID          string    `json:"chatId,omitempty"`
	CoverPhotoURL   string    `json:"cover,omitempty"`

	Participation ParticipationResponse `json:"participation"`
}

// ParticipationResponse exposes both sides of the occupancy split: the count
// shown to users and the stricter count that gates joining.
type ParticipationResponse struct {
	DisplayedPopularity      int  `json:"displayedPopularity"`
	ComputedParticipants     int  `json:"computedParticipants"`
	CreatorOccupiesSlot      bool `json:"creatorOccupiesSlot"`
	IsFull                   bool `json:"isFull"`
	JoinBlockedForNonCreator bool `json:"joinBlockedForNonCreator"`
}

func newActivityResponse(activity wego.Activity) ActivityResponse {
	summary := participation.Account(activity, activity.MaxParticipants)
	return ActivityResponse{
		ID:              activity.ID,
		Title:           activity.Title,
		Description:     activity.Description,
		Tags:            activity.Tags,
		Address:         activity.Location.Address,
		Date:            activity.Date,
		MaxParticipants: activity.MaxParticipants,
		CreatorID:       activity.CreatedBy.ID,
		CreatorName:     activity.CreatedBy.Name,
		ChatID:          activity.Chat.ID,
		CoverPhotoURL:   activity.CoverPhotoURL,
		Participation: ParticipationResponse{
			DisplayedPopularity:      summary.DisplayedPopularity,
			ComputedParticipants:     summary.ComputedParticipants,
			CreatorOccupiesSlot:      summary.CreatorOccupiesSlot,
			IsFull:                   summary.IsFull,
			JoinBlockedForNonCreator: summary.JoinBlockedForNonCreator,
		},
	}
}

// TargetResponse is the outcome of resolving an ambiguous id.
type TargetResponse struct {
	Type     string            `json:"type"`
	ID       string            `json:"id"`
	Activity *ActivityResponse `json:"activity,omitempty"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newReviewResponse(review wego.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		UserID:    review.User.ID,
		UserName:  review.User.Name,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

type ReportResponse struct {
	ID            int       `json:"id"`
	ActivityID    string    `json:"activityId"`
	ActivityTitle string    `json:"activityTitle,omitempty"`
	ReporterID    string    `json:"reporterId"`
	Reason        string    `json:"reason"`
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
