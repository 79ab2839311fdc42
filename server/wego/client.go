package wego

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned for 404 responses from any endpoint.
	ErrNotFound = errors.New("not found")

	// ErrTooManyRequests is returned when the retry budget for a request is
	// exhausted.
	ErrTooManyRequests = errors.New("too many requests")
)

func New(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(time.Duration(cfg.Every)), cfg.Burst),
	}
}

// Client talks to the WeGo platform REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func (c *Client) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	slog.DebugContext(ctx, "Fetching activity", slog.String("activity_id", activityID))

	var activity Activity
	if err := c.get(ctx, "/activities/"+url.PathEscape(activityID), &activity); err != nil {
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}

	return &activity, nil
}

func (c *Client) GetActivities(ctx context.Context) ([]Activity, error) {
	slog.DebugContext(ctx, "Fetching all activities")

	var activities []Activity
	if err := c.get(ctx, "/activities", &activities); err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	return activities, nil
}

func (c *Client) GetActivityByChat(ctx context.Context, chatID string) (*Activity, error) {
	slog.DebugContext(ctx, "Fetching activity by chat", slog.String("chat_id", chatID))

	var activity Activity
	if err := c.get(ctx, "/activities/by-chat/"+url.PathEscape(chatID), &activity); err != nil {
		return nil, fmt.Errorf("failed to fetch activity by chat: %w", err)
	}

	return &activity, nil
}

// GetEvents returns the denormalized event list shape: no participants array,
// only participantsCount, popularity, maxParticipants and creator fields.
func (c *Client) GetEvents(ctx context.Context) ([]Activity, error) {
	slog.DebugContext(ctx, "Fetching event list")

	var events []Activity
	if err := c.get(ctx, "/events", &events); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	slog.DebugContext(ctx, "Fetching chat", slog.String("chat_id", chatID))

	var chat Chat
	if err := c.get(ctx, "/chats/"+url.PathEscape(chatID), &chat); err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}

	return &chat, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	slog.DebugContext(ctx, "Fetching group", slog.String("group_id", groupID))

	var group Group
	if err := c.get(ctx, "/groups/"+url.PathEscape(groupID), &group); err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	return &group, nil
}

func (c *Client) GetReviews(ctx context.Context, activityID string) ([]Review, error) {
	slog.DebugContext(ctx, "Fetching reviews", slog.String("activity_id", activityID))

	var reviews []Review
	if err := c.get(ctx, "/activities/"+url.PathEscape(activityID)+"/reviews", &reviews); err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, nil
}

func (c *Client) CreateReview(ctx context.Context, activityID string, review ReviewCreate) (*Review, error) {
	slog.DebugContext(ctx, "Creating review", slog.String("activity_id", activityID))

	var created Review
	if err := c.do(ctx, http.MethodPost, "/activities/"+url.PathEscape(activityID)+"/reviews", review, &created, 0); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return &created, nil
}

func (c *Client) CreateReport(ctx context.Context, activityID string, report ReportCreate) error {
	slog.DebugContext(ctx, "Creating report", slog.String("activity_id", activityID))

	if err := c.do(ctx, http.MethodPost, "/activities/"+url.PathEscape(activityID)+"/report", report, nil, 0); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

func (c *Client) HasReported(ctx context.Context, activityID string) (bool, error) {
	slog.DebugContext(ctx, "Checking report status", slog.String("activity_id", activityID))

	var reported HasReported
	if err := c.get(ctx, "/activities/"+url.PathEscape(activityID)+"/has-reported", &reported); err != nil {
		return false, fmt.Errorf("failed to check report status: %w", err)
	}

	return reported.HasReported, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	return c.do(ctx, http.MethodGet, path, nil, v, 0)
}

func (c *Client) do(ctx context.Context, method string, path string, body any, v any, try int) error {
	if try >= c.cfg.MaxRetries {
		return fmt.Errorf("request to %s failed after %d retries: %w", path, c.cfg.MaxRetries, ErrTooManyRequests)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = buf
	}

	rq, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.cfg.BaseURL, "/")+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	rq.Header.Set("Accept", "application/json")
	if body != nil {
		rq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		rq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	rs, err := c.httpClient.Do(rq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer rs.Body.Close()

	switch {
	case rs.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case rs.StatusCode == http.StatusBadGateway || rs.StatusCode == http.StatusTooManyRequests:
		// The WeGo API gateway intermittently 502s under load; back off and retry.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
		return c.do(ctx, method, path, body, v, try+1)
	case rs.StatusCode < 200 || rs.StatusCode > 299:
		data, _ := io.ReadAll(rs.Body)
		return fmt.Errorf("request failed with status code: %d, response: %s", rs.StatusCode, data)
	}

	if v == nil {
		return nil
	}

	logBuf := new(bytes.Buffer)
	bodyReader = io.TeeReader(rs.Body, logBuf)

	if err = json.NewDecoder(bodyReader).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %q: %w", logBuf.String(), err)
	}

	return nil
}
