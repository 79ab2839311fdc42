package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/wego-social/wego-tools/server/database"
)

const MaxLoginFlowDuration = 30 * time.Minute

type loginState struct {
	RedirectURL string
	CreatedAt   time.Time
}

func (s loginState) IsExpired() bool {
	return time.Since(s.CreatedAt) > MaxLoginFlowDuration
}

func New(cfg Config, db *database.Database) *Auth {
	a := &Auth{
		cfg: cfg,
		db:  db,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.PublicURL + "/login/callback",
			Scopes:      []string{"identify"},
		},
		states: make(map[string]loginState),
	}

	go a.cleanupStates()

	return a
}

// Auth runs the oauth2 authorization-code flow against the WeGo identity
// provider and backs the resulting sessions with the database.
type Auth struct {
	cfg       Config
	db        *database.Database
	oauth2Cfg *oauth2.Config
	states    map[string]loginState
	statesMu  sync.Mutex
}

func (a *Auth) Config() *oauth2.Config {
	return a.oauth2Cfg
}

func (a *Auth) NewState(redirectURL string) string {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	state := RandomStr(32)
	a.states[state] = loginState{
		RedirectURL: redirectURL,
		CreatedAt:   time.Now(),
	}
	return state
}

func (a *Auth) GetState(state string) (string, bool) {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	lState, ok := a.states[state]
	if ok {
		delete(a.states, state)
	}

	if lState.IsExpired() {
		return "", false
	}

	return lState.RedirectURL, ok
}

// UserInfo is the identity provider's profile response.
type UserInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`
}

// FetchUserInfo loads the profile of the user the token belongs to.
func (a *Auth) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := a.oauth2Cfg.Client(ctx, token)

	rs, err := client.Get(a.cfg.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status: %s", rs.Status)
	}

	var info UserInfo
	if err = json.NewDecoder(rs.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// IsModerator reports whether the user id is in the configured moderator
// list.
func (a *Auth) IsModerator(userID string) bool {
	return slices.Contains(a.cfg.Moderators, userID)
}

func (a *Auth) cleanupStates() {
	for {
		a.doCleanupStates()
		time.Sleep(10 * time.Minute)
	}
}

func (a *Auth) doCleanupStates() {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	for state, lState := range a.states {
		if lState.IsExpired() {
			delete(a.states, state)
		}
	}
}
