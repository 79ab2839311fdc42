package auth

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/wego-social/wego-tools/server/database"
)

const SessionCookieName = "wego_session"

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890")

type sessionKey struct{}

var sessionContextKey = &sessionKey{}

func SetSession(ctx context.Context, session database.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func GetSession(r *http.Request) (database.Session, bool) {
	session, ok := r.Context().Value(sessionContextKey).(database.Session)
	return session, ok
}

func RandomStr(length int) string {
	b := make([]rune, length)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// Middleware attaches the request's session to the context when the session
// cookie resolves to a live session. Requests without a valid session pass
// through untouched; handlers that require identity check for themselves.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		session, err := a.db.GetSession(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, database.ErrSessionExpired) {
				http.SetCookie(w, &http.Cookie{
					Name:   SessionCookieName,
					MaxAge: -1,
					Path:   "/",
				})
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetSession(r.Context(), *session)))
	})
}

// NewSession creates a database session for the authenticated user.
func (a *Auth) NewSession(ctx context.Context, info UserInfo, accessToken string, refreshToken string, expiresAt time.Time) (*database.Session, error) {
	session := database.Session{
		ID:           RandomStr(64),
		UserID:       info.ID,
		UserName:     info.Name,
		AvatarURL:    info.AvatarURL,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    time.Now(),
		ExpiresAt:    expiresAt,
	}

	if err := a.db.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &session, nil
}
