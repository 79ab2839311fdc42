package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wego-social/wego-tools/server/auth"
)

const oauthStateCookieName = "oauthstate"

func (h *handler) Login(w http.ResponseWriter, r *http.Request) {
	redirect := r.URL.Query().Get("rd")
	if redirect == "" {
		redirect = "/"
	}

	state := h.Auth.NewState(redirect)

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(auth.MaxLoginFlowDuration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Auth.Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *handler) LoginCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	oauthState, _ := r.Cookie(oauthStateCookieName)
	state := query.Get("state")
	code := query.Get("code")

	if oauthState == nil || state != oauthState.Value {
		h.Error(w, r, http.StatusBadRequest, "invalid oauth state")
		return
	}

	redirectURL, ok := h.Auth.GetState(state)
	if !ok {
		h.Error(w, r, http.StatusBadRequest, "unknown or expired oauth state")
		return
	}

	token, err := h.Auth.Config().Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to exchange oauth code", slog.Any("err", err))
		h.Error(w, r, http.StatusInternalServerError, "failed to exchange oauth code")
		return
	}

	info, err := h.Auth.FetchUserInfo(ctx, token)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch user info", slog.Any("err", err))
		h.Error(w, r, http.StatusInternalServerError, "failed to fetch user info")
		return
	}

	expiresAt := time.Now().AddDate(0, 1, 0)
	session, err := h.Auth.NewSession(ctx, *info, token.AccessToken, token.RefreshToken, expiresAt)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create session", slog.Any("err", err))
		h.Error(w, r, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if session, ok := auth.GetSession(r); ok {
		if err := h.DB.DeleteSession(ctx, session.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to delete session", slog.Any("err", err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   auth.SessionCookieName,
		MaxAge: -1,
		Path:   "/",
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
