package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/jwt"
	"github.com/dropDatabas3/botmanage/internal/observability/logger"
)

// OAuthAPI son las operaciones del upstream que usa el flujo OAuth.
type OAuthAPI interface {
	ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error)
	RefreshCredentials(ctx context.Context, refreshToken string) (*discord.TokenResponse, error)
	Self(ctx context.Context, accessToken string) (*discord.User, error)
}

// OAuthHandlers implementa el intercambio de code y el refresh de la
// sesión. El servicio es stateless: el token viejo sigue siendo válido
// hasta su exp; no hay tabla de sesiones ni revocación.
type OAuthHandlers struct {
	Rest   OAuthAPI
	Issuer *jwt.Issuer
}

type authResponse struct {
	Token string `json:"token"`
}

// Discord maneja GET /oauth/discord?code=...: canjea el code, resuelve
// la identidad y emite un session token cuyo TTL es el expires_in de
// la credencial delegada.
func (h *OAuthHandlers) Discord(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		WriteError(w, r, ErrBadRequest.WithDetail("falta el parámetro code"))
		return
	}

	tr, err := h.Rest.ExchangeCode(r.Context(), code)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}

	me, err := h.Rest.Self(r.Context(), tr.AccessToken)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}

	token, err := h.Issuer.Issue(me.ID.String(), tr.AccessToken, tr.RefreshToken,
		time.Duration(tr.ExpiresIn)*time.Second)
	if err != nil {
		WriteError(w, r, ErrInternal.WithCause(err))
		return
	}

	logger.From(r.Context()).Info("session issued", logger.UserID(me.ID.String()))

	WriteJSON(w, http.StatusOK, authResponse{Token: token})
}

// Refresh maneja GET /oauth/refresh: con un bearer válido, usa la
// credencial de refresh embebida para obtener credenciales nuevas y
// emite un token nuevo.
func (h *OAuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, ErrUnauthorized)
		return
	}

	tr, err := h.Rest.RefreshCredentials(r.Context(), user.DiscordRefresh)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}

	me, err := h.Rest.Self(r.Context(), tr.AccessToken)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}

	token, err := h.Issuer.Issue(me.ID.String(), tr.AccessToken, tr.RefreshToken,
		time.Duration(tr.ExpiresIn)*time.Second)
	if err != nil {
		WriteError(w, r, ErrInternal.WithCause(err))
		return
	}

	logger.From(r.Context()).Info("session refreshed", logger.UserID(me.ID.String()))

	WriteJSON(w, http.StatusOK, authResponse{Token: token})
}
