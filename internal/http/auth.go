package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/botmanage/internal/app"
	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/jwt"
)

type userCtxKey struct{}

// UserFrom extrae la identidad autenticada del contexto.
// Solo está presente bajo RequireAuth.
func UserFrom(ctx context.Context) (*app.AuthenticatedUser, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*app.AuthenticatedUser)
	return u, ok
}

// RequireAuth es el gateway de autenticación: extrae el bearer token
// del header Authorization, lo valida contra el issuer y deja la
// identidad en el contexto. Cualquier fallo (header ausente, esquema
// incorrecto, firma inválida, expirado, sub malformado) responde el
// MISMO 401 genérico: la etapa que falló nunca se expone.
func RequireAuth(issuer *jwt.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(issuer, r)
			if err != nil {
				WriteError(w, r, ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(issuer *jwt.Issuer, r *http.Request) (*app.AuthenticatedUser, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrUnauthorized
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrUnauthorized
	}

	claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, err
	}

	userID, err := discord.ParseID(claims.Sub)
	if err != nil {
		return nil, err
	}

	return &app.AuthenticatedUser{
		UserID:         userID,
		DiscordToken:   claims.DiscordToken,
		DiscordRefresh: claims.DiscordRefresh,
	}, nil
}
