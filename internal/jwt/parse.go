package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken cubre firma inválida, token expirado y claims
// malformadas. No se distingue la causa: el caller externo recibe
// siempre el mismo error genérico.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Parse valida firma (HS256) y exp, y devuelve las claims tipadas.
// Cualquier fallo colapsa en ErrInvalidToken.
func (i *Issuer) Parse(token string) (*Claims, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		return i.secret, nil
	}

	tok, err := jwtv5.Parse(token, keyfunc, jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	access, _ := mc["discord_token"].(string)
	refresh, _ := mc["discord_refresh"].(string)
	expf, okExp := mc["exp"].(float64)
	if sub == "" || !okExp {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Sub:            sub,
		DiscordToken:   access,
		DiscordRefresh: refresh,
		Exp:            time.Unix(int64(expf), 0),
	}, nil
}
