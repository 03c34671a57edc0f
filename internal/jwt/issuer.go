// Package jwt emite y valida los session tokens del servicio.
//
// El token es un JWT HS256 firmado con un secreto simétrico del
// servidor. El payload lleva las credenciales delegadas de Discord en
// claro (firmado, no cifrado): tradeoff deliberado de statelessness —
// no hay tabla de sesiones ni revocación, la validez es función pura
// de la firma y de exp.
package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Claims es el payload del session token, 1:1 con el wire format.
type Claims struct {
	// Sub es el user ID de Discord como string decimal.
	Sub string
	// DiscordToken es el access token delegado.
	DiscordToken string
	// DiscordRefresh es el refresh token delegado.
	DiscordRefresh string
	// Exp es la expiración absoluta. Siempre issuance + TTL pedido.
	Exp time.Time
}

// Issuer firma session tokens con el secreto simétrico del servidor.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue construye las claims con exp = now + ttl y firma el token.
func (i *Issuer) Issue(userID, discordToken, discordRefresh string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"sub":             userID,
		"discord_token":   discordToken,
		"discord_refresh": discordRefresh,
		"exp":             now.Add(ttl).Unix(),
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}
