package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIBase es la base de la API v10 de Discord.
const DefaultAPIBase = "https://discord.com/api/v10"

// APIError representa una respuesta no-2xx de la API de Discord.
type APIError struct {
	Status int
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %s returned %d", e.Path, e.Status)
}

// TokenResponse es la respuesta del endpoint oauth2/token
// (tanto authorization_code como refresh_token).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Config para construir el cliente. Todos los valores vienen de la
// configuración explícita del proceso; el cliente no lee ENV.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BotToken     string
	APIBase      string // vacío => DefaultAPIBase
}

// Client es el cliente REST tipado contra la API de Discord.
// Seguro para uso concurrente (http.Client interno poolable).
type Client struct {
	cfg  Config
	base string
	http *http.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.APIBase
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		cfg:  cfg,
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path, auth string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{Status: resp.StatusCode, Path: path}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{Status: resp.StatusCode, Path: path}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ExchangeCode canjea un authorization code por credenciales delegadas.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
		"scope":         {"identify"},
	}
	var tr TokenResponse
	if err := c.postForm(ctx, "/oauth2/token", form, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// RefreshCredentials obtiene nuevas credenciales delegadas a partir
// del refresh token del usuario.
func (c *Client) RefreshCredentials(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	var tr TokenResponse
	if err := c.postForm(ctx, "/oauth2/token", form, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Self resuelve la identidad del dueño del access token delegado.
func (c *Client) Self(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/@me", "Bearer "+accessToken, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Guild obtiene el guild (con roles) usando el token del bot.
func (c *Client) Guild(ctx context.Context, id ID) (*Guild, error) {
	var g Guild
	if err := c.get(ctx, "/guilds/"+id.String(), "Bot "+c.cfg.BotToken, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Member obtiene la membresía de un usuario en un guild (token del bot).
func (c *Client) Member(ctx context.Context, guildID, userID ID) (*Member, error) {
	var m Member
	path := "/guilds/" + guildID.String() + "/members/" + userID.String()
	if err := c.get(ctx, path, "Bot "+c.cfg.BotToken, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
