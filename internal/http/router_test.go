package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/botmanage/internal/app"
	"github.com/dropDatabas3/botmanage/internal/cache"
	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/domain/types"
	httpserver "github.com/dropDatabas3/botmanage/internal/http"
	"github.com/dropDatabas3/botmanage/internal/jwt"
	"github.com/dropDatabas3/botmanage/internal/store"
)

type fakeStore struct {
	configs  map[discord.ID]*types.Config
	getCalls int
	updCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{configs: make(map[discord.ID]*types.Config)}
}

func (f *fakeStore) GetConfig(ctx context.Context, guildID discord.ID) (*types.Config, error) {
	f.getCalls++
	cfg, ok := f.configs[guildID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (f *fakeStore) UpdateConfig(ctx context.Context, guildID discord.ID, cfg *types.Config) error {
	f.updCalls++
	cp := *cfg
	f.configs[guildID] = &cp
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close()                         {}

// fakeRest cubre tanto los lookups de guild/member como el flujo OAuth.
type fakeRest struct {
	guild    *discord.Guild
	guildErr error
	member   *discord.Member

	tokenResp *discord.TokenResponse
	selfUser  *discord.User

	guildCalls    int
	memberCalls   int
	exchangeCalls int
	refreshCalls  int
}

func (f *fakeRest) Guild(ctx context.Context, id discord.ID) (*discord.Guild, error) {
	f.guildCalls++
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	if f.guild == nil {
		return nil, errors.New("no guild configured")
	}
	return f.guild, nil
}

func (f *fakeRest) Member(ctx context.Context, guildID, userID discord.ID) (*discord.Member, error) {
	f.memberCalls++
	if f.member == nil {
		return nil, errors.New("no member configured")
	}
	return f.member, nil
}

func (f *fakeRest) ExchangeCode(ctx context.Context, code string) (*discord.TokenResponse, error) {
	f.exchangeCalls++
	if f.tokenResp == nil {
		return nil, errors.New("exchange failed")
	}
	return f.tokenResp, nil
}

func (f *fakeRest) RefreshCredentials(ctx context.Context, refreshToken string) (*discord.TokenResponse, error) {
	f.refreshCalls++
	if f.tokenResp == nil {
		return nil, errors.New("refresh failed")
	}
	return f.tokenResp, nil
}

func (f *fakeRest) Self(ctx context.Context, accessToken string) (*discord.User, error) {
	if f.selfUser == nil {
		return nil, errors.New("self failed")
	}
	return f.selfUser, nil
}

type testEnv struct {
	router http.Handler
	store  *fakeStore
	rest   *fakeRest
	issuer *jwt.Issuer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	st := newFakeStore()
	rest := &fakeRest{}
	issuer := jwt.NewIssuer("test-secret")
	state := app.NewState(st, cache.NewMemory(""), rest)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		State:           state,
		Rest:            rest,
		Issuer:          issuer,
		MetricsRegistry: prometheus.NewRegistry(),
	})
	return &testEnv{router: router, store: st, rest: rest, issuer: issuer}
}

func (e *testEnv) bearer(t *testing.T, userID discord.ID) string {
	t.Helper()
	tok, err := e.issuer.Issue(userID.String(), "tokA", "refA", time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *testEnv) do(method, path, auth string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

// ---- AuthGateway ----

func TestAuth_MissingHeader(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/config/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, rec))
}

func TestAuth_WrongScheme(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/config/1", "Basic abc", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_GarbageToken(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/config/1", "Bearer garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Mismo código genérico que el header ausente: la etapa no se filtra.
	assert.Equal(t, "UNAUTHORIZED", errCode(t, rec))
}

func TestAuth_ExpiredToken(t *testing.T) {
	env := newEnv(t)
	tok, err := env.issuer.Issue("42", "a", "r", -time.Minute)
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/config/1", "Bearer "+tok, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errCode(t, rec))
}

// ---- GET /api/config/{id} ----

func TestGetConfig_MalformedID(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/config/not-a-number", env.bearer(t, 42), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARSE_ERROR", errCode(t, rec))
	// Nada downstream se tocó.
	assert.Equal(t, 0, env.store.getCalls)
}

func TestGetConfig_NotFound(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/api/config/99", env.bearer(t, 42), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConfig_PermissionDeniedIs401(t *testing.T) {
	env := newEnv(t)
	env.store.configs[7] = &types.Config{ID: 7}

	rec := env.do(http.MethodGet, "/api/config/7", env.bearer(t, 42), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Denegación de permiso y token inválido colapsan al mismo error.
	assert.Equal(t, "UNAUTHORIZED", errCode(t, rec))
}

func TestGetConfig_AllowedViaGroups(t *testing.T) {
	env := newEnv(t)
	env.store.configs[7] = &types.Config{
		ID: 7,
		PermissionGroups: []types.PermissionGroup{
			{Users: []discord.ID{42}, Permissions: types.NewPermissionSet(types.PermissionConfigView)},
		},
	}

	rec := env.do(http.MethodGet, "/api/config/7", env.bearer(t, 42), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg types.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.EqualValues(t, 7, cfg.ID)
}

// ---- POST /api/config/{id} ----

func TestPostConfig_IDMismatch(t *testing.T) {
	env := newEnv(t)
	body := `{"id":"8","inherit_discord_perms":true}`

	rec := env.do(http.MethodPost, "/api/config/7", env.bearer(t, 42), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errCode(t, rec))

	// Rechazo ANTES del chequeo de permisos y de cualquier escritura.
	assert.Equal(t, 0, env.store.updCalls)
	assert.Equal(t, 0, env.rest.guildCalls)
}

func TestPostConfig_MalformedID(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodPost, "/api/config/abc", env.bearer(t, 42), `{"id":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARSE_ERROR", errCode(t, rec))
	assert.Equal(t, 0, env.store.updCalls)
}

func TestPostConfig_WriteThrough(t *testing.T) {
	env := newEnv(t)
	body := `{"id":"7","inherit_discord_perms":false,"permission_groups":[{"users":["42"],"permissions":["config_edit","config_view"]}]}`

	rec := env.do(http.MethodPost, "/api/config/7", env.bearer(t, 42), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.store.updCalls)

	// Lectura inmediata: read-your-write.
	rec = env.do(http.MethodGet, "/api/config/7", env.bearer(t, 42), "")
	require.Equal(t, http.StatusOK, rec.Code)
	// Y salió del cache, no del store.
	assert.Equal(t, 0, env.store.getCalls)
}

func TestPostConfig_DeniedWithoutGrant(t *testing.T) {
	env := newEnv(t)
	// El usuario está en un grupo pero ninguno otorga config_edit.
	body := `{"id":"7","permission_groups":[{"users":["42"],"permissions":["config_view"]}]}`

	rec := env.do(http.MethodPost, "/api/config/7", env.bearer(t, 42), body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.store.updCalls)
}

// ---- OAuth ----

func TestOAuthDiscord_IssuesToken(t *testing.T) {
	env := newEnv(t)
	env.rest.tokenResp = &discord.TokenResponse{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 3600}
	env.rest.selfUser = &discord.User{ID: 42}

	rec := env.do(http.MethodGet, "/oauth/discord?code=the-code", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := env.issuer.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Sub)
	assert.Equal(t, "acc", claims.DiscordToken)
	assert.Equal(t, "ref", claims.DiscordRefresh)
	// TTL de la sesión acotado por el expires_in del upstream.
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Exp, 5*time.Second)
}

func TestOAuthDiscord_MissingCode(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/oauth/discord", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.rest.exchangeCalls)
}

func TestOAuthRefresh_RequiresAuth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/oauth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.rest.refreshCalls)
}

func TestOAuthRefresh_IssuesNewToken(t *testing.T) {
	env := newEnv(t)
	env.rest.tokenResp = &discord.TokenResponse{AccessToken: "acc2", RefreshToken: "ref2", ExpiresIn: 1800}
	env.rest.selfUser = &discord.User{ID: 42}

	oldBearer := env.bearer(t, 42)
	rec := env.do(http.MethodGet, "/oauth/refresh", oldBearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.rest.refreshCalls)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := env.issuer.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc2", claims.DiscordToken)
	assert.Equal(t, "ref2", claims.DiscordRefresh)

	// Statelessness: el token anterior sigue siendo válido hasta exp.
	rec = env.do(http.MethodGet, "/api/config/99", oldBearer, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- Health ----

func TestHealthz(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
