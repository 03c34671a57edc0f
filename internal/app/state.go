// Package app contiene el estado compartido del servicio y las
// lecturas cache-aside sobre store y API de Discord.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropDatabas3/botmanage/internal/cache"
	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/domain/types"
	"github.com/dropDatabas3/botmanage/internal/observability/logger"
	"github.com/dropDatabas3/botmanage/internal/store"
)

// configTTL es el TTL de las Config en cache. Guild y Member se
// cachean sin TTL: los desaloja el backend.
const configTTL = 60 * time.Second

// DiscordAPI son los lookups tipados que State necesita del upstream.
type DiscordAPI interface {
	Guild(ctx context.Context, id discord.ID) (*discord.Guild, error)
	Member(ctx context.Context, guildID, userID discord.ID) (*discord.Member, error)
}

// AuthenticatedUser es la identidad extraída de un session token
// válido. Solo la produce la validación del token.
type AuthenticatedUser struct {
	UserID         discord.ID
	DiscordToken   string
	DiscordRefresh string
}

// State agrupa las dependencias compartidas por los handlers. Todas
// son inyectadas; ningún componente lee estado ambiente del proceso.
type State struct {
	store store.Store
	cache cache.Client
	rest  DiscordAPI
}

func NewState(st store.Store, c cache.Client, rest DiscordAPI) *State {
	return &State{store: st, cache: c, rest: rest}
}

// GetConfig lee la Config con patrón cache-aside: cache → store →
// repoblar cache con TTL de 60s. Retorna (nil, nil) si no existe.
// Errores de store y de cache se propagan.
func (s *State) GetConfig(ctx context.Context, guildID discord.ID) (*types.Config, error) {
	key := cache.ConfigKey(guildID.String())

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cfg types.Config
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	} else if !cache.IsNotFound(err) {
		return nil, err
	}

	cfg, err := s.store.GetConfig(ctx, guildID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.cacheSet(ctx, key, cfg, configTTL); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateConfig es write-through: persiste en el store y refresca la
// entrada de cache con el mismo TTL, de modo que una lectura posterior
// en el mismo proceso observa el valor nuevo sin esperar expiración.
func (s *State) UpdateConfig(ctx context.Context, guildID discord.ID, cfg *types.Config) error {
	if err := s.store.UpdateConfig(ctx, guildID, cfg); err != nil {
		return err
	}
	return s.cacheSet(ctx, cache.ConfigKey(guildID.String()), cfg, configTTL)
}

// GetGuild lee el guild con cache-aside sin TTL. Un fallo del upstream
// es soft-fail: se loguea y se retorna (nil, nil), nunca error. El
// caller lo trata como "sin datos de roles de la plataforma".
func (s *State) GetGuild(ctx context.Context, guildID discord.ID) (*discord.Guild, error) {
	key := cache.GuildKey(guildID.String())

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var g discord.Guild
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, err
		}
		return &g, nil
	} else if !cache.IsNotFound(err) {
		return nil, err
	}

	g, err := s.rest.Guild(ctx, guildID)
	if err != nil {
		logger.From(ctx).Warn("guild fetch failed, treating as not found",
			logger.GuildID(guildID.String()), logger.Err(err))
		return nil, nil
	}

	if err := s.cacheSet(ctx, key, g, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// GetMember lee la membresía con cache-aside sin TTL. Un fallo del
// upstream es hard-fail: se propaga al caller.
func (s *State) GetMember(ctx context.Context, guildID, userID discord.ID) (*discord.Member, error) {
	key := cache.MemberKey(guildID.String(), userID.String())

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var m discord.Member
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, err
		}
		return &m, nil
	} else if !cache.IsNotFound(err) {
		return nil, err
	}

	m, err := s.rest.Member(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSet(ctx, key, m, 0); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *State) cacheSet(ctx context.Context, key cache.Key, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, string(raw), ttl)
}
