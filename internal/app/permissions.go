package app

import (
	"context"

	"github.com/dropDatabas3/botmanage/internal/domain/types"
	"github.com/dropDatabas3/botmanage/internal/observability/logger"
)

// CheckPermission decide si user tiene perm sobre cfg combinando las
// dos fuentes de autoridad: roles nativos de Discord (si la config los
// hereda) y permission groups de la aplicación.
//
// Solo falla si el lookup de member falla (hard-fail); la ausencia de
// datos del guild degrada a "sin datos de roles" y sigue con grupos.
func (s *State) CheckPermission(ctx context.Context, cfg *types.Config, user *AuthenticatedUser, perm types.Permission) (bool, error) {
	log := logger.From(ctx).With(
		logger.GuildID(cfg.ID.String()),
		logger.UserID(user.UserID.String()),
	)

	if cfg.InheritDiscordPerms {
		guild, err := s.GetGuild(ctx, cfg.ID)
		if err != nil {
			return false, err
		}
		if guild != nil {
			member, err := s.GetMember(ctx, cfg.ID, user.UserID)
			if err != nil {
				return false, err
			}

			effective := types.FromDiscordRoles(guild.Roles, member.Roles)
			if effective.Has(perm) {
				log.Debug("permission granted via discord roles")
				return true, nil
			}
		}
	}

	if len(cfg.PermissionGroups) > 0 {
		// OJO: chequeo cruzado intencional — basta que ALGÚN grupo
		// contenga al usuario y que ALGÚN grupo (no necesariamente el
		// mismo) otorgue el permiso. Comportamiento heredado; no
		// "corregir" a semántica same-group sin decisión explícita.
		var inGroup, granted bool
		for _, g := range cfg.PermissionGroups {
			if g.HasUser(user.UserID) {
				inGroup = true
			}
			if g.Permissions.Has(perm) {
				granted = true
			}
		}
		if inGroup && granted {
			log.Debug("permission granted via permission groups")
			return true, nil
		}
	}

	log.Debug("permission denied", logger.Permission(string(perm)))
	return false, nil
}
