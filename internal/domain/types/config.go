// Package types define tipos de dominio compartidos entre paquetes.
package types

import (
	"github.com/dropDatabas3/botmanage/internal/discord"
)

// Config es la configuración por guild del bot. Clave primaria: ID del
// guild, inmutable una vez creada. Solo se muta vía Store.UpdateConfig.
type Config struct {
	ID discord.ID `json:"id"`

	// InheritDiscordPerms habilita la fuente de autoridad nativa de la
	// plataforma (roles del guild) además de los permission groups.
	InheritDiscordPerms bool `json:"inherit_discord_perms"`

	// PermissionGroups es opcional; nil significa "sin grupos".
	// El orden se preserva tal como fue configurado.
	PermissionGroups []PermissionGroup `json:"permission_groups,omitempty"`
}

// PermissionGroup es un conjunto de usuarios definido por la aplicación,
// independiente de los roles de Discord, con sus permisos otorgados.
type PermissionGroup struct {
	Users       []discord.ID  `json:"users"`
	Permissions PermissionSet `json:"permissions"`
}

// HasUser verifica si el usuario pertenece al grupo.
func (g PermissionGroup) HasUser(id discord.ID) bool {
	for _, u := range g.Users {
		if u == id {
			return true
		}
	}
	return false
}
