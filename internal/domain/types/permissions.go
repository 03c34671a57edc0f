package types

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dropDatabas3/botmanage/internal/discord"
)

// Permission es una capacidad enumerada de la aplicación.
type Permission string

const (
	PermissionConfigView Permission = "config_view"
	PermissionConfigEdit Permission = "config_edit"
)

// IsValid retorna true si la capacidad es conocida.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionConfigView, PermissionConfigEdit:
		return true
	}
	return false
}

// PermissionSet es un conjunto de Permission con unión y membership.
// La unión es monotónica: nunca quita grants.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has verifica membership.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Add agrega una capacidad al set.
func (s PermissionSet) Add(p Permission) { s[p] = struct{}{} }

// Union agrega todos los grants de other a s.
func (s PermissionSet) Union(other PermissionSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// MarshalJSON serializa como array ordenado para salida estable.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return json.Marshal(out)
}

func (s *PermissionSet) UnmarshalJSON(b []byte) error {
	var raw []Permission
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set := make(PermissionSet, len(raw))
	for _, p := range raw {
		if !p.IsValid() {
			return fmt.Errorf("types: unknown permission %q", p)
		}
		set[p] = struct{}{}
	}
	*s = set
	return nil
}

// Tabla fija de traducción: bits nativos de Discord → capacidades.
// ADMINISTRATOR y MANAGE_GUILD otorgan ambas capacidades de config.
var discordGrants = []struct {
	bit   discord.PermBits
	perms []Permission
}{
	{discord.PermAdministrator, []Permission{PermissionConfigView, PermissionConfigEdit}},
	{discord.PermManageGuild, []Permission{PermissionConfigView, PermissionConfigEdit}},
}

// FromBitfield traduce un bitfield de rol a un PermissionSet.
func FromBitfield(bits discord.PermBits) PermissionSet {
	s := NewPermissionSet()
	for _, g := range discordGrants {
		if bits.Has(g.bit) {
			for _, p := range g.perms {
				s.Add(p)
			}
		}
	}
	return s
}

// FromDiscordRoles computa el set efectivo de un member: la unión,
// sobre cada rol que el member tiene y que existe en la lista de roles
// del guild, del set traducido de ese rol.
func FromDiscordRoles(guildRoles []discord.Role, memberRoles []discord.ID) PermissionSet {
	byID := make(map[discord.ID]discord.Role, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}

	effective := NewPermissionSet()
	for _, id := range memberRoles {
		role, ok := byID[id]
		if !ok {
			continue
		}
		effective.Union(FromBitfield(role.Permissions))
	}
	return effective
}
