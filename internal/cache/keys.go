package cache

import "strings"

// kind enumera los namespaces de entidad del cache. Codificar el kind
// como primer segmento elimina colisiones entre kinds: una key de
// config nunca puede igualar una de guild o member.
type kind string

const (
	kindConfig kind = "config"
	kindGuild  kind = "guild"
	kindMember kind = "member"
)

// Key identifica una entrada de cache: kind de entidad + identificadores.
// Se construye solo vía los constructores de abajo.
type Key struct {
	kind kind
	ids  []string
}

// String codifica la key de forma determinística: "<kind>:<id>[:<id>]".
func (k Key) String() string {
	return string(k.kind) + ":" + strings.Join(k.ids, ":")
}

// ConfigKey es la key de la Config de un guild.
func ConfigKey(guildID string) Key {
	return Key{kind: kindConfig, ids: []string{guildID}}
}

// GuildKey es la key de los datos del guild (roles).
func GuildKey(guildID string) Key {
	return Key{kind: kindGuild, ids: []string{guildID}}
}

// MemberKey es la key de la membresía de un usuario en un guild.
func MemberKey(guildID, userID string) Key {
	return Key{kind: kindMember, ids: []string{guildID, userID}}
}
