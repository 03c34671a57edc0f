// Package discord define los tipos de la API de Discord que consume el
// servicio (snowflakes, guilds, members) y el cliente REST.
package discord

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID es un snowflake de Discord: 64 bits, representado canónicamente
// como string decimal en el wire. Igualdad por valor.
type ID uint64

// ParseID parsea un snowflake desde su forma decimal.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("discord: invalid snowflake %q", s)
	}
	return ID(n), nil
}

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// MarshalJSON serializa el ID como string decimal (formato de la API).
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON acepta tanto string como número (la API usa string,
// pero toleramos número para payloads manuales).
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// PermBits es el bitfield de permisos nativos de Discord.
// La API lo serializa como string decimal.
type PermBits uint64

// Bits relevantes para este servicio. Ver la tabla de traducción
// en domain/types: solo estos otorgan capacidades de configuración.
const (
	PermAdministrator PermBits = 1 << 3
	PermManageGuild   PermBits = 1 << 5
)

// Has verifica si el bitfield contiene el bit dado.
func (p PermBits) Has(bit PermBits) bool { return p&bit == bit }

func (p PermBits) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(p), 10))
}

func (p *PermBits) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("discord: invalid permission bitfield %q", s)
	}
	*p = PermBits(n)
	return nil
}

// Role es un rol del guild con su bitfield de permisos.
type Role struct {
	ID          ID       `json:"id"`
	Permissions PermBits `json:"permissions"`
}

// Guild con la lista ordenada de roles que devuelve la API.
type Guild struct {
	ID    ID     `json:"id"`
	Roles []Role `json:"roles"`
}

// User es la identidad mínima que necesitamos de /users/@me.
type User struct {
	ID ID `json:"id"`
}

// Member es la membresía de un usuario en un guild.
// Roles contiene IDs de roles; la definición del rol vive en Guild.Roles.
type Member struct {
	User  User `json:"user"`
	Roles []ID `json:"roles"`
}
