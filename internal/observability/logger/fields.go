package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar — HTTP

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Campos estándar — negocio

// GuildID crea un campo para el ID del guild.
func GuildID(v string) zap.Field { return zap.String("guild_id", v) }

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Permission crea un campo para la capacidad evaluada.
func Permission(v string) zap.Field { return zap.String("permission", v) }

// Campos estándar — sistema

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// CacheKey crea un campo para una clave de cache.
func CacheKey(v string) zap.Field { return zap.String("cache_key", v) }
