// Package store define el contrato de persistencia para las Config
// por guild. La implementación vive en subpaquetes por driver (pg).
package store

import (
	"context"
	"errors"

	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/domain/types"
)

// ErrNotFound indica que no existe Config para el guild pedido.
var ErrNotFound = errors.New("store: not found")

// Store es el source-of-record de las Config.
type Store interface {
	// GetConfig retorna la Config del guild o ErrNotFound.
	GetConfig(ctx context.Context, guildID discord.ID) (*types.Config, error)

	// UpdateConfig persiste la Config (upsert por guild ID).
	UpdateConfig(ctx context.Context, guildID discord.ID, cfg *types.Config) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close()
}
