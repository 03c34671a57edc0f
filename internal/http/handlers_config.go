package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/botmanage/internal/app"
	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/domain/types"
	"github.com/dropDatabas3/botmanage/internal/observability/logger"
)

// ConfigHandlers expone los endpoints de configuración por guild.
type ConfigHandlers struct {
	State *app.State
}

// GetConfig maneja GET /api/config/{id}.
// Orden: parse del ID → carga (404 si no existe) → permiso ConfigView.
// Denegación de permiso y token inválido responden el mismo 401.
func (h *ConfigHandlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, ErrUnauthorized)
		return
	}

	id, err := discord.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, ErrParse.WithDetail("id inválido"))
		return
	}

	cfg, err := h.State.GetConfig(r.Context(), id)
	if err != nil {
		WriteError(w, r, ErrStore.WithCause(err))
		return
	}
	if cfg == nil {
		WriteError(w, r, ErrNotFound)
		return
	}

	allowed, err := h.State.CheckPermission(r.Context(), cfg, user, types.PermissionConfigView)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}
	if !allowed {
		WriteError(w, r, ErrUnauthorized)
		return
	}

	WriteJSON(w, http.StatusOK, cfg)
}

// PostConfig maneja POST /api/config/{id}.
// El mismatch path/body se rechaza ANTES de cualquier chequeo de
// permiso o escritura.
func (h *ConfigHandlers) PostConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		WriteError(w, r, ErrUnauthorized)
		return
	}

	id, err := discord.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, ErrParse.WithDetail("id inválido"))
		return
	}

	var cfg types.Config
	if !ReadJSON(w, r, &cfg) {
		return
	}

	if cfg.ID != id {
		WriteError(w, r, ErrBadRequest.WithDetail("el id del body no coincide con el del path"))
		return
	}

	allowed, err := h.State.CheckPermission(r.Context(), &cfg, user, types.PermissionConfigEdit)
	if err != nil {
		WriteError(w, r, ErrUpstream.WithCause(err))
		return
	}
	if !allowed {
		WriteError(w, r, ErrUnauthorized)
		return
	}

	if err := h.State.UpdateConfig(r.Context(), id, &cfg); err != nil {
		WriteError(w, r, ErrStore.WithCause(err))
		return
	}

	logger.From(r.Context()).Info("config updated",
		logger.GuildID(id.String()), logger.UserID(user.UserID.String()))

	WriteJSON(w, http.StatusOK, &cfg)
}
