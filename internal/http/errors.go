package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/botmanage/internal/observability/logger"
)

// AppError define la estructura estándar de errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail agrega detalle; devuelve una COPIA para no mutar las vars base.
func (e *AppError) WithDetail(detail string) *AppError {
	out := *e
	out.Detail = detail
	return &out
}

// WithCause agrega la causa original; devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	out := *e
	out.Err = err
	return &out
}

// Taxonomía de errores. AuthError cubre token ausente/malformado/
// expirado/firma inválida Y denegación de permiso: externamente son
// indistinguibles a propósito, para no filtrar existencia de cuentas
// ni de permisos.
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud es inválida.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrParse = &AppError{
		Code:       "PARSE_ERROR",
		Message:    "Identificador o entrada malformada.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUpstream = &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    "Fallo del servicio upstream.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrStore = &AppError{
		Code:       "STORE_ERROR",
		Message:    "Fallo de persistencia.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrCache = &AppError{
		Code:       "CACHE_ERROR",
		Message:    "Fallo del backend de cache.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL",
		Message:    "Error interno.",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// FromError convierte errores de capas inferiores a la taxonomía.
// Un error desconocido colapsa en INTERNAL conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WriteError escribe la respuesta JSON del error. Los 5xx se loguean
// con la causa; el cliente nunca ve la causa original.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 {
		logger.From(r.Context()).Error("request failed",
			logger.Path(r.URL.Path), logger.Err(appErr))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr)
}
