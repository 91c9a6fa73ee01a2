package routes

import (
	"errors"
	"net/http"

	"inmo-backoffice/internal/jwt"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Message    string // User-facing message
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotWhitelisted     = errors.New("email not whitelisted")
	ErrOAuthNotConfigured = errors.New("google oauth not configured")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Resource errors
	ErrContactNotFound  = errors.New("contact not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrVisitNotFound    = errors.New("visit not found")
	ErrUserNotFound     = errors.New("user not found")

	// Internal errors
	ErrInternalServer = errors.New("internal server error")
	ErrDatabaseError  = errors.New("database error")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 401 Unauthorized
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,
	jwt.ErrNonValidToken:  http.StatusUnauthorized,
	jwt.ErrInvalidNonce:   http.StatusUnauthorized,

	// 403 Forbidden
	ErrForbidden:      http.StatusForbidden,
	ErrNotWhitelisted: http.StatusForbidden,

	// 404 Not Found
	ErrContactNotFound:  http.StatusNotFound,
	ErrPropertyNotFound: http.StatusNotFound,
	ErrVisitNotFound:    http.StatusNotFound,
	ErrUserNotFound:     http.StatusNotFound,

	// 500 Internal Server Error
	ErrInternalServer: http.StatusInternalServerError,
	ErrDatabaseError:  http.StatusInternalServerError,

	// 503 Service Unavailable
	ErrOAuthNotConfigured: http.StatusServiceUnavailable,
}

// errorMessageMap maps errors to user-facing messages. The back office is a
// Spanish-language product; messages match the original UI copy.
var errorMessageMap = map[error]string{
	ErrUnauthorized:       "No autenticado",
	ErrInvalidCredentials: "Credenciales inválidas. Revisá tu correo y contraseña.",
	jwt.ErrNonValidToken:  "Sesión inválida o expirada",
	jwt.ErrInvalidNonce:   "Sesión inválida o expirada",
	ErrNotWhitelisted:     "No tenés acceso a esta plataforma. Contactá al administrador.",
	ErrForbidden:          "No tenés permisos para realizar esta acción",
	ErrOAuthNotConfigured: "El inicio de sesión con Google no está disponible",

	ErrContactNotFound:  "Cliente no encontrado",
	ErrPropertyNotFound: "Propiedad no encontrada",
	ErrVisitNotFound:    "Visita no encontrada",
	ErrUserNotFound:     "Usuario no encontrado",

	ErrInternalServer: "Ocurrió un error inesperado. Intentá de nuevo.",
	ErrDatabaseError:  "Ocurrió un error inesperado. Intentá de nuevo.",
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// GetErrorMessage returns a user-facing message for an error
func GetErrorMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	if msg, ok := errorMessageMap[err]; ok {
		return msg
	}

	for knownErr, msg := range errorMessageMap {
		if errors.Is(err, knownErr) {
			return msg
		}
	}

	// Unknown errors: generic copy for 5xx, raw message otherwise.
	if GetErrorStatus(err) >= 500 {
		return "Ocurrió un error inesperado. Intentá de nuevo."
	}
	return err.Error()
}
