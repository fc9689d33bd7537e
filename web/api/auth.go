// Package api holds the JSON handlers of the auth service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"itlalogin/models"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// Context keys set by the JWT middleware.
const (
	CtxUsuarioID     = "usuario_id"
	CtxAuthenticated = "authenticated"
)

const msgInvalidBody = "Cuerpo de la solicitud inválido"

// TokenData is returned by a successful login.
type TokenData struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Profile is returned by the verify endpoint.
type Profile struct {
	UsuarioID int64  `json:"usuarioId"`
	Nombre    string `json:"nombre"`
	Correo    string `json:"correo"`
}

// AuthHandler serves the /internal/auth endpoints.
type AuthHandler struct {
	db     *models.DB
	tokens *models.TokenIssuer
}

// NewAuthHandler binds the handlers to a store and a token issuer.
func NewAuthHandler(db *models.DB, tokens *models.TokenIssuer) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// Registrar creates an account.
// POST /internal/auth/registrar
//
// Request body:
//
//	{ "nombre": "Ana", "correo": "ana@itla.edu.do", "clave": "..." }
//
// Success (201):
//
//	{ "data": 7 }
//
// Errors:
//   - 400: correo already registered
//   - 422: malformed body or field out of bounds
func (h *AuthHandler) Registrar(ctx rweb.Context) error {
	var input models.RegistrarInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return WriteDetail(ctx, http.StatusUnprocessableEntity, msgInvalidBody)
	}

	logger.Debug("Registering usuario", "correo", input.Correo)

	u, err := h.db.CreateUsuario(input)
	if err != nil {
		var inErr *models.InputError
		switch {
		case errors.As(err, &inErr):
			return WriteDetail(ctx, http.StatusUnprocessableEntity, inErr.Error())
		case err == models.ErrCorreoTaken:
			return WriteDetail(ctx, http.StatusBadRequest, "El correo ya se encuentra registrado")
		}
		logger.LogErr(serr.Wrap(err, "failed to register usuario"), "correo", input.Correo)
		return WriteDetail(ctx, http.StatusInternalServerError, "No se pudo registrar el usuario")
	}

	return writeData(ctx, http.StatusCreated, u.ID)
}

// Login exchanges credentials for an access token.
// POST /internal/auth/login
//
// Request body:
//
//	{ "correo": "ana@itla.edu.do", "clave": "..." }
//
// Success (200):
//
//	{ "data": { "accessToken": "...", "tokenType": "bearer" } }
//
// Errors:
//   - 400: unknown correo, or wrong clave
//   - 422: malformed body
func (h *AuthHandler) Login(ctx rweb.Context) error {
	var input models.LoginInput
	if err := json.Unmarshal(ctx.Request().Body(), &input); err != nil {
		return WriteDetail(ctx, http.StatusUnprocessableEntity, msgInvalidBody)
	}

	u, err := h.db.Authenticate(input)
	if err != nil {
		var inErr *models.InputError
		switch {
		case errors.As(err, &inErr):
			return WriteDetail(ctx, http.StatusUnprocessableEntity, inErr.Error())
		case err == models.ErrUsuarioNotFound:
			return WriteDetail(ctx, http.StatusBadRequest, "No existe un usuario con ese correo")
		case err == models.ErrInvalidCredentials:
			return WriteDetail(ctx, http.StatusBadRequest, "Credenciales inválidas")
		}
		logger.LogErr(serr.Wrap(err, "authentication error"), "correo", input.Correo)
		return WriteDetail(ctx, http.StatusInternalServerError, "Error de autenticación")
	}

	token, err := h.tokens.Generate(u)
	if err != nil {
		logger.LogErr(err, "failed to generate token", "usuario_id", strconv.FormatInt(u.ID, 10))
		return WriteDetail(ctx, http.StatusInternalServerError, "No se pudo generar el token")
	}

	return writeData(ctx, http.StatusOK, TokenData{AccessToken: token, TokenType: models.TokenType})
}

// Verify reports who the bearer token belongs to.
// GET /internal/auth/verify
//
// Headers required:
//
//	Authorization: bearer <jwt>
//
// Success (200):
//
//	{ "data": { "usuarioId": 7, "nombre": "Ana", "correo": "ana@itla.edu.do" } }
//
// Errors:
//   - 401: no valid token, or the usuario no longer exists
func (h *AuthHandler) Verify(ctx rweb.Context) error {
	id, ok := CurrentUsuarioID(ctx)
	if !ok {
		return WriteDetail(ctx, http.StatusUnauthorized, "No autenticado")
	}

	u, err := h.db.UsuarioByID(id)
	if err != nil {
		logger.LogErr(err, "failed to load usuario", "usuario_id", strconv.FormatInt(id, 10))
		return WriteDetail(ctx, http.StatusInternalServerError, "Error de autenticación")
	}
	if u == nil {
		return WriteDetail(ctx, http.StatusUnauthorized, "No autenticado")
	}

	return writeData(ctx, http.StatusOK, Profile{UsuarioID: u.ID, Nombre: u.Nombre, Correo: u.Correo})
}

// CurrentUsuarioID returns the id the JWT middleware attached to the request.
func CurrentUsuarioID(ctx rweb.Context) (int64, bool) {
	if authed, _ := ctx.Get(CtxAuthenticated).(bool); !authed {
		return 0, false
	}
	id, ok := ctx.Get(CtxUsuarioID).(int64)
	return id, ok
}
