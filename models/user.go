package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"golang.org/x/crypto/bcrypt"

	"itlalogin/validation"
)

// EstadoActivo is the only account state the service creates.
const EstadoActivo = "ACTIVO"

// MaxFieldLength bounds every auth request field.
const MaxFieldLength = 250

// Sentinel errors returned unwrapped so callers can compare them directly.
var (
	ErrCorreoTaken        = serr.New("El correo ya se encuentra registrado")
	ErrUsuarioNotFound    = serr.New("No existe un usuario con ese correo")
	ErrInvalidCredentials = serr.New("Credenciales inválidas")
)

// Usuario is a registered account.
// ClaveHash is the bcrypt hash and never leaves the server.
type Usuario struct {
	ID          int64        `json:"usuarioId"`
	GUID        string       `json:"guid"`
	Nombre      string       `json:"nombre"`
	Correo      string       `json:"correo"`
	ClaveHash   string       `json:"-"`
	Estado      string       `json:"estado"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastLoginAt sql.NullTime `json:"-"`
}

// CreateUsuariosTableSQL is the usuarios DDL.
// correo is UNIQUE; DuckDB backs the constraint with an index used for login lookups.
const CreateUsuariosTableSQL = `
CREATE TABLE IF NOT EXISTS usuarios (
    usuario_id    BIGINT PRIMARY KEY DEFAULT nextval('usuarios_id_seq'),
    guid          VARCHAR NOT NULL UNIQUE,
    nombre        VARCHAR NOT NULL,
    correo        VARCHAR NOT NULL UNIQUE,
    clave         VARCHAR NOT NULL,
    estado        VARCHAR NOT NULL DEFAULT 'ACTIVO',
    created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_login_at TIMESTAMP
)`

const usuarioColumns = `usuario_id, guid, nombre, correo, clave, estado, created_at, last_login_at`

// RegistrarInput is the registration request body.
type RegistrarInput struct {
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Clave  string `json:"clave"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Correo string `json:"correo"`
	Clave  string `json:"clave"`
}

// InputError reports request fields that failed validation.
type InputError struct {
	Messages []string
}

func (e *InputError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func checkFields(fields []validation.Field, rules validation.Rules) error {
	res := validation.Validate(fields, rules.WithMaxLength(MaxFieldLength))
	if !res.Valid {
		return &InputError{Messages: res.Errors}
	}
	return nil
}

// bcrypt rejects passwords longer than this many bytes.
const maxClaveBytes = 72

// Validate checks nombre, correo and clave.
func (in RegistrarInput) Validate() error {
	err := checkFields([]validation.Field{
		{Name: "nombre", Value: in.Nombre},
		{Name: "correo", Value: in.Correo},
		{Name: "clave", Value: in.Clave},
	}, validation.RegisterRules())
	if err != nil {
		return err
	}
	if len(in.Clave) > maxClaveBytes {
		return &InputError{Messages: []string{"Contraseña debe tener como máximo 72 bytes"}}
	}
	return nil
}

// Validate checks correo and clave.
func (in LoginInput) Validate() error {
	return checkFields([]validation.Field{
		{Name: "correo", Value: in.Correo},
		{Name: "clave", Value: in.Clave},
	}, validation.LoginRules())
}

// Cost of 12 keeps a login around 250ms
const bcryptCost = 12

// HashPassword creates a bcrypt hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", serr.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against its hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUsuario registers a new account and returns it.
// Returns ErrCorreoTaken when the correo already exists.
func (d *DB) CreateUsuario(in RegistrarInput) (*Usuario, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	claveHash, err := HashPassword(in.Clave)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	existing, err := d.UsuarioByCorreo(in.Correo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCorreoTaken
	}

	query := `
		INSERT INTO usuarios (guid, nombre, correo, clave, estado)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + usuarioColumns

	u, err := scanUsuario(d.conn.QueryRow(query, uuid.New().String(), in.Nombre, in.Correo, claveHash, EstadoActivo))
	if err != nil {
		errStr := strings.ToLower(err.Error())
		if strings.Contains(errStr, "unique") || strings.Contains(errStr, "duplicate") {
			return nil, ErrCorreoTaken
		}
		return nil, serr.Wrap(err, "failed to create usuario")
	}

	logger.Info("Usuario registered", "guid", u.GUID)
	return u, nil
}

// UsuarioByCorreo returns nil, nil when no account has that correo.
func (d *DB) UsuarioByCorreo(correo string) (*Usuario, error) {
	u, err := scanUsuario(d.conn.QueryRow(`SELECT `+usuarioColumns+` FROM usuarios WHERE correo = ?`, correo))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to get usuario by correo")
	}
	return u, nil
}

// UsuarioByID returns nil, nil when the id is unknown.
func (d *DB) UsuarioByID(id int64) (*Usuario, error) {
	u, err := scanUsuario(d.conn.QueryRow(`SELECT `+usuarioColumns+` FROM usuarios WHERE usuario_id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, serr.Wrap(err, "failed to get usuario by id")
	}
	return u, nil
}

// UpdateLastLogin stamps last_login_at.
func (d *DB) UpdateLastLogin(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.conn.Exec(`UPDATE usuarios SET last_login_at = CURRENT_TIMESTAMP WHERE usuario_id = ?`, id); err != nil {
		return serr.Wrap(err, "failed to update last login")
	}
	return nil
}

// Authenticate checks credentials. It returns ErrUsuarioNotFound or
// ErrInvalidCredentials for the two rejection cases.
func (d *DB) Authenticate(in LoginInput) (*Usuario, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u, err := d.UsuarioByCorreo(in.Correo)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUsuarioNotFound
	}

	if !CheckPassword(in.Clave, u.ClaveHash) {
		return nil, ErrInvalidCredentials
	}

	if err := d.UpdateLastLogin(u.ID); err != nil {
		logger.LogErr(err, "failed to update last login", "guid", u.GUID)
	}
	return u, nil
}

// CountUsuarios reports how many accounts exist.
func (d *DB) CountUsuarios() (int, error) {
	var count int
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM usuarios").Scan(&count); err != nil {
		return 0, serr.Wrap(err, "failed to count usuarios")
	}
	return count, nil
}

func scanUsuario(row *sql.Row) (*Usuario, error) {
	u := &Usuario{}
	err := row.Scan(&u.ID, &u.GUID, &u.Nombre, &u.Correo, &u.ClaveHash, &u.Estado, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
