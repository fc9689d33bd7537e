package client

import (
	"context"

	"itlalogin/config"
)

// Credentials is the login request body.
type Credentials struct {
	Correo string `json:"correo"`
	Clave  string `json:"clave"`
}

// Registration is the sign-up request body.
type Registration struct {
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
	Clave  string `json:"clave"`
}

// TokenData is the payload of a successful login.
type TokenData struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// LoginResponse wraps TokenData in the API's {data: ...} envelope.
// Data is nil when the server sent no payload.
type LoginResponse struct {
	Data *TokenData `json:"data"`
}

// RegisterResponse carries the new usuario id.
type RegisterResponse struct {
	Data *int64 `json:"data"`
}

// Profile is what the verify endpoint reports about the token's owner.
type Profile struct {
	UsuarioID int64  `json:"usuarioId"`
	Nombre    string `json:"nombre"`
	Correo    string `json:"correo"`
}

// VerifyResponse wraps Profile.
type VerifyResponse struct {
	Data *Profile `json:"data"`
}

// AuthClient adds the auth endpoints to the generic client.
type AuthClient struct {
	*Client
	endpoints config.Endpoints
}

// NewAuthClient binds c to the configured endpoint paths.
func NewAuthClient(c *Client, endpoints config.Endpoints) *AuthClient {
	return &AuthClient{Client: c, endpoints: endpoints}
}

// Login exchanges credentials for a token. No Authorization header is sent.
// Errors from the generic client are returned as-is.
func (a *AuthClient) Login(ctx context.Context, correo, clave string) (*LoginResponse, error) {
	raw, err := a.Post(ctx, a.endpoints.Login, Credentials{Correo: correo, Clave: clave}, WithoutAuth())
	if err != nil {
		return nil, err
	}
	resp, err := Decode[LoginResponse](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. No Authorization header is sent.
func (a *AuthClient) Register(ctx context.Context, nombre, correo, clave string) (*RegisterResponse, error) {
	raw, err := a.Post(ctx, a.endpoints.Register, Registration{Nombre: nombre, Correo: correo, Clave: clave}, WithoutAuth())
	if err != nil {
		return nil, err
	}
	resp, err := Decode[RegisterResponse](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyToken asks the server who the stored token belongs to.
// This is the one auth call that does send the Authorization header.
func (a *AuthClient) VerifyToken(ctx context.Context) (*VerifyResponse, error) {
	raw, err := a.Get(ctx, a.endpoints.Verify)
	if err != nil {
		return nil, err
	}
	resp, err := Decode[VerifyResponse](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
