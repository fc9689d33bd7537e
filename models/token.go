package models

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rohanthewiz/serr"
)

// TokenIssuerName identifies this service in the iss claim.
const TokenIssuerName = "itla-auth"

// TokenType is reported to clients alongside the access token.
const TokenType = "bearer"

// MinSecretLength is the minimum acceptable length for the signing secret.
const MinSecretLength = 32

// TokenClaims carries the usuario id as the subject.
type TokenClaims struct {
	jwt.RegisteredClaims
	Correo string `json:"correo,omitempty"`
}

// UsuarioID parses the subject back into an id.
func (c *TokenClaims) UsuarioID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, serr.Wrap(err, "token subject is not a usuario id")
	}
	return id, nil
}

// TokenIssuer signs and validates HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer checks the secret length up front.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, serr.New("JWT secret must be at least 32 characters")
	}
	if ttl <= 0 {
		return nil, serr.New("token TTL must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is how long issued tokens stay valid.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Generate signs a token whose subject is the usuario id.
func (ti *TokenIssuer) Generate(u *Usuario) (string, error) {
	now := ti.now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuerName,
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Correo: u.Correo,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", serr.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Validate parses a token and returns its claims.
// Any parse, signature or expiry failure is an error.
func (ti *TokenIssuer) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, serr.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		return nil, serr.Wrap(err, "failed to parse token")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, serr.New("invalid token claims")
	}
	return claims, nil
}
