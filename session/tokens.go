package session

import (
	"encoding/json"

	"itlalogin/config"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// TokenStore manages the three session slots: access token, token kind,
// and cached user data. A token kind without a token means nothing.
type TokenStore struct {
	storage Storage
	keys    config.StorageKeys
}

// NewTokenStore binds a token store to storage using the configured key names.
func NewTokenStore(storage Storage, keys config.StorageKeys) *TokenStore {
	return &TokenStore{storage: storage, keys: keys}
}

// SaveToken persists the token and its kind; an empty kind is stored as "bearer".
func (ts *TokenStore) SaveToken(accessToken, tokenType string) error {
	if tokenType == "" {
		tokenType = config.DefaultTokenType
	}
	if err := ts.storage.Set(ts.keys.AccessToken, accessToken); err != nil {
		return serr.Wrap(err, "failed to save access token")
	}
	if err := ts.storage.Set(ts.keys.TokenType, tokenType); err != nil {
		return serr.Wrap(err, "failed to save token type")
	}
	return nil
}

// Token returns the stored access token, or "" when there is none.
// Read failures are logged and treated as absence.
func (ts *TokenStore) Token() string {
	return ts.read(ts.keys.AccessToken)
}

// TokenType returns the stored kind, defaulting to "bearer".
func (ts *TokenStore) TokenType() string {
	if kind := ts.read(ts.keys.TokenType); kind != "" {
		return kind
	}
	return config.DefaultTokenType
}

// RemoveToken clears all three slots. Every slot is attempted even if one fails.
func (ts *TokenStore) RemoveToken() error {
	var firstErr error
	for _, key := range []string{ts.keys.AccessToken, ts.keys.TokenType, ts.keys.UserData} {
		if err := ts.storage.Remove(key); err != nil && firstErr == nil {
			firstErr = serr.Wrap(err, "failed to clear session")
		}
	}
	return firstErr
}

// IsAuthenticated is true iff a token is stored. Expiry is not checked.
func (ts *TokenStore) IsAuthenticated() bool {
	return ts.Token() != ""
}

// AuthHeader returns "<kind> <token>" when a token exists.
func (ts *TokenStore) AuthHeader() (string, bool) {
	token := ts.Token()
	if token == "" {
		return "", false
	}
	return ts.TokenType() + " " + token, true
}

// SaveUserData stores v as JSON in the user data slot.
func (ts *TokenStore) SaveUserData(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return serr.Wrap(err, "failed to encode user data")
	}
	if err := ts.storage.Set(ts.keys.UserData, string(data)); err != nil {
		return serr.Wrap(err, "failed to save user data")
	}
	return nil
}

// UserData decodes the cached user data into out. It reports false when
// nothing is cached.
func (ts *TokenStore) UserData(out any) (bool, error) {
	raw, ok, err := ts.storage.Get(ts.keys.UserData)
	if err != nil {
		return false, serr.Wrap(err, "failed to read user data")
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, serr.Wrap(err, "failed to decode user data")
	}
	return true, nil
}

func (ts *TokenStore) read(key string) string {
	v, _, err := ts.storage.Get(key)
	if err != nil {
		logger.LogErr(err, "session read failed", "key", key)
		return ""
	}
	return v
}
