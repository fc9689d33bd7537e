package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"itlalogin/client"
	"itlalogin/session"
)

// TestAuthAPI covers registrar, login and verify against a live server.
func TestAuthAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := newTestServer(t, "127.0.0.1:18091")
	defer ts.cleanup()

	endpoints := ts.settings.Endpoints

	// ----------------------------------------------------------------
	// Registrar
	// ----------------------------------------------------------------

	t.Run("RegistrarSuccess", func(t *testing.T) {
		input := map[string]string{"nombre": "Ana Pérez", "correo": "ana@itla.edu.do", "clave": "secreta123"}

		status, resp := ts.request("POST", endpoints.Register, input)

		if status != http.StatusCreated {
			t.Fatalf("expected status %d, got %d – %v", http.StatusCreated, status, resp)
		}
		if id, ok := resp["data"].(float64); !ok || id <= 0 {
			t.Errorf("expected a positive id in data, got %v", resp["data"])
		}
	})

	t.Run("RegistrarDuplicateCorreo", func(t *testing.T) {
		input := map[string]string{"nombre": "Otra Ana", "correo": "ana@itla.edu.do", "clave": "otra"}

		status, resp := ts.request("POST", endpoints.Register, input)

		if status != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, status)
		}
		if resp["detail"] != "El correo ya se encuentra registrado" {
			t.Errorf("detail = %v", resp["detail"])
		}
	})

	t.Run("RegistrarInvalidFields", func(t *testing.T) {
		input := map[string]string{"nombre": "", "correo": "no-es-correo", "clave": "x"}

		status, resp := ts.request("POST", endpoints.Register, input)

		if status != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, status)
		}
		if d, _ := resp["detail"].(string); d == "" {
			t.Error("expected a detail message")
		}
	})

	t.Run("RegistrarMalformedBody", func(t *testing.T) {
		status, resp := ts.request("POST", endpoints.Register, "{not json")

		if status != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, status)
		}
		if resp["detail"] != "Cuerpo de la solicitud inválido" {
			t.Errorf("detail = %v", resp["detail"])
		}
	})

	// ----------------------------------------------------------------
	// Login
	// ----------------------------------------------------------------

	var token string

	t.Run("LoginSuccess", func(t *testing.T) {
		status, resp := ts.request("POST", endpoints.Login,
			map[string]string{"correo": "ana@itla.edu.do", "clave": "secreta123"})

		if status != http.StatusOK {
			t.Fatalf("expected status %d, got %d – %v", http.StatusOK, status, resp)
		}
		data, ok := resp["data"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected data map, got %v", resp["data"])
		}
		if data["tokenType"] != "bearer" {
			t.Errorf("tokenType = %v", data["tokenType"])
		}
		token, _ = data["accessToken"].(string)
		if token == "" {
			t.Error("expected non-empty accessToken")
		}
	})

	t.Run("LoginUnknownCorreo", func(t *testing.T) {
		status, resp := ts.request("POST", endpoints.Login,
			map[string]string{"correo": "nadie@itla.edu.do", "clave": "secreta123"})

		if status != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, status)
		}
		if resp["detail"] != "No existe un usuario con ese correo" {
			t.Errorf("detail = %v", resp["detail"])
		}
	})

	t.Run("LoginWrongClave", func(t *testing.T) {
		status, resp := ts.request("POST", endpoints.Login,
			map[string]string{"correo": "ana@itla.edu.do", "clave": "incorrecta"})

		if status != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, status)
		}
		if resp["detail"] != "Credenciales inválidas" {
			t.Errorf("detail = %v", resp["detail"])
		}
	})

	// ----------------------------------------------------------------
	// Verify
	// ----------------------------------------------------------------

	t.Run("VerifyWithToken", func(t *testing.T) {
		status, resp := ts.request("GET", endpoints.Verify, nil, "Authorization", "bearer "+token)

		if status != http.StatusOK {
			t.Fatalf("expected status %d, got %d – %v", http.StatusOK, status, resp)
		}
		data, _ := resp["data"].(map[string]interface{})
		if data["correo"] != "ana@itla.edu.do" || data["nombre"] != "Ana Pérez" {
			t.Errorf("profile = %v", data)
		}
	})

	t.Run("VerifyWithoutToken", func(t *testing.T) {
		status, _ := ts.request("GET", endpoints.Verify, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, status)
		}
	})

	t.Run("VerifyWithBadToken", func(t *testing.T) {
		status, _ := ts.request("GET", endpoints.Verify, nil, "Authorization", "bearer not.a.jwt")
		if status != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, status)
		}
	})

	// ----------------------------------------------------------------
	// Go client against the live server
	// ----------------------------------------------------------------

	t.Run("ClientRoundTrip", func(t *testing.T) {
		store := session.NewTokenStore(session.NewMemoryStorage(), ts.settings.StorageKeys)
		auth := client.NewAuthClient(client.New(ts.baseURL, store), endpoints)
		ctx := context.Background()

		if _, err := auth.Register(ctx, "Luis", "luis@itla.edu.do", "clave-luis"); err != nil {
			t.Fatalf("Register() unexpected error: %v", err)
		}

		resp, err := auth.Login(ctx, "luis@itla.edu.do", "clave-luis")
		if err != nil {
			t.Fatalf("Login() unexpected error: %v", err)
		}
		if err := store.SaveToken(resp.Data.AccessToken, resp.Data.TokenType); err != nil {
			t.Fatal(err)
		}

		profile, err := auth.VerifyToken(ctx)
		if err != nil {
			t.Fatalf("VerifyToken() unexpected error: %v", err)
		}
		if profile.Data == nil || profile.Data.Correo != "luis@itla.edu.do" {
			t.Errorf("profile = %+v", profile.Data)
		}

		_, err = auth.Login(ctx, "luis@itla.edu.do", "mala")
		var reqErr *client.RequestError
		if !errors.As(err, &reqErr) || reqErr.Status != http.StatusBadRequest {
			t.Fatalf("expected 400 RequestError, got %v", err)
		}
		if !strings.Contains(err.Error(), "Credenciales inválidas") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}
