package login

import "strings"

// MsgLoginFailed is shown when no classification rule matches.
const MsgLoginFailed = "Error al iniciar sesión. Por favor, intenta nuevamente."

// classification maps a substring of the raw error text to the message shown.
// First match wins.
var classification = []struct {
	contains []string
	message  string
}{
	{[]string{"No existe un usuario"}, "No existe un usuario con ese correo electrónico."},
	{[]string{"Credenciales inválidas"}, "Credenciales inválidas. Verifica tu correo y contraseña."},
	{[]string{"connection refused"}, "Error de conexión. Verifica que el servidor esté funcionando."},
	{[]string{"no such host", "network is unreachable", "i/o timeout"}, "Error de red. Verifica tu conexión a internet."},
}

// ClassifyError turns a login failure into a user-facing message.
func ClassifyError(err error) string {
	if err == nil {
		return MsgLoginFailed
	}
	text := err.Error()
	for _, rule := range classification {
		for _, s := range rule.contains {
			if strings.Contains(text, s) {
				return rule.message
			}
		}
	}
	return MsgLoginFailed
}
