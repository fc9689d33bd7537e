// Package auth renders the login and registration pages.
package auth

import (
	"strconv"

	"itlalogin/models"
	"itlalogin/web/pages/comps"
	"itlalogin/web/pages/shared"

	"github.com/rohanthewiz/element"
)

var maxLen = strconv.Itoa(models.MaxFieldLength)

// LoginPage is served at / and /login. The element ids are what static/js/login.js binds to.
type LoginPage struct {
	shared.Page
}

// NewLoginPage creates the login page
func NewLoginPage() LoginPage {
	return LoginPage{Page: shared.Page{
		Title:   "Iniciar sesión - ITLA",
		Scripts: []string{"/static/js/login.js"},
	}}
}

// Render generates the HTML for the login page
func (p LoginPage) Render() string {
	b := element.NewBuilder()

	b.Html("lang", "es").R(
		p.Head(b),
		p.renderBody(b),
	)

	return "<!DOCTYPE html>" + b.String()
}

func (p LoginPage) renderBody(b *element.Builder) any {
	return b.Body().R(
		b.DivClass("auth-container").R(
			b.DivClass("auth-card").R(
				element.RenderComponents(b,
					p.Banner(),
					comps.Heading{Title: "Iniciar sesión", Hint: "Ingresa con tu correo institucional"},
				),

				// Alerts are injected here by the page script
				b.Div("id", "alertContainer", "class", "alert-container", "aria-live", "polite").R(),

				b.Form("class", "auth-form", "id", "loginForm", "novalidate", "novalidate").R(
					element.RenderComponents(b,
						comps.Field{ID: "correo", Label: "Correo electrónico", Type: "email",
							Placeholder: "usuario@itla.edu.do", Autocomplete: "username", MaxLength: maxLen},
						comps.PasswordField{
							Field: comps.Field{ID: "clave", Label: "Contraseña",
								Placeholder: "Tu contraseña", Autocomplete: "current-password", MaxLength: maxLen},
							ToggleID: "togglePassword",
						},
						comps.SubmitButton{ID: "loginBtn", TextID: "loginBtnText", SpinnerID: "loginSpinner", Text: "Iniciar sesión"},
					),
				),

				b.DivClass("auth-footer").R(
					b.Span().T("¿No tienes cuenta? "),
					b.A("href", "/register").T("Regístrate"),
				),
			),
			element.RenderComponents(b, p.Footer()),
		),
		p.ScriptTags(b),
	)
}
