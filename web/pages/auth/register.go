package auth

import (
	"itlalogin/web/pages/comps"
	"itlalogin/web/pages/shared"

	"github.com/rohanthewiz/element"
)

// RegisterPage is served at /register.
type RegisterPage struct {
	shared.Page
}

func NewRegisterPage() RegisterPage {
	return RegisterPage{Page: shared.Page{
		Title:   "Crear cuenta - ITLA",
		Scripts: []string{"/static/js/register.js"},
	}}
}

func (p RegisterPage) Render() string {
	b := element.NewBuilder()

	b.Html("lang", "es").R(
		p.Head(b),
		p.renderBody(b),
	)

	return "<!DOCTYPE html>" + b.String()
}

func (p RegisterPage) renderBody(b *element.Builder) any {
	return b.Body().R(
		b.DivClass("auth-container").R(
			b.DivClass("auth-card").R(
				element.RenderComponents(b,
					p.Banner(),
					comps.Heading{Title: "Crear cuenta"},
				),

				b.Div("id", "alertContainer", "class", "alert-container", "aria-live", "polite").R(),

				b.Form("class", "auth-form", "id", "registerForm", "novalidate", "novalidate").R(
					element.RenderComponents(b,
						comps.Field{ID: "nombre", Label: "Nombre", Placeholder: "Tu nombre completo",
							Autocomplete: "name", MaxLength: maxLen},
						comps.Field{ID: "correo", Label: "Correo electrónico", Type: "email",
							Placeholder: "usuario@itla.edu.do", Autocomplete: "email", MaxLength: maxLen},
						comps.PasswordField{
							Field: comps.Field{ID: "clave", Label: "Contraseña",
								Placeholder: "Elige una contraseña", Autocomplete: "new-password", MaxLength: "72"},
							ToggleID: "togglePassword",
						},
						comps.SubmitButton{ID: "registerBtn", TextID: "registerBtnText", SpinnerID: "registerSpinner", Text: "Crear cuenta"},
					),
				),

				b.DivClass("auth-footer").R(
					b.Span().T("¿Ya tienes cuenta? "),
					b.A("href", "/login").T("Inicia sesión"),
				),
			),
			element.RenderComponents(b, p.Footer()),
		),
		p.ScriptTags(b),
	)
}
