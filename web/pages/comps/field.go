package comps

import "github.com/rohanthewiz/element"

// Field is a labelled form input.
type Field struct {
	ID           string
	Label        string
	Type         string
	Placeholder  string
	Autocomplete string
	MaxLength    string
}

func (f Field) attrs() []string {
	typ := f.Type
	if typ == "" {
		typ = "text"
	}
	attrs := []string{"type", typ, "class", "form-input", "id", f.ID, "name", f.ID,
		"required", "required", "placeholder", f.Placeholder}
	if f.Autocomplete != "" {
		attrs = append(attrs, "autocomplete", f.Autocomplete)
	}
	if f.MaxLength != "" {
		attrs = append(attrs, "maxlength", f.MaxLength)
	}
	return attrs
}

func (f Field) Render(b *element.Builder) any {
	b.DivClass("form-group").R(
		b.LabelClass("form-label", "for", f.ID).T(f.Label),
		b.Input(f.attrs()...),
	)
	return nil
}

// PasswordField is a password input with a show/hide toggle button.
type PasswordField struct {
	Field
	ToggleID string
}

func (p PasswordField) Render(b *element.Builder) any {
	p.Type = "password"
	b.DivClass("form-group").R(
		b.LabelClass("form-label", "for", p.ID).T(p.Label),
		b.DivClass("input-group").R(
			b.Input(p.attrs()...),
			b.ButtonClass("btn-toggle", "type", "button", "id", p.ToggleID,
				"aria-label", "Mostrar u ocultar contraseña").T("👁"),
		),
	)
	return nil
}

// SubmitButton shows a text label, swapped for a spinner while loading.
type SubmitButton struct {
	ID        string
	TextID    string
	SpinnerID string
	Text      string
}

func (s SubmitButton) Render(b *element.Builder) any {
	b.Button("type", "submit", "class", "auth-submit", "id", s.ID).R(
		b.Span("id", s.TextID).T(s.Text),
		b.Span("id", s.SpinnerID, "class", "spinner hidden", "role", "status", "aria-hidden", "true").R(),
	)
	return nil
}
