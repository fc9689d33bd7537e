package shared

import "github.com/rohanthewiz/element"

type Footer struct{}

func (f Footer) Render(b *element.Builder) any {
	b.DivClass("auth-page-footer").R(
		b.P().T("&copy; ITLA"),
	)
	return nil
}
