package shared

import "github.com/rohanthewiz/element"

// Banner is the brand block at the top of the auth card.
type Banner struct {
	Title    string
	Subtitle string
}

func (bn Banner) Render(b *element.Builder) any {
	b.DivClass("auth-logo").R(
		b.H1().T(bn.Title),
		b.PClass("auth-subtitle").T(bn.Subtitle),
	)
	return nil
}
