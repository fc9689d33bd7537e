package comps

import "github.com/rohanthewiz/element"

// Heading is the card title with an optional hint line below it.
type Heading struct {
	Title string
	Hint  string
}

func (h Heading) Render(b *element.Builder) (x any) {
	b.H2Class("auth-title").T(h.Title)
	if h.Hint != "" {
		b.PClass("auth-hint").T(h.Hint)
	}
	return
}
