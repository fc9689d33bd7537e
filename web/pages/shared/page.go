// Package shared holds the layout pieces common to the auth pages.
package shared

import "github.com/rohanthewiz/element"

// commonScripts load before any page script. /config.js defines window.CONFIG.
var commonScripts = []string{"/config.js", "/static/js/app.js"}

// Page is embedded by every auth page.
type Page struct {
	Title   string
	Scripts []string
}

// Head renders the document head.
func (p Page) Head(b *element.Builder) any {
	return b.Head().R(
		b.Meta("charset", "UTF-8"),
		b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
		b.Title().T(p.Title),
		b.Link("rel", "icon", "type", "image/svg+xml", "href", "/favicon.ico"),
		b.Link("rel", "stylesheet", "href", "/static/css/app.css"),
	)
}

// ScriptTags renders the shared scripts followed by the page's own.
func (p Page) ScriptTags(b *element.Builder) any {
	return b.Wrap(func() {
		element.ForEach(append(append([]string{}, commonScripts...), p.Scripts...), func(src string) {
			b.Script("src", src).R()
		})
	})
}

func (p Page) Banner() Banner {
	return Banner{Title: "ITLA", Subtitle: "Instituto Tecnológico de Las Américas"}
}

func (p Page) Footer() Footer {
	return Footer{}
}
