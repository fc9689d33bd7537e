package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

//go:embed all:static
var staticFiles embed.FS

var contentTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// SetupStaticFiles serves the embedded assets under /static/ and the favicon.
func SetupStaticFiles(s *rweb.Server) error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return serr.Wrap(err, "failed to get static subdirectory")
	}

	s.Get("/favicon.ico", func(c rweb.Context) error {
		return serveStatic(c, staticFS, "img/itla.svg")
	})

	s.Get("/static/*", func(c rweb.Context) error {
		return serveStatic(c, staticFS, strings.TrimPrefix(c.Request().Path(), "/static/"))
	})

	return nil
}

func serveStatic(c rweb.Context, fsys fs.FS, name string) error {
	name = path.Clean(name)
	if !fs.ValidPath(name) {
		c.SetStatus(http.StatusNotFound)
		return nil
	}

	// ReadFile fails on directories as well as missing files
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		logger.Debug("Static file not found", "path", name)
		c.SetStatus(http.StatusNotFound)
		return nil
	}

	if ct, ok := contentTypes[path.Ext(name)]; ok {
		c.Response().SetHeader("Content-Type", ct)
	}
	c.Response().SetHeader("Cache-Control", "public, max-age=3600")

	return c.Bytes(content)
}
