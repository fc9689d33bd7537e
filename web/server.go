// Package web is the HTTP face of the auth service: pages, static assets and the JSON API.
package web

import (
	"net/url"
	"strconv"

	"itlalogin/config"
	"itlalogin/models"
	"itlalogin/web/api"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// NewServer creates and configures the rweb server.
func NewServer(settings config.Settings, db *models.DB, tokens *models.TokenIssuer) (*rweb.Server, error) {
	s := rweb.NewServer(rweb.ServerOptions{
		Address: settings.Server.Address,
		Verbose: settings.LogLevel == "debug",
	})

	s.Use(rweb.RequestInfo)
	s.Use(CorsMiddleware)
	s.Use(SecurityHeadersMiddleware(apiOrigin(settings)))
	s.Use(LoggingMiddleware)
	s.Use(JWTAuthMiddleware(tokens))
	s.Use(RateLimitMiddleware(settings.Server.LoginRatePerMinute))

	if err := setupRoutes(s, settings, api.NewAuthHandler(db, tokens)); err != nil {
		return nil, serr.Wrap(err, "failed to set up routes")
	}

	if err := SetupStaticFiles(s); err != nil {
		return nil, err
	}

	return s, nil
}

// Run starts the server and blocks.
func Run(s *rweb.Server, settings config.Settings, db *models.DB) error {
	count, err := db.CountUsuarios()
	if err != nil {
		logger.LogErr(err, "failed to count usuarios")
	}
	logger.Info("ITLA auth server starting", "address", settings.Server.Address,
		"usuarios", strconv.Itoa(count))

	if err := s.Run(); err != nil {
		return serr.Wrap(err, "server stopped")
	}
	return nil
}

// apiOrigin returns the scheme://host of the configured API base URL.
func apiOrigin(settings config.Settings) string {
	u, err := url.Parse(settings.APIBaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
