package commands

import (
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/urfave/cli/v2"

	"itlalogin/models"
	"itlalogin/web"
)

// ServeCommand runs the auth service.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the auth API and the login pages",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Usage: "Listen address (host:port)"},
			&cli.StringFlag{Name: "db", Usage: "DuckDB file path"},
		},
		Action: func(c *cli.Context) error {
			settings := settingsFrom(c)
			if addr := c.String("address"); addr != "" {
				settings.Server.Address = addr
			}
			if path := c.String("db"); path != "" {
				settings.Server.DBPath = path
			}
			if err := settings.ValidateServer(); err != nil {
				return err
			}
			if settings.UsingDevSecret() {
				logger.Info("Using the built-in JWT secret, set ITLA_SERVER__JWT_SECRET in production", "level", "warn")
			}

			db, err := models.OpenDB(settings.Server.DBPath)
			if err != nil {
				return serr.Wrap(err, "failed to open database")
			}
			defer db.Close()

			tokens, err := models.NewTokenIssuer(settings.Server.JWTSecret, settings.Server.TokenTTL())
			if err != nil {
				return err
			}

			srv, err := web.NewServer(settings, db, tokens)
			if err != nil {
				return err
			}
			return web.Run(srv, settings, db)
		},
	}
}
