// Package commands defines the itla command line.
//
// It uses urfave/cli/v2. Settings are resolved once in the app's Before
// hook and shared with every subcommand through the app metadata.
package commands

import (
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/urfave/cli/v2"

	"itlalogin/config"
)

// Version is set via ldflags.
var Version = "dev"

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "itla",
		Usage:   "ITLA login client and auth service",
		Version: Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ServeCommand(),
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			StatusCommand(),
		},
		Before: func(c *cli.Context) error {
			settings, err := loadSettings(c)
			if err != nil {
				return err
			}
			logger.SetLogLevel(settings.LogLevel)
			c.App.Metadata[settingsKey] = settings
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file (default ~/.itla/itla.yaml if present)",
		},
		&cli.StringFlag{
			Name:  "api-base-url",
			Usage: "Base URL of the auth API",
		},
		&cli.StringFlag{
			Name:  "storage-dir",
			Usage: "Directory of the session store",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
	}
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	opts := []config.Option{
		config.WithOverrides(map[string]any{
			"api_base_url": c.String("api-base-url"),
			"storage_dir":  c.String("storage-dir"),
			"log_level":    c.String("log-level"),
		}),
	}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	settings, err := config.Load(opts...)
	if err != nil {
		return settings, serr.Wrap(err, "failed to load settings")
	}
	return settings, nil
}

// settingsFrom returns the settings resolved in Before.
func settingsFrom(c *cli.Context) config.Settings {
	if s, ok := c.App.Metadata[settingsKey].(config.Settings); ok {
		return s
	}
	return config.Default()
}
