package commands

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rohanthewiz/serr"
	"github.com/urfave/cli/v2"

	"itlalogin/client"
	"itlalogin/config"
	"itlalogin/login"
	"itlalogin/session"
	"itlalogin/tui"
	"itlalogin/validation"
)

// clientSession bundles what the client-side commands need.
type clientSession struct {
	settings config.Settings
	storage  *session.BadgerStorage
	tokens   *session.TokenStore
	auth     *client.AuthClient
}

func openSession(c *cli.Context) (*clientSession, error) {
	settings := settingsFrom(c)

	storage, err := session.OpenBadgerStorage(settings.StorageDir)
	if err != nil {
		return nil, err
	}

	tokens := session.NewTokenStore(storage, settings.StorageKeys)
	httpClient := client.New(settings.APIBaseURL, tokens, client.WithTimeout(settings.Timeouts.Request()))

	return &clientSession{
		settings: settings,
		storage:  storage,
		tokens:   tokens,
		auth:     client.NewAuthClient(httpClient, settings.Endpoints),
	}, nil
}

func (s *clientSession) Close() error {
	return s.storage.Close()
}

// LoginCommand opens the terminal form, or logs in directly when both
// credentials are passed as flags.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "correo", Usage: "Email, skips the interactive form together with --clave"},
			&cli.StringFlag{Name: "clave", Usage: "Password", EnvVars: []string{"ITLA_CLAVE"}},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			correo, clave := c.String("correo"), c.String("clave")
			if correo != "" || clave != "" {
				return loginDirect(c, s, login.Form{Correo: correo, Clave: clave})
			}

			loggedIn, err := tui.Run(c.Context, s.auth, s.tokens, s.settings.Timeouts)
			if err != nil {
				return err
			}
			if loggedIn {
				fmt.Fprintln(c.App.Writer, "Sesión iniciada")
			}
			return nil
		},
	}
}

// loginDirect runs the controller against a console view.
func loginDirect(c *cli.Context, s *clientSession, form login.Form) error {
	view := tui.NewConsoleView(c.App.Writer)
	ctrl := login.NewController(s.auth, s.tokens, view, s.settings.Timeouts, login.Hooks{},
		// Nothing to redirect to outside the form
		login.WithScheduler(func(time.Duration, func()) {}),
	)

	ctrl.Start()
	if state := ctrl.Submit(c.Context, form); state != login.Success {
		return cli.Exit("", 1)
	}
	return nil
}

// RegisterCommand creates an account on the auth service.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "nombre", Required: true},
			&cli.StringFlag{Name: "correo", Required: true},
			&cli.StringFlag{Name: "clave", Required: true, EnvVars: []string{"ITLA_CLAVE"}},
		},
		Action: func(c *cli.Context) error {
			nombre := strings.TrimSpace(c.String("nombre"))
			correo := strings.TrimSpace(c.String("correo"))
			clave := strings.TrimSpace(c.String("clave"))

			result := validation.Validate([]validation.Field{
				{Name: "nombre", Value: nombre},
				{Name: "correo", Value: correo},
				{Name: "clave", Value: clave},
			}, validation.RegisterRules())
			if !result.Valid {
				return cli.Exit(strings.Join(result.Errors, "\n"), 1)
			}

			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.auth.Register(c.Context, nombre, correo, clave)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if resp.Data != nil {
				fmt.Fprintf(c.App.Writer, "Usuario registrado (id %d)\n", *resp.Data)
			} else {
				fmt.Fprintln(c.App.Writer, "Usuario registrado")
			}
			return nil
		},
	}
}

// LogoutCommand clears the stored session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Remove the stored access token",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.tokens.RemoveToken(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, login.MsgSessionClosed)
			return nil
		},
	}
}

// StatusCommand reports whether a token is stored and, with --verify,
// whether the server still accepts it.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the stored session",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verify", Usage: "Check the token against the server"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			defer s.Close()

			out := c.App.Writer
			if !s.tokens.IsAuthenticated() {
				fmt.Fprintln(out, "Sin sesión activa")
				return nil
			}
			fmt.Fprintf(out, "Sesión activa (%s)\n", s.tokens.TokenType())

			if !c.Bool("verify") {
				var cached client.Profile
				if ok, err := s.tokens.UserData(&cached); err == nil && ok {
					fmt.Fprintf(out, "Usuario: %s <%s>\n", cached.Nombre, cached.Correo)
				}
				return nil
			}

			resp, err := s.auth.VerifyToken(c.Context)
			if err != nil {
				var reqErr *client.RequestError
				if errors.As(err, &reqErr) && reqErr.Status == http.StatusUnauthorized {
					return cli.Exit("El servidor rechazó el token", 1)
				}
				return serr.Wrap(err, "failed to verify token")
			}
			if resp.Data == nil {
				return serr.New(login.MsgInvalidResponse)
			}

			if err := s.tokens.SaveUserData(resp.Data); err != nil {
				return err
			}
			fmt.Fprintf(out, "Usuario: %s <%s>\n", resp.Data.Nombre, resp.Data.Correo)
			return nil
		},
	}
}
