package web

import (
	"encoding/json"

	"itlalogin/config"
	"itlalogin/web/api"
	"itlalogin/web/pages/auth"

	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"
)

// setupRoutes configures pages and API routes.
func setupRoutes(s *rweb.Server, settings config.Settings, h *api.AuthHandler) error {
	configJS, err := configScript(settings)
	if err != nil {
		return err
	}

	loginPage := auth.NewLoginPage().Render()
	registerPage := auth.NewRegisterPage().Render()

	servePage := func(html string) rweb.Handler {
		return func(ctx rweb.Context) error {
			ctx.Response().SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.WriteHTML(html)
		}
	}

	// Pages
	s.Get("/", servePage(loginPage))
	s.Get("/login", servePage(loginPage))
	s.Get("/register", servePage(registerPage))

	// Settings for the page scripts, published as window.CONFIG
	s.Get("/config.js", func(ctx rweb.Context) error {
		ctx.Response().SetHeader("Content-Type", "application/javascript; charset=utf-8")
		ctx.Response().SetHeader("Cache-Control", "no-cache")
		return ctx.Bytes(configJS)
	})

	s.Get("/health", func(ctx rweb.Context) error {
		return ctx.WriteJSON(map[string]string{"status": "ok"})
	})

	// Auth API
	s.Post(settings.Endpoints.Login, h.Login)
	s.Post(settings.Endpoints.Register, h.Registrar)
	s.Get(settings.Endpoints.Verify, h.Verify)

	return nil
}

// pageConfig is what the browser sees as window.CONFIG.
type pageConfig struct {
	APIBaseURL string `json:"API_BASE_URL"`
	Endpoints  struct {
		Login    string `json:"LOGIN"`
		Register string `json:"REGISTER"`
		Verify   string `json:"VERIFY"`
	} `json:"ENDPOINTS"`
	StorageKeys struct {
		AccessToken string `json:"ACCESS_TOKEN"`
		TokenType   string `json:"TOKEN_TYPE"`
		UserData    string `json:"USER_DATA"`
	} `json:"STORAGE_KEYS"`
	Timeouts struct {
		AlertAutoHide int `json:"ALERT_AUTO_HIDE"`
		RedirectDelay int `json:"REDIRECT_DELAY"`
	} `json:"TIMEOUTS"`
}

func configScript(settings config.Settings) ([]byte, error) {
	var pc pageConfig
	pc.APIBaseURL = settings.APIBaseURL
	pc.Endpoints.Login = settings.Endpoints.Login
	pc.Endpoints.Register = settings.Endpoints.Register
	pc.Endpoints.Verify = settings.Endpoints.Verify
	pc.StorageKeys.AccessToken = settings.StorageKeys.AccessToken
	pc.StorageKeys.TokenType = settings.StorageKeys.TokenType
	pc.StorageKeys.UserData = settings.StorageKeys.UserData
	pc.Timeouts.AlertAutoHide = settings.Timeouts.AlertAutoHideMS
	pc.Timeouts.RedirectDelay = settings.Timeouts.RedirectDelayMS

	data, err := json.Marshal(pc)
	if err != nil {
		return nil, serr.Wrap(err, "failed to encode page config")
	}
	return []byte("window.CONFIG = Object.freeze(" + string(data) + ");\n"), nil
}
