// Package login drives the login form: validation, the login call, token
// persistence and user feedback. It knows nothing about how the form is
// drawn; front ends implement View.
package login

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"itlalogin/client"
	"itlalogin/config"
	"itlalogin/validation"
)

// Alert messages shown by the controller.
const (
	MsgLoginSuccess    = "¡Login exitoso! Redirigiendo..."
	MsgAlreadyLoggedIn = "Ya tienes una sesión activa."
	MsgInvalidResponse = "Respuesta inválida del servidor"
	MsgSessionClosed   = "Sesión cerrada"
)

// State is where the controller is in the submit cycle.
type State int32

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// AlertKind selects the styling of an alert.
type AlertKind string

const (
	AlertDanger  AlertKind = "danger"
	AlertSuccess AlertKind = "success"
	AlertInfo    AlertKind = "info"
)

// View is the surface the controller renders into.
type View interface {
	ShowAlert(msg string, kind AlertKind, autoHide bool)
	ClearAlert()
	SetLoading(loading bool)
	ResetForm()
}

// Authenticator performs the login call. *client.AuthClient satisfies it.
type Authenticator interface {
	Login(ctx context.Context, correo, clave string) (*client.LoginResponse, error)
}

// Sessions persists the token. *session.TokenStore satisfies it.
type Sessions interface {
	SaveToken(token, kind string) error
	IsAuthenticated() bool
	RemoveToken() error
}

// Hooks are optional callbacks fired at points in the flow. Nil hooks are skipped.
type Hooks struct {
	OnLoginSuccess         func(data client.TokenData)
	OnLoginError           func(err error)
	OnAlreadyAuthenticated func()
	OnRedirect             func()
}

// Form holds the raw input values.
type Form struct {
	Correo string
	Clave  string
}

func (f Form) fields() []validation.Field {
	return []validation.Field{
		{Name: "correo", Value: f.Correo},
		{Name: "clave", Value: f.Clave},
	}
}

// Controller runs one login at a time.
type Controller struct {
	auth     Authenticator
	sessions Sessions
	view     View
	hooks    Hooks
	timeouts config.Timeouts
	rules    validation.Rules

	loading atomic.Bool
	state   atomic.Int32

	// after schedules f to run once d has elapsed.
	after func(d time.Duration, f func())
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces time.AfterFunc for the redirect delay.
func WithScheduler(after func(d time.Duration, f func())) Option {
	return func(c *Controller) {
		c.after = after
	}
}

// WithRules replaces the default login rules.
func WithRules(rules validation.Rules) Option {
	return func(c *Controller) {
		c.rules = rules
	}
}

// NewController wires a controller to its collaborators.
func NewController(auth Authenticator, sessions Sessions, view View, timeouts config.Timeouts, hooks Hooks, opts ...Option) *Controller {
	c := &Controller{
		auth:     auth,
		sessions: sessions,
		view:     view,
		hooks:    hooks,
		timeouts: timeouts,
		rules:    validation.LoginRules(),
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Loading reports whether a login call is in flight.
func (c *Controller) Loading() bool {
	return c.loading.Load()
}

// Start checks for an existing session.
func (c *Controller) Start() {
	if !c.sessions.IsAuthenticated() {
		return
	}
	logger.Debug("User already authenticated")

	if c.hooks.OnAlreadyAuthenticated != nil {
		c.hooks.OnAlreadyAuthenticated()
		return
	}
	c.view.ShowAlert(MsgAlreadyLoggedIn, AlertInfo, true)
}

// Submit validates the form and, when valid, performs the login.
// A submit while another is in flight is ignored and reports Submitting.
func (c *Controller) Submit(ctx context.Context, form Form) State {
	if c.loading.Load() {
		return Submitting
	}

	c.view.ClearAlert()

	form.Correo = strings.TrimSpace(form.Correo)
	form.Clave = strings.TrimSpace(form.Clave)

	result := validation.Validate(form.fields(), c.rules)
	if !result.Valid {
		c.view.ShowAlert(strings.Join(result.Errors, "\n"), AlertDanger, true)
		c.setState(Idle)
		return Idle
	}

	if !c.loading.CompareAndSwap(false, true) {
		return Submitting
	}
	c.setState(Submitting)
	c.view.SetLoading(true)
	defer func() {
		c.loading.Store(false)
		c.view.SetLoading(false)
	}()

	data, err := c.login(ctx, form)
	if err != nil {
		c.handleError(err)
		return Failed
	}

	c.handleSuccess(data)
	return Success
}

func (c *Controller) login(ctx context.Context, form Form) (client.TokenData, error) {
	resp, err := c.auth.Login(ctx, form.Correo, form.Clave)
	if err != nil {
		return client.TokenData{}, err
	}
	if resp == nil || resp.Data == nil || resp.Data.AccessToken == "" {
		return client.TokenData{}, serr.New(MsgInvalidResponse)
	}

	if err = c.sessions.SaveToken(resp.Data.AccessToken, resp.Data.TokenType); err != nil {
		return client.TokenData{}, serr.Wrap(err, "failed to save token")
	}
	return *resp.Data, nil
}

func (c *Controller) handleSuccess(data client.TokenData) {
	c.setState(Success)
	c.view.ShowAlert(MsgLoginSuccess, AlertSuccess, true)
	c.view.ResetForm()

	if c.hooks.OnLoginSuccess != nil {
		c.hooks.OnLoginSuccess(data)
	}

	c.after(c.timeouts.RedirectDelay(), c.redirect)
}

func (c *Controller) redirect() {
	if c.hooks.OnRedirect != nil {
		c.hooks.OnRedirect()
		return
	}
	logger.Info("Login successful, token saved")
}

func (c *Controller) handleError(err error) {
	c.setState(Failed)
	logger.LogErr(err, "Login failed")

	c.view.ShowAlert(ClassifyError(err), AlertDanger, true)

	if c.hooks.OnLoginError != nil {
		c.hooks.OnLoginError(err)
	}
}

// Logout drops the stored session and returns the form to Idle.
func (c *Controller) Logout() error {
	if err := c.sessions.RemoveToken(); err != nil {
		return serr.Wrap(err, "failed to clear session")
	}
	c.setState(Idle)
	logger.Info(MsgSessionClosed)
	return nil
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}
