package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/serr"

	"itlalogin/config"
	"itlalogin/login"
)

// Run shows the login form until the user logs in or quits.
// It reports whether a token was saved.
func Run(ctx context.Context, auth login.Authenticator, sessions login.Sessions, timeouts config.Timeouts) (bool, error) {
	view := &programView{}
	var p *tea.Program

	ctrl := login.NewController(auth, sessions, view, timeouts, login.Hooks{
		OnRedirect: func() {
			p.Send(redirectMsg{})
		},
	})

	p = tea.NewProgram(NewModel(ctx, ctrl, timeouts.AlertAutoHide()), tea.WithContext(ctx))
	view.send = p.Send

	final, err := p.Run()
	if err != nil {
		return false, serr.Wrap(err, "login form failed")
	}

	m, ok := final.(Model)
	return ok && m.LoggedIn(), nil
}
