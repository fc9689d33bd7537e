// Package tui is the interactive terminal login form.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"itlalogin/login"
)

const (
	fieldCorreo = iota
	fieldClave
)

// Controller is the part of *login.Controller the form drives.
type Controller interface {
	Start()
	Submit(ctx context.Context, form login.Form) login.State
}

// Messages sent by programView and by the model's own commands.
type (
	alertMsg struct {
		text     string
		kind     login.AlertKind
		autoHide bool
	}
	clearAlertMsg struct{}
	hideAlertMsg  struct{ seq int }
	loadingMsg    bool
	resetFormMsg  struct{}
	submittedMsg  struct{ state login.State }
	redirectMsg   struct{}
)

type alertState struct {
	text string
	kind login.AlertKind
}

// Model is the bubbletea model of the login form.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	autoHide time.Duration

	inputs       []textinput.Model
	focus        int
	spinner      spinner.Model
	loading      bool
	showPassword bool

	alert    *alertState
	alertSeq int

	loggedIn bool
	quitting bool
}

// NewModel builds the form. autoHide is how long alerts stay visible.
func NewModel(ctx context.Context, ctrl Controller, autoHide time.Duration) Model {
	correo := textinput.New()
	correo.Placeholder = "usuario@itla.edu.do"
	correo.CharLimit = 250
	correo.Prompt = "  "
	correo.Focus()

	clave := textinput.New()
	clave.Placeholder = "••••••••"
	clave.CharLimit = 250
	clave.Prompt = "  "
	clave.EchoMode = textinput.EchoPassword
	clave.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		autoHide: autoHide,
		inputs:   []textinput.Model{correo, clave},
		spinner:  sp,
	}
}

// LoggedIn reports whether the form ended with a successful login.
func (m Model) LoggedIn() bool {
	return m.loggedIn
}

func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(textinput.Blink, func() tea.Msg {
		ctrl.Start()
		return nil
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case alertMsg:
		m.alertSeq++
		m.alert = &alertState{text: msg.text, kind: msg.kind}
		if msg.autoHide && m.autoHide > 0 {
			seq := m.alertSeq
			return m, tea.Tick(m.autoHide, func(time.Time) tea.Msg {
				return hideAlertMsg{seq: seq}
			})
		}
		return m, nil

	case clearAlertMsg:
		m.alert = nil
		return m, nil

	case hideAlertMsg:
		// A newer alert replaced the one this timer was started for.
		if msg.seq == m.alertSeq {
			m.alert = nil
		}
		return m, nil

	case loadingMsg:
		m.loading = bool(msg)
		if m.loading {
			return m, m.spinner.Tick
		}
		return m, nil

	case resetFormMsg:
		for i := range m.inputs {
			m.inputs[i].Reset()
		}
		cmd := m.setFocus(fieldCorreo)
		return m, cmd

	case submittedMsg:
		return m, nil

	case redirectMsg:
		m.loggedIn = true
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+t":
		m.showPassword = !m.showPassword
		if m.showPassword {
			m.inputs[fieldClave].EchoMode = textinput.EchoNormal
		} else {
			m.inputs[fieldClave].EchoMode = textinput.EchoPassword
		}
		return m, nil

	case "tab", "down":
		cmd := m.setFocus((m.focus + 1) % len(m.inputs))
		return m, cmd

	case "shift+tab", "up":
		cmd := m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, cmd

	case "enter":
		if m.loading {
			return m, nil
		}
		return m, m.submit()
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

func (m Model) form() login.Form {
	return login.Form{
		Correo: m.inputs[fieldCorreo].Value(),
		Clave:  m.inputs[fieldClave].Value(),
	}
}

func (m Model) submit() tea.Cmd {
	ctx, ctrl, form := m.ctx, m.ctrl, m.form()
	return func() tea.Msg {
		return submittedMsg{state: ctrl.Submit(ctx, form)}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ITLA · Iniciar sesión"))
	b.WriteString("\n\n")

	if m.alert != nil {
		b.WriteString(renderAlert(m.alert.kind, m.alert.text))
		b.WriteString("\n\n")
	}

	b.WriteString(labelStyle.Render("Correo electrónico"))
	b.WriteString("\n")
	b.WriteString(m.inputs[fieldCorreo].View())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Contraseña"))
	b.WriteString("\n")
	b.WriteString(m.inputs[fieldClave].View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " " + buttonDisabledStyle.Render("Iniciando sesión..."))
	} else {
		b.WriteString(buttonStyle.Render("Iniciar sesión"))
	}
	b.WriteString("\n\n")

	toggle := "mostrar"
	if m.showPassword {
		toggle = "ocultar"
	}
	b.WriteString(helpStyle.Render("tab: cambiar campo · enter: entrar · ctrl+t: " + toggle + " contraseña · esc: salir"))
	b.WriteString("\n")

	return b.String()
}
