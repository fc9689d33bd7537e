package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"itlalogin/login"
)

// programView forwards controller calls into the bubbletea program as messages.
type programView struct {
	send func(tea.Msg)
}

func (v *programView) ShowAlert(msg string, kind login.AlertKind, autoHide bool) {
	v.send(alertMsg{text: msg, kind: kind, autoHide: autoHide})
}

func (v *programView) ClearAlert() {
	v.send(clearAlertMsg{})
}

func (v *programView) SetLoading(loading bool) {
	v.send(loadingMsg(loading))
}

func (v *programView) ResetForm() {
	v.send(resetFormMsg{})
}

// ConsoleView prints alerts line by line. Used for non-interactive logins.
type ConsoleView struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleView writes to out.
func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out}
}

func (v *ConsoleView) ShowAlert(msg string, kind login.AlertKind, _ bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	style := lipgloss.NewStyle().Foreground(alertColor(kind))
	fmt.Fprintln(v.out, style.Render(alertIcon(kind)+" "+msg))
}

func (v *ConsoleView) ClearAlert() {}

func (v *ConsoleView) SetLoading(loading bool) {
	if !loading {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, helpStyle.Render("Iniciando sesión..."))
}

func (v *ConsoleView) ResetForm() {}
