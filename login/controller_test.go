package login

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"itlalogin/client"
	"itlalogin/config"
	"itlalogin/session"
)

type alert struct {
	msg      string
	kind     AlertKind
	autoHide bool
}

type fakeView struct {
	alerts  []alert
	cleared int
	loading []bool
	resets  int
}

func (v *fakeView) ShowAlert(msg string, kind AlertKind, autoHide bool) {
	v.alerts = append(v.alerts, alert{msg, kind, autoHide})
}
func (v *fakeView) ClearAlert()             { v.cleared++ }
func (v *fakeView) SetLoading(loading bool) { v.loading = append(v.loading, loading) }
func (v *fakeView) ResetForm()              { v.resets++ }

func (v *fakeView) last() alert {
	if len(v.alerts) == 0 {
		return alert{}
	}
	return v.alerts[len(v.alerts)-1]
}

type fakeAuth struct {
	resp  *client.LoginResponse
	err   error
	calls int
	got   [2]string
	block chan struct{}
}

func (a *fakeAuth) Login(ctx context.Context, correo, clave string) (*client.LoginResponse, error) {
	a.calls++
	a.got = [2]string{correo, clave}
	if a.block != nil {
		<-a.block
	}
	return a.resp, a.err
}

type harness struct {
	ctrl      *Controller
	view      *fakeView
	auth      *fakeAuth
	tokens    *session.TokenStore
	scheduled []time.Duration
	run       []func()
}

func newHarness(t *testing.T, auth *fakeAuth, hooks Hooks) *harness {
	t.Helper()
	h := &harness{view: &fakeView{}, auth: auth}
	settings := config.Default()
	h.tokens = session.NewTokenStore(session.NewMemoryStorage(), settings.StorageKeys)
	h.ctrl = NewController(auth, h.tokens, h.view, settings.Timeouts, hooks,
		WithScheduler(func(d time.Duration, f func()) {
			h.scheduled = append(h.scheduled, d)
			h.run = append(h.run, f)
		}))
	return h
}

func okResponse(token string) *client.LoginResponse {
	return &client.LoginResponse{Data: &client.TokenData{AccessToken: token, TokenType: "bearer"}}
}

func TestSubmitInvalidEmail(t *testing.T) {
	h := newHarness(t, &fakeAuth{}, Hooks{})

	state := h.ctrl.Submit(context.Background(), Form{Correo: "bad", Clave: "x"})

	if state != Idle {
		t.Errorf("state = %v, want idle", state)
	}
	if h.auth.calls != 0 {
		t.Errorf("expected no network call, got %d", h.auth.calls)
	}
	got := h.view.last()
	if got.msg != "Correo electrónico debe ser un email válido" || got.kind != AlertDanger {
		t.Errorf("alert = %+v", got)
	}
	if len(h.view.loading) != 0 {
		t.Error("loading should not toggle on a validation failure")
	}
}

func TestSubmitEmptyFormJoinsErrors(t *testing.T) {
	h := newHarness(t, &fakeAuth{}, Hooks{})

	h.ctrl.Submit(context.Background(), Form{Correo: "  ", Clave: ""})

	want := "Correo electrónico es requerido\nContraseña es requerido"
	if got := h.view.last().msg; got != want {
		t.Errorf("alert = %q, want %q", got, want)
	}
}

func TestSubmitSuccess(t *testing.T) {
	auth := &fakeAuth{resp: okResponse("jwt-token")}
	var successData client.TokenData
	redirected := false
	h := newHarness(t, auth, Hooks{
		OnLoginSuccess: func(data client.TokenData) { successData = data },
		OnRedirect:     func() { redirected = true },
	})

	state := h.ctrl.Submit(context.Background(), Form{Correo: " ana@itla.edu.do ", Clave: " secreta "})

	if state != Success || h.ctrl.State() != Success {
		t.Fatalf("state = %v", state)
	}
	if h.auth.got != [2]string{"ana@itla.edu.do", "secreta"} {
		t.Errorf("login called with %v, want trimmed values", h.auth.got)
	}
	if h.tokens.Token() != "jwt-token" || !h.tokens.IsAuthenticated() {
		t.Error("token not persisted")
	}
	if got := h.view.last(); got.msg != MsgLoginSuccess || got.kind != AlertSuccess {
		t.Errorf("alert = %+v", got)
	}
	if h.view.resets != 1 {
		t.Errorf("ResetForm called %d times", h.view.resets)
	}
	if successData.AccessToken != "jwt-token" {
		t.Errorf("OnLoginSuccess data = %+v", successData)
	}
	if len(h.view.loading) != 2 || !h.view.loading[0] || h.view.loading[1] {
		t.Errorf("loading transitions = %v, want [true false]", h.view.loading)
	}
	if h.ctrl.Loading() {
		t.Error("loading flag should be cleared")
	}

	if len(h.scheduled) != 1 || h.scheduled[0] != 2*time.Second {
		t.Fatalf("scheduled = %v, want one 2s redirect", h.scheduled)
	}
	if redirected {
		t.Error("redirect should wait for the scheduled delay")
	}
	h.run[0]()
	if !redirected {
		t.Error("expected OnRedirect after the delay")
	}
}

func TestSubmitMissingTokenIsFailure(t *testing.T) {
	tests := []struct {
		name string
		resp *client.LoginResponse
	}{
		{"nil response", nil},
		{"nil data", &client.LoginResponse{}},
		{"empty token", &client.LoginResponse{Data: &client.TokenData{TokenType: "bearer"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hookErr error
			h := newHarness(t, &fakeAuth{resp: tt.resp}, Hooks{OnLoginError: func(err error) { hookErr = err }})

			state := h.ctrl.Submit(context.Background(), Form{Correo: "ana@itla.edu.do", Clave: "x"})

			if state != Failed {
				t.Errorf("state = %v, want failed", state)
			}
			if h.tokens.IsAuthenticated() {
				t.Error("no token should be stored")
			}
			if hookErr == nil || !strings.Contains(hookErr.Error(), MsgInvalidResponse) {
				t.Errorf("OnLoginError got %v", hookErr)
			}
			if got := h.view.last().msg; got != MsgLoginFailed {
				t.Errorf("alert = %q", got)
			}
			if len(h.scheduled) != 0 {
				t.Error("no redirect expected on failure")
			}
		})
	}
}

func TestSubmitClassifiesServerError(t *testing.T) {
	serverErr := &client.RequestError{Kind: client.KindStatus, Status: 401, Detail: "Credenciales inválidas"}
	h := newHarness(t, &fakeAuth{err: serverErr}, Hooks{})

	state := h.ctrl.Submit(context.Background(), Form{Correo: "ana@itla.edu.do", Clave: "mala"})

	if state != Failed {
		t.Errorf("state = %v", state)
	}
	want := "Credenciales inválidas. Verifica tu correo y contraseña."
	if got := h.view.last(); got.msg != want || got.kind != AlertDanger {
		t.Errorf("alert = %+v", got)
	}
	if h.ctrl.Loading() {
		t.Error("loading flag should be cleared after failure")
	}
}

func TestSubmitWhileLoadingIsRejected(t *testing.T) {
	auth := &fakeAuth{resp: okResponse("tok"), block: make(chan struct{})}
	h := newHarness(t, auth, Hooks{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ctrl.Submit(context.Background(), Form{Correo: "ana@itla.edu.do", Clave: "x"})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !h.ctrl.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("first submit never started")
		}
		time.Sleep(time.Millisecond)
	}

	if state := h.ctrl.Submit(context.Background(), Form{Correo: "ana@itla.edu.do", Clave: "x"}); state != Submitting {
		t.Errorf("second submit state = %v, want submitting", state)
	}

	close(auth.block)
	wg.Wait()

	if auth.calls != 1 {
		t.Errorf("login calls = %d, want 1", auth.calls)
	}
}

func TestStartAlreadyAuthenticated(t *testing.T) {
	t.Run("default info alert", func(t *testing.T) {
		h := newHarness(t, &fakeAuth{}, Hooks{})
		if err := h.tokens.SaveToken("tok", "bearer"); err != nil {
			t.Fatal(err)
		}
		h.ctrl.Start()
		if got := h.view.last(); got.msg != MsgAlreadyLoggedIn || got.kind != AlertInfo {
			t.Errorf("alert = %+v", got)
		}
	})

	t.Run("hook replaces alert", func(t *testing.T) {
		called := false
		h := newHarness(t, &fakeAuth{}, Hooks{OnAlreadyAuthenticated: func() { called = true }})
		if err := h.tokens.SaveToken("tok", "bearer"); err != nil {
			t.Fatal(err)
		}
		h.ctrl.Start()
		if !called {
			t.Error("hook not called")
		}
		if len(h.view.alerts) != 0 {
			t.Error("no alert expected when the hook is set")
		}
	})

	t.Run("no session", func(t *testing.T) {
		h := newHarness(t, &fakeAuth{}, Hooks{})
		h.ctrl.Start()
		if len(h.view.alerts) != 0 {
			t.Error("no alert expected without a session")
		}
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t, &fakeAuth{resp: okResponse("tok")}, Hooks{})
	h.ctrl.Submit(context.Background(), Form{Correo: "ana@itla.edu.do", Clave: "x"})

	if err := h.ctrl.Logout(); err != nil {
		t.Fatalf("Logout() unexpected error: %v", err)
	}
	if h.tokens.IsAuthenticated() {
		t.Error("session should be cleared")
	}
	if h.ctrl.State() != Idle {
		t.Errorf("state = %v, want idle", h.ctrl.State())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("No existe un usuario con ese correo"), "No existe un usuario con ese correo electrónico."},
		{errors.New("Credenciales inválidas"), "Credenciales inválidas. Verifica tu correo y contraseña."},
		{errors.New(`Post "http://127.0.0.1:8000/internal/auth/login": dial tcp 127.0.0.1:8000: connect: connection refused`),
			"Error de conexión. Verifica que el servidor esté funcionando."},
		{errors.New("dial tcp: lookup api.itla.invalid: no such host"), "Error de red. Verifica tu conexión a internet."},
		{errors.New("dial tcp 10.0.0.1:80: i/o timeout"), "Error de red. Verifica tu conexión a internet."},
		{errors.New("HTTP error! status: 500"), MsgLoginFailed},
		{nil, MsgLoginFailed},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %q, want %q", got, tt.want)
			}
		})
	}
}
