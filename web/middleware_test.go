package web

import (
	"strings"
	"testing"
	"time"

	"itlalogin/config"
)

func TestIPLimiterAllow(t *testing.T) {
	l := newIPLimiter(3)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1", now) {
			t.Fatalf("request %d should be allowed within the burst", i+1)
		}
	}
	if l.allow("10.0.0.1", now) {
		t.Error("fourth request in the same instant should be limited")
	}
	if !l.allow("10.0.0.2", now) {
		t.Error("a different address has its own bucket")
	}

	// One token refills every 20s at 3 per minute
	if !l.allow("10.0.0.1", now.Add(21*time.Second)) {
		t.Error("request after refill should be allowed")
	}
}

func TestIPLimiterSweepsIdleVisitors(t *testing.T) {
	l := newIPLimiter(10)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	l.allow("10.0.0.1", start)
	l.allow("10.0.0.2", start.Add(visitorTTL+2*time.Minute))

	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor should have been swept")
	}
	if _, ok := l.visitors["10.0.0.2"]; !ok {
		t.Error("active visitor should be kept")
	}
}

func TestConfigScript(t *testing.T) {
	settings := config.Default()
	settings.APIBaseURL = "https://api.itla.edu.do"

	js, err := configScript(settings)
	if err != nil {
		t.Fatalf("configScript() unexpected error: %v", err)
	}

	got := string(js)
	if !strings.HasPrefix(got, "window.CONFIG = Object.freeze({") {
		t.Errorf("unexpected prefix: %q", got)
	}
	for _, want := range []string{
		`"API_BASE_URL":"https://api.itla.edu.do"`,
		`"REGISTER":"/internal/auth/registrar"`,
		`"USER_DATA":"userData"`,
		`"ALERT_AUTO_HIDE":5000`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("config script missing %s", want)
		}
	}
}

func TestAPIOrigin(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://127.0.0.1:8000", "http://127.0.0.1:8000"},
		{"https://api.itla.edu.do/v1/", "https://api.itla.edu.do"},
		{"", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			settings := config.Default()
			settings.APIBaseURL = tt.base
			if got := apiOrigin(settings); got != tt.want {
				t.Errorf("apiOrigin() = %q, want %q", got, tt.want)
			}
		})
	}
}
