package web

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"itlalogin/models"
	"itlalogin/web/api"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"golang.org/x/time/rate"
)

// CorsMiddleware allows any origin, so the login page works when opened from another host.
func CorsMiddleware(c rweb.Context) error {
	c.Response().SetHeader("Access-Control-Allow-Origin", "*")
	c.Response().SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Response().SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

	// Handle preflight OPTIONS requests
	if c.Request().Method() == http.MethodOptions {
		c.SetStatus(http.StatusOK)
		return nil
	}

	return c.Next()
}

// JWTAuthMiddleware attaches the token's usuario id to the request context.
// It never blocks; handlers decide whether auth is required.
// The scheme is matched case-insensitively since clients send "bearer".
func JWTAuthMiddleware(issuer *models.TokenIssuer) rweb.Handler {
	return func(c rweb.Context) error {
		c.Set(api.CtxAuthenticated, false)

		scheme, token, found := strings.Cut(c.Request().Header("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
			return c.Next()
		}

		claims, err := issuer.Validate(token)
		if err != nil {
			// Don't log every invalid token attempt
			return c.Next()
		}

		id, err := claims.UsuarioID()
		if err != nil {
			logger.LogErr(err, "token with unusable subject")
			return c.Next()
		}

		c.Set(api.CtxUsuarioID, id)
		c.Set(api.CtxAuthenticated, true)
		return c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers. apiOrigin is added to
// connect-src when the page talks to an API on another origin.
func SecurityHeadersMiddleware(apiOrigin string) rweb.Handler {
	connectSrc := "connect-src 'self'"
	if apiOrigin != "" {
		connectSrc += " " + apiOrigin
	}

	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self'",
		"img-src 'self' data:",
		"font-src 'self' data:",
		connectSrc,
	}, "; ")

	return func(c rweb.Context) error {
		c.Response().SetHeader("X-Content-Type-Options", "nosniff")
		c.Response().SetHeader("X-Frame-Options", "DENY")
		c.Response().SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Response().SetHeader("Content-Security-Policy", csp)
		return c.Next()
	}
}

const msgRateLimited = "Demasiadas solicitudes. Intenta nuevamente en un momento."

// visitorTTL is how long an idle client's limiter is kept.
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client address.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newIPLimiter(requestsPerMinute int) *ipLimiter {
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    requestsPerMinute,
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for addr, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, addr)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits POSTs per client address. Zero disables it.
func RateLimitMiddleware(requestsPerMinute int) rweb.Handler {
	if requestsPerMinute <= 0 {
		return func(c rweb.Context) error { return c.Next() }
	}
	limiter := newIPLimiter(requestsPerMinute)

	return func(c rweb.Context) error {
		if c.Request().Method() != http.MethodPost {
			return c.Next()
		}

		ip := clientIP(c)
		if !limiter.allow(ip, time.Now()) {
			logger.Info("Rate limit exceeded", "ip", ip)
			return api.WriteDetail(c, http.StatusTooManyRequests, msgRateLimited)
		}
		return c.Next()
	}
}

func clientIP(c rweb.Context) string {
	if fwd := c.Request().Header("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.Request().Header("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

// LoggingMiddleware logs each request with its duration.
func LoggingMiddleware(c rweb.Context) error {
	start := time.Now()

	err := c.Next()

	method, path := c.Request().Method(), c.Request().Path()
	durationMS := strconv.FormatInt(time.Since(start).Milliseconds(), 10)
	if err != nil {
		logger.LogErr(err, "Request failed", "method", method, "path", path, "duration_ms", durationMS)
		return err
	}
	logger.Debug("Request completed", "method", method, "path", path, "duration_ms", durationMS)
	return nil
}
