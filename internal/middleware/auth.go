package middleware

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/config"
	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/utils"
)

type Middleware struct {
	Config       *config.Config
	rateLimiters sync.Map
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{Config: cfg}
}

// AuthMiddleware guards dashboard routes with a viewer JWT. It is a no-op
// when auth is disabled or no secret is configured.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Config.AuthDisabled || m.Config.JWTSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		viewerID, err := m.parseToken(r)
		if err != nil {
			utils.ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), "viewer_id", viewerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseToken accepts a Bearer header or, for websocket upgrades where custom
// headers are unavailable, a token query parameter.
func (m *Middleware) parseToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("invalid authorization format")
		}
		return utils.ParseViewerIDFromToken(parts[1], m.Config.JWTSecret)
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return utils.ParseViewerIDFromToken(token, m.Config.JWTSecret)
	}
	return "", errors.New("missing credentials")
}

func (m *Middleware) CORS(next http.Handler) http.Handler {
	allowed := m.Config.AllowedOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin, allowed) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(allowed) == 1 && allowed[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true // non-browser clients
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// simple token bucket per IP
type limiter struct {
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

// allow takes one token, refilling the bucket when the period elapsed.
func (l *limiter) allow(maxTokens int, refillPeriod time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastRefill) > refillPeriod {
		l.tokens = maxTokens
		l.lastRefill = now
	}
	if l.tokens <= 0 {
		return false
	}
	l.tokens--
	return true
}

func (m *Middleware) RateLimitMiddleware(next http.Handler) http.Handler {
	const (
		maxTokens    = 60
		refillPeriod = time.Minute
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := strings.Split(r.RemoteAddr, ":")[0]

		val, _ := m.rateLimiters.LoadOrStore(ip, &limiter{tokens: maxTokens, lastRefill: time.Now()})
		if !val.(*limiter).allow(maxTokens, refillPeriod) {
			utils.ErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the response status for the request log. Hijack must
// pass through so websocket upgrades survive the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (m *Middleware) RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
