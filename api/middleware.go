package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/services"
)

type sessionContextKey struct{}

// WithSession returns a copy of ctx that carries s
func WithSession(ctx context.Context, s services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session the guard attached to the request
func SessionFromContext(ctx context.Context) (services.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(services.Session)
	return s, ok
}

// sessionInfo is the go-guardian user cached per token. The full session is
// kept so its expiry can be checked on every request, cached or not.
type sessionInfo struct {
	*auth.DefaultUser
	session services.Session
}

func newSessionInfo(s services.Session) *sessionInfo {
	return &sessionInfo{
		DefaultUser: auth.NewDefaultUser(s.Email, s.UserID, nil, nil),
		session:     s,
	}
}

// SessionGuard authenticates requests. API routes take a bearer token issued
// by the AuthService, the token endpoint takes basic credentials.
type SessionGuard struct {
	Auth        *services.AuthService
	tokens      auth.Authenticator
	credentials auth.Authenticator
}

// NewSessionGuard sets up the go-guardian strategies. Verified tokens and
// credentials are cached for cacheTTL.
func NewSessionGuard(a *services.AuthService, cacheTTL time.Duration) *SessionGuard {
	g := &SessionGuard{Auth: a}
	ctx := context.Background()

	g.tokens = auth.New()
	g.tokens.EnableStrategy(bearer.CachedStrategyKey, bearer.New(g.validateToken, store.NewFIFO(ctx, cacheTTL)))

	g.credentials = auth.New()
	g.credentials.EnableStrategy(basic.StrategyKey, basic.New(g.validateCredentials, store.NewFIFO(ctx, cacheTTL)))
	return g
}

// Middleware rejects requests without a valid, unexpired bearer token and
// attaches the caller's session to the request context.
func (g *SessionGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// browsers cannot set headers on websocket upgrades
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r = r.Clone(r.Context())
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}

		info, err := g.tokens.Authenticate(r)
		if err != nil {
			g.reject(w, r, g.classify(r))
			return
		}
		s, ok := sessionOf(info)
		if !ok {
			g.reject(w, r, services.ErrUnauthorized)
			return
		}
		if s.Expired(g.Auth.Now()) {
			g.reject(w, r, services.ErrAuthExpired)
			return
		}
		zap.S().Debugw("user authenticated", "userId", s.UserID, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// Credentials guards the token endpoint with basic email and password auth.
func (g *SessionGuard) Credentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := g.credentials.Authenticate(r)
		if err != nil {
			g.reject(w, r, services.ErrUnauthorized)
			return
		}
		s, ok := sessionOf(info)
		if !ok {
			g.reject(w, r, services.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (g *SessionGuard) validateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	s, err := g.Auth.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(s), nil
}

func (g *SessionGuard) validateCredentials(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	user, err := g.Auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(services.Session{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Name:   user.Name,
	}), nil
}

// classify re-parses a rejected token so an expired session gets its own
// message. go-guardian does not wrap strategy errors.
func (g *SessionGuard) classify(r *http.Request) error {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		return services.ErrUnauthorized
	}
	if _, err := g.Auth.ParseToken(token); errors.Is(err, services.ErrAuthExpired) {
		return services.ErrAuthExpired
	}
	return services.ErrUnauthorized
}

func (g *SessionGuard) reject(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Debugw("unauthorized", "url", r.URL.String())
	config.ErrorStatus(err.Error(), http.StatusUnauthorized, w, err)
}

func sessionOf(info auth.Info) (services.Session, bool) {
	si, ok := info.(*sessionInfo)
	if !ok {
		return services.Session{}, false
	}
	return si.session, true
}
