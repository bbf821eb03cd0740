// internal/httpserver/auth.go
//
// Authentication for the HTTP shell.
//   - /auth/signup, /auth/login, /auth/logout, GET /auth/me, GET /rounds/mine.
//   - HS256 JWT carried in an HttpOnly cookie or an Authorization: Bearer header.
//   - Guests get a long-lived anonymous id cookie; their rounds move to the
//     account on signup/login.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/sets/internal/accounts"
)

const anonCookieName = "sets_anon"

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *authUser {
	u, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return u
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.accounts.ByID(r.Context(), userFrom(r.Context()).ID)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	})

	s.r.With(s.requireAuth()).Get("/rounds/mine", func(w http.ResponseWriter, r *http.Request) {
		out, err := s.results.ByOwner(r.Context(), userFrom(r.Context()).ID, 0)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("list rounds")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
}

// handleSignup creates a new player, signs a JWT, sets the auth cookie and
// claims guest rounds.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.accounts.Create(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, accounts.ErrTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case errors.Is(err, accounts.ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid_signup")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("create player")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	s.issue(w, r, p)
	writeJSON(w, http.StatusCreated, p)
}

// handleLogin authenticates a player, sets the cookie and claims guest rounds.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.accounts.Authenticate(r.Context(), body.Username, body.Password)
	if errors.Is(err, accounts.ErrBadCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	s.issue(w, r, p)
	writeJSON(w, http.StatusOK, p)
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// issue signs a token for p, sets the cookie and returns the token in the
// Authorization response header for non-browser clients.
func (s *Server) issue(w http.ResponseWriter, r *http.Request, p *accounts.Account) {
	tok, exp, err := s.signJWT(p.ID, p.Username)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("sign token")
		return
	}
	s.setAuthCookie(w, tok, exp)
	w.Header().Set("Authorization", "Bearer "+tok)

	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if n, err := s.results.Claim(r.Context(), c.Value, p.ID); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("claim guest rounds")
		} else if n > 0 {
			hlog.FromRequest(r).Info().Int64("rounds", n).Str("player", p.ID).Msg("claimed guest rounds")
		}
	}
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TokenTTL())
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseJWT validates a token and extracts the user.
func (s *Server) parseJWT(tok string) (*authUser, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, errors.New("token without subject")
	}
	return &authUser{ID: id, Username: username}, nil
}

// setAuthCookie writes the auth token cookie; an empty token deletes it.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := s.cookie(s.cfg.CookieName, token)
	if token == "" {
		c.MaxAge = -1
	} else {
		c.Expires = exp
	}
	http.SetCookie(w, c)
}

func (s *Server) cookie(name, value string) *http.Cookie {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is
// present. It never 401s.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.bearerOrCookie(r); tok != "" {
				if u, err := s.parseJWT(tok); err == nil {
					if _, err := s.accounts.ByID(r.Context(), u.ID); err == nil {
						r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT for an existing player.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := s.parseJWT(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			// Ensure the player still exists
			if _, err := s.accounts.ByID(r.Context(), u.ID); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// callerID returns the player id when logged in, otherwise the anonymous
// cookie id (set here on first use).
func (s *Server) callerID(w http.ResponseWriter, r *http.Request) (id string, anonymous bool) {
	if u := userFrom(r.Context()); u != nil {
		return u.ID, false
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	id = accounts.NewID()
	c := s.cookie(anonCookieName, id)
	c.Expires = s.now().Add(180 * 24 * time.Hour)
	http.SetCookie(w, c)
	return id, true
}
