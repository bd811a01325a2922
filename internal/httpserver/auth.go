// internal/httpserver/auth.go
//
// Game session tokens.
// POST /game/new and POST /daily/new hand out an HS256 JWT whose "gid" claim
// names the game it was issued for. Every /game/{id}/* route requires that
// token as "Authorization: Bearer <token>" and loads the session into the
// request context.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/set3/internal/store"
)

// ctxSessionKey is the context key type for the loaded *store.Session.
type ctxSessionKey struct{}

// errNoSecret is returned when JWT_SECRET is empty.
var errNoSecret = errors.New("empty token secret")

// signToken creates an HS256 JWT bound to one game id.
func (s *Server) signToken(gameID string) (string, time.Time, error) {
	if s.cfg.JWTSecret == "" {
		return "", time.Time{}, errNoSecret
	}
	now := time.Now()
	exp := now.Add(s.cfg.TokenTTL())
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseToken validates tokenStr and returns its game id.
func (s *Server) parseToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if s.cfg.JWTSecret == "" {
			return nil, errNoSecret
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errors.New("token without game id")
	}
	return gid, nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// requireGameToken enforces a valid token for the {id} URL parameter and
// injects the session into the request context.
func (s *Server) requireGameToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			gid, err := s.parseToken(tokenStr)
			if err != nil || gid != chi.URLParam(r, "id") {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			sess, err := s.store.Get(r.Context(), gid)
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "store_failed")
				return
			}
			ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session injected by requireGameToken.
func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}
