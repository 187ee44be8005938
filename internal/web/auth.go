package web

// auth.go implements the session layer: a fixed in-memory user store
// with bcrypt password hashes, and a signed session cookie carrying
// the user's role as a JWT. Session state lives entirely in the
// cookie; the server keeps nothing.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/imm-a8ub/backoffice/internal/core"
)

// sessionCookie is the name of the session token cookie.
const sessionCookie = "backoffice_session"

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the authenticated principal derived from the cookie.
type Session struct {
	User string
	Role core.Role
}

// sessionClaims is the JWT payload stored in the cookie.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// dummyHash is a valid bcrypt hash of an unused password, compared
// against when the username does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// userStore holds the two built-in accounts. Passwords are hashed at
// startup so plaintext never sits in memory longer than config load.
type userStore struct {
	hashes map[string][]byte
	roles  map[string]core.Role
}

// newUserStore hashes the configured credentials for the admin and
// employee accounts.
func newUserStore(adminPassword, employeePassword string) (*userStore, error) {
	store := &userStore{
		hashes: make(map[string][]byte, 2),
		roles: map[string]core.Role{
			"admin":    core.RoleAdmin,
			"employee": core.RoleEmployee,
		},
	}

	for user, password := range map[string]string{
		"admin":    adminPassword,
		"employee": employeePassword,
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", user, err)
		}
		store.hashes[user] = hash
	}
	return store, nil
}

// authenticate checks a username/password pair and returns the role.
func (u *userStore) authenticate(username, password string) (core.Role, bool) {
	hash, ok := u.hashes[username]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", false
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", false
	}
	return u.roles[username], true
}

// sessionManager signs and verifies the session cookie.
type sessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// issue writes a fresh session cookie for the user.
func (m *sessionManager) issue(w http.ResponseWriter, user string, role core.Role) error {
	now := time.Now()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clear expires the session cookie.
func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// verify parses and validates the session cookie on a request.
func (m *sessionManager) verify(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, false
	}

	role := core.Role(claims.Role)
	if !role.Authenticated() {
		return Session{}, false
	}
	return Session{User: claims.Subject, Role: role}, true
}

// requireSession rejects requests without a valid session and stores
// the session in the request context for handlers.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessions.verify(r)
		if !ok {
			slog.Warn("unauthorized access attempt",
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom extracts the session placed in context by requireSession.
func sessionFrom(ctx context.Context) Session {
	session, _ := ctx.Value(sessionContextKey).(Session)
	return session
}
