package api

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginTokenParam is the query parameter carrying the login token on the
// WebSocket upgrade request.
const LoginTokenParam = "loginToken"

// ErrUnauthorized is returned for a missing, malformed or expired token.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator resolves a login token to a username.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// loginClaims is the token body issued by the login service.
type loginClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenAuthenticator validates HS256 login tokens signed with a shared secret.
type TokenAuthenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenAuthenticator creates an authenticator. An empty secret gets a
// random one, which only accepts tokens this process issued itself.
func NewTokenAuthenticator(secret, issuer string, ttl time.Duration) *TokenAuthenticator {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Printf("⚠️ Failed to generate token secret: %v", err)
		}
		log.Println("⚠️ GAME_JWT_SECRET not set, using a random per-process secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenAuthenticator{secret: key, issuer: issuer, ttl: ttl}
}

// Authenticate checks signature, algorithm, expiry and issuer, and returns the
// username claim (falling back to sub).
func (a *TokenAuthenticator) Authenticate(tokenStr string) (string, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &loginClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return username, nil
}

// Issue signs a token for username valid for the configured TTL.
func (a *TokenAuthenticator) Issue(username string) (string, error) {
	return a.IssueAt(username, time.Now())
}

// IssueAt signs a token as if issued at now.
func (a *TokenAuthenticator) IssueAt(username string, now time.Time) (string, error) {
	claims := loginClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// tokenFromRequest reads the login token from the query string, falling back
// to a bearer Authorization header.
func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get(LoginTokenParam); t != "" {
		return t
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
