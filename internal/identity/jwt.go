package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure reasons. Verification is purely cryptographic and
// time-based: the registry is never consulted, so a user removed after
// login keeps a working token until it expires.
var (
	ErrTokenMalformed    = errors.New("malformed token")
	ErrTokenBadSignature = errors.New("bad token signature")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
)

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "bookstack-api",
	}
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// New issues a signed assertion binding username, expiring at issue time
// plus ttl. It does not check that the username is registered; callers
// authenticate first.
func (t *TokenMaker) New(username string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, ErrTokenInvalid
	}

	if token == nil || !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if c.Issuer != t.issuer {
		return Claims{}, ErrTokenInvalid
	}
	if c.Username == "" {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}
