package utils // package utils provides helper functions for token creation and validation

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // uuid generates the refresh token id (jti)
)

// Token type markers embedded in the "type" claim.  An access token can
// never be used where a refresh token is required and vice versa; the
// guards reject on a mismatching marker before any other check.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for any token that fails signature,
	// structure or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token is past its exp claim.
	ErrExpiredToken = errors.New("token has expired")
	// ErrWrongTokenType is returned when a valid token carries the wrong
	// type marker for the requested operation.
	ErrWrongTokenType = errors.New("wrong token type")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, fully self-contained, and validated by
// signature and expiry alone; no database row backs them.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived signed JWT used to obtain new
// access tokens.  Every refresh token carries a fresh random jti which is
// recorded in the refresh_tokens table at login so it can be revoked
// individually at logout.
type RefreshToken struct {
	Token string    // the serialized JWT string returned to the client
	JTI   string    // unique token id, the revocation ledger key
	Exp   time.Time // UTC expiration time
}

// Claims is the claim set shared by both token kinds.  The subject holds
// the user id string-encoded; user ids are integers at rest and only ride
// as strings inside the token payload.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID decodes the subject claim back into the numeric user id.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID and a TTL in minutes and returns the signed
// token together with its expiration time.  The claim set is sub, type,
// exp and iat.
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs a refresh JWT valid for ttlDays.  The
// jti claim is a fresh UUIDv4 per issuance, never reused; the caller is
// expected to record (jti, user, expiry) in the revocation ledger before
// handing the token to the client.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	jti := uuid.NewString()
	claims := Claims{
		Type: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseToken verifies signature and expiry and returns the claims.  The
// signing method is pinned to HMAC; tokens signed with anything else are
// rejected regardless of the key.
func ParseToken(secret, raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccessToken parses raw and additionally requires the access type
// marker.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseRefreshToken parses raw and additionally requires the refresh type
// marker.  Revocation is not checked here; that is the ledger's job.
func ParseRefreshToken(secret, raw string) (*Claims, error) {
	claims, err := ParseToken(secret, raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
