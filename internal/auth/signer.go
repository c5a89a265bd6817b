package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vismay-core/internal/model"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the decoded token payload. Subject carries the user id; tenant,
// role and kind ride as custom claims next to the registered set.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	Kind     string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string  { return c.Subject }
func (c *Claims) TokenID() string { return c.ID }

// Signer abstracts token signing and verification so tests can substitute a
// deterministic implementation.
type Signer interface {
	Sign(claims *Claims) (string, error)
	Parse(tokenString string) (*Claims, error)
}

// HS256Signer signs and verifies tokens with a symmetric server-held secret.
type HS256Signer struct {
	secret []byte
}

func NewHS256Signer(secret string) *HS256Signer {
	return &HS256Signer{secret: []byte(secret)}
}

func (s *HS256Signer) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies the signature and registered claims. Expiry maps to
// ErrTokenExpired; every other failure maps to ErrTokenMalformed so the
// caller never has to distinguish library-level detail.
func (s *HS256Signer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrTokenMalformed
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenMalformed
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, model.ErrTokenMalformed
	}

	return claims, nil
}

// NewClaims builds the claim set for a freshly issued token. Timestamps are
// absolute; ttl is applied once here, at issuance.
func NewClaims(userID string, tenantID string, role string, kind string, jti string, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		TenantID: tenantID,
		Role:     role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
