package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const defaultSecret = "change-me-course-commerce"

// Claims represents the JWT claims structure
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RoleCode     string    `json:"role_code"`
	Privileges   []string  `json:"privileges"`
	TokenVersion string    `json:"token_version"`
	jwt.RegisteredClaims
}

// Subject is the identity a token is issued for.
type Subject struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	RoleCode     string
	Privileges   []string
	TokenVersion string
}

// Issuer signs and verifies HS256 tokens with one shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	name   string
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		secret = defaultSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, name: "course-commerce"}
}

// Generate creates a signed token for the subject.
func (i *Issuer) Generate(sub Subject) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       sub.UserID,
		Email:        sub.Email,
		Name:         sub.Name,
		RoleCode:     sub.RoleCode,
		Privileges:   sub.Privileges,
		TokenVersion: sub.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.name,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate parses a token and returns its claims.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.name))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
