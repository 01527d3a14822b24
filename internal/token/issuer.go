package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingUserID = errors.New("token is missing a valid user id")
	ErrMissingExpiry = errors.New("token is missing an expiry")
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt parser after the registered claims pass.
// Requiring exp here covers parsers built without WithExpirationRequired.
func (c *Claims) Validate() error {
	if c.ExpiresAt == nil {
		return ErrMissingExpiry
	}
	if _, err := uuid.Parse(c.UserID); err != nil {
		return ErrMissingUserID
	}
	return nil
}

// Pair is what every successful authentication hands back to the caller.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer signs HS256 tokens. Revocation is not tracked: a token is valid
// exactly as long as its signature checks out and it has not expired.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for the user.
func (i *Issuer) IssuePair(userID uuid.UUID, isAdmin bool) (*Pair, error) {
	access, err := i.sign(userID, isAdmin, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(userID, isAdmin, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(userID uuid.UUID, isAdmin bool, secret []byte, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	claims := Claims{
		UserID:  userID.String(),
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// AccessKeyfunc resolves the access secret for parsers that only accept HMAC.
func (i *Issuer) AccessKeyfunc() jwt.Keyfunc {
	return hmacKeyfunc(i.accessSecret)
}

func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return i.verify(raw, i.accessSecret)
}

func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return i.verify(raw, i.refreshSecret)
}

func (i *Issuer) verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, hmacKeyfunc(secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func hmacKeyfunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}
}
