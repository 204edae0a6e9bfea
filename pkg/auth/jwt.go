// Package auth signs the short-lived bearer tokens batch runs present to
// metrics gateways behind an authenticating proxy.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrEmptyJob      = errors.New("job cannot be empty")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// DefaultTokenDuration covers one push with generous clock skew.
const DefaultTokenDuration = 5 * time.Minute

// Issuer is the iss claim of every token.
const Issuer = "asrel"

// Claims represents push token claims
type Claims struct {
	Job       string    `json:"job"`
	RunID     string    `json:"run_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// JWTManager signs and validates push tokens
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager.
// Returns an error if the secret is shorter than 32 characters.
func NewJWTManager(secret string, tokenDuration time.Duration) (*JWTManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	if tokenDuration <= 0 {
		tokenDuration = DefaultTokenDuration
	}

	return &JWTManager{
		secretKey:     []byte(secret),
		tokenDuration: tokenDuration,
	}, nil
}

// GenerateToken signs a token for one push of job. runID may be empty.
func (m *JWTManager) GenerateToken(job, runID string) (string, error) {
	if job == "" {
		return "", ErrEmptyJob
	}

	now := time.Now()
	expiresAt := now.Add(m.tokenDuration)

	claims := jwt.MapClaims{
		"iss":    Issuer,
		"sub":    job,
		"run_id": runID,
		"exp":    expiresAt.Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns its claims. It is the
// receiving side of BearerHeader: a gateway or proxy in front of the
// Pushgateway that shares the secret calls it to admit pushes. asrel itself
// only signs.
func (m *JWTManager) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	job, err := claimsMap.GetSubject()
	if err != nil || job == "" {
		return nil, fmt.Errorf("%w: missing or invalid sub", ErrInvalidClaims)
	}
	runID, _ := claimsMap["run_id"].(string)

	exp, err := claimsMap.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing or invalid exp", ErrInvalidClaims)
	}
	iat, err := claimsMap.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, fmt.Errorf("%w: missing or invalid iat", ErrInvalidClaims)
	}

	return &Claims{
		Job:       job,
		RunID:     runID,
		ExpiresAt: exp.Time,
		IssuedAt:  iat.Time,
	}, nil
}

// BearerHeader returns an Authorization header carrying a fresh token.
func (m *JWTManager) BearerHeader(job, runID string) (http.Header, error) {
	token, err := m.GenerateToken(job, runID)
	if err != nil {
		return nil, err
	}
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	return h, nil
}
