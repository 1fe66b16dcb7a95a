package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrEmptySubject  = errors.New("subject cannot be empty")
	ErrEmptyRole     = errors.New("role cannot be empty")
	ErrInvalidRole   = errors.New("invalid role")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// Valid roles
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

var validRoles = map[string]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// Claims represents JWT claims
type Claims struct {
	Subject   string    `json:"sub"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// JWTManager manages JWT token generation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager.
// Returns an error if the secret is shorter than 32 characters (security requirement).
func NewJWTManager(secret string, tokenDuration time.Duration) (*JWTManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}

	return &JWTManager{
		secretKey:     []byte(secret),
		tokenDuration: tokenDuration,
	}, nil
}

// GenerateToken generates a new JWT token for an operator identity
func (m *JWTManager) GenerateToken(subject, role string) (string, error) {
	// Validate inputs
	if subject == "" {
		return "", ErrEmptySubject
	}
	if role == "" {
		return "", ErrEmptyRole
	}
	if !validRoles[role] {
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	now := time.Now()
	expiresAt := now.Add(m.tokenDuration)

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	// Create token with claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign token with secret key
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	// Parse token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// Extract claims
	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	subject, ok := claimsMap["sub"].(string)
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: missing or invalid sub", ErrInvalidClaims)
	}

	role, ok := claimsMap["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: missing or invalid role", ErrInvalidClaims)
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	// Extract timestamps
	expFloat, ok := claimsMap["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid exp", ErrInvalidClaims)
	}
	expiresAt := time.Unix(int64(expFloat), 0)

	iatFloat, ok := claimsMap["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid iat", ErrInvalidClaims)
	}
	issuedAt := time.Unix(int64(iatFloat), 0)

	// Check expiration
	if time.Now().After(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &Claims{
		Subject:   subject,
		Role:      role,
		ExpiresAt: expiresAt,
		IssuedAt:  issuedAt,
	}, nil
}

// Name returns the validator name for logging/debugging
func (m *JWTManager) Name() string {
	return "jwt-hs256"
}

// GetTokenDuration returns the configured token duration
func (m *JWTManager) GetTokenDuration() time.Duration {
	return m.tokenDuration
}
