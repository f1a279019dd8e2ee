package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrNotAdmin           = errors.New("admin role required")
)

// AdminClaims are the claims carried by an admin token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies admin tokens. There are no user accounts;
// the single admin identity comes from configuration.
type AuthService interface {
	Login(username, password string) (token string, expiresInSeconds int, err error)
	ValidateAdminToken(tokenString string) (*AdminClaims, error)
}

type authService struct {
	admin  config.AdminConfig
	secret string
	expiry time.Duration
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(admin config.AdminConfig, jwtCfg config.JWTConfig) AuthService {
	expiry := time.Duration(jwtCfg.ExpirySecond) * time.Second
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &authService{
		admin:  admin,
		secret: jwtCfg.Secret,
		expiry: expiry,
	}
}

// Login checks the configured admin credentials and issues an HS256 token
// with the admin role claim.
func (s *authService) Login(username, password string) (string, int, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) != 1 {
		return "", 0, ErrInvalidCredentials
	}

	if s.admin.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
			return "", 0, ErrInvalidCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) != 1 {
		return "", 0, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, int(s.expiry.Seconds()), nil
}

// ValidateAdminToken verifies the signature, then checks expiry and role
// manually so each failure maps to its own error code. Expiry is excluded
// from library validation for that reason.
func (s *authService) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithoutClaimsValidation())

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}
	if claims.Role != "admin" {
		return nil, ErrNotAdmin
	}

	return claims, nil
}
