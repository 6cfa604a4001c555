package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Manager struct {
	secret                 []byte
	accessTokenExpireMin   int
	refreshTokenExpireDays int
}

type Claims struct {
	jwt.RegisteredClaims
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
}

// ErrEmptySecret is returned when tokens are signed or checked without a key.
var ErrEmptySecret = errors.New("jwt secret is empty")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

func NewManager(secret string, accessExpMin, refreshExpDays int) *Manager {
	return &Manager{
		secret:                 []byte(secret),
		accessTokenExpireMin:   accessExpMin,
		refreshTokenExpireDays: refreshExpDays,
	}
}

// AccessTokenTTL reports how long issued access tokens stay valid.
func (m *Manager) AccessTokenTTL() time.Duration {
	return time.Duration(m.accessTokenExpireMin) * time.Minute
}

func (m *Manager) GenerateAccessToken(userID uint, username, role string) (string, error) {
	return m.sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.AccessTokenTTL())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
		UserID:    userID,
		Username:  username,
		Role:      role,
		TokenType: tokenTypeAccess,
	})
}

func (m *Manager) GenerateRefreshToken(userID uint, username string) (string, error) {
	return m.sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(m.refreshTokenExpireDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
		UserID:    userID,
		Username:  username,
		TokenType: tokenTypeRefresh,
	})
}

func (m *Manager) sign(claims *Claims) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrEmptySecret
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses an access token.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken parses a refresh token.
func (m *Manager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, tokenTypeRefresh)
}

func (m *Manager) validate(tokenString, tokenType string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errors.New("unexpected token type")
	}
	return claims, nil
}
