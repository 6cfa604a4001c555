package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/jwt"
	"github.com/tgo/embedhub/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be one of admin, manager, default")
	ErrUserNotFound       = errors.New("user not found")
	ErrAPIKeyNotFound     = errors.New("api key not found")
)

type AuthService struct {
	users      *repository.UserRepository
	apiKeys    *repository.APIKeyRepository
	jwtManager *jwt.Manager
}

func NewAuthService(users *repository.UserRepository, apiKeys *repository.APIKeyRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{users: users, apiKeys: apiKeys, jwtManager: jwtManager}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Valid        bool        `json:"valid"`
	AccessToken  string      `json:"token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         *model.User `json:"user,omitempty"`
	Message      *string     `json:"message"`
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil || user.Suspended {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	user, err := s.users.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*TokenResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Valid:        true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.jwtManager.AccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}

// UserFromToken resolves an access token to an active user.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.users.FindActiveByID(ctx, claims.UserID)
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func (s *AuthService) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleDefault
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, errors.New("username is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateAPIKey issues a new secret for the public API.
func (s *AuthService) CreateAPIKey(ctx context.Context, createdBy *uint) (*model.APIKey, error) {
	secret, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	key := &model.APIKey{Secret: secret, CreatedBy: createdBy}
	if err := s.apiKeys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to create api key: %w", err)
	}
	return key, nil
}

// RevokeAPIKey deletes the key with the given id.
func (s *AuthService) RevokeAPIKey(ctx context.Context, id uint) error {
	if _, err := s.apiKeys.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAPIKeyNotFound
		}
		return err
	}
	return s.apiKeys.Delete(ctx, id)
}

// SetSuspended blocks or restores logins for username. Issued tokens stop
// working on the next request because sessions only resolve active users.
func (s *AuthService) SetSuspended(ctx context.Context, username string, suspended bool) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Suspended = suspended
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ValidAPIKey reports whether secret belongs to an issued key.
func (s *AuthService) ValidAPIKey(ctx context.Context, secret string) bool {
	if secret == "" {
		return false
	}
	_, err := s.apiKeys.FindBySecret(ctx, secret)
	return err == nil
}

var randRead = rand.Read

func generateAPIKey() (string, error) {
	b := make([]byte, 16)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return "ak_" + hex.EncodeToString(b), nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
