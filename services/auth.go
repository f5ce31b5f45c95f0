package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"elabcrm-backend/models"
	"elabcrm-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type AuthService struct {
	db       *gorm.DB
	secret   string
	tokenTTL time.Duration
	tokens   utils.TokenStore
}

func NewAuthService(db *gorm.DB, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{db: db, secret: secret, tokenTTL: tokenTTL}
}

// WithTokenStore enables logout revocation.
func (s *AuthService) WithTokenStore(store utils.TokenStore) *AuthService {
	s.tokens = store
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user := models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Name:     strings.TrimSpace(in.Name),
		Password: in.Password, // hashed in BeforeCreate
		Role:     "staff",
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError("create user", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StoreError{Op: "find user", Err: err}
	}

	if !user.IsActive || !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		return nil, &StoreError{Op: "update last login", Err: err}
	}
	user.LastLogin = &now

	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, &NotFoundError{Entity: "user", ID: userID}
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound("user", userID, err)
	}
	return &user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.tokens == nil || tokenID == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, tokenID, time.Until(expiresAt))
}

func (s *AuthService) issue(user models.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(s.secret, user.ID.String(), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token.Token, ExpiresAt: token.ExpiresAt, User: user}, nil
}
