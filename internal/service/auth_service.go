package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthConfig defines configuration for authentication flows. Tokens are
// only issued when AccessTokenSecret is set.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService checks back-office credentials.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 8 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config}
}

// VerifyLogin returns the user whose email matches exactly and whose stored
// hash accepts password. A nil user with a nil error means the credentials
// were rejected: unknown email, no stored hash, or a wrong password.
func (s *AuthService) VerifyLogin(ctx context.Context, email, password string) (*models.PublicUser, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("credential lookup failed", zap.Error(err))
		return nil, appErrors.Internal(err, "failed to verify credentials")
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		s.logger.Error("stored password hash unusable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to verify credentials")
	}

	public := user.Public()
	return &public, nil
}

// Login validates the payload, verifies the credentials and, when a
// signing secret is configured, issues an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Email y contraseña son requeridos")
	}

	user, err := s.VerifyLogin(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Info("login rejected", zap.String("email", req.Email))
		return nil, appErrors.ErrInvalidCredentials
	}

	res := &models.LoginResponse{Success: true, Usuario: *user, Message: "Login exitoso"}
	if s.config.AccessTokenSecret != "" {
		token, err := s.generateAccessToken(user)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to create access token")
		}
		res.Token = token
	}
	return res, nil
}

// ValidateToken parses and verifies an HS256 access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if s.config.AccessTokenSecret == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token signing disabled")
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "Token inválido")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Token inválido")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.PublicUser) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
