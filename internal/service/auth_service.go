package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/config"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/middleware"
	"github.com/MILO-debug/POS/internal/repository"
)

// ErrBadCredentials is deliberately identical for unknown user, wrong
// password, and disabled account.
var ErrBadCredentials = fmt.Errorf("%w: invalid username or password", apierror.ErrValidation)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{users: users, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if apierror.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrBadCredentials
	}
	log.Info().Str("username", u.Username).Str("role", u.Role).Msg("login")
	return s.issueTokens(u.ID, u.Username, u.Role, u.EmployeeName)
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims := &middleware.JWTClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid || claims.TokenType != "refresh" {
		return nil, fmt.Errorf("%w: invalid refresh token", apierror.ErrValidation)
	}

	// Re-read the account so revoked or deactivated users lose access at
	// the next refresh.
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apierror.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrBadCredentials
	}
	return s.issueTokens(u.ID, u.Username, u.Role, u.EmployeeName)
}

func (s *authService) issueTokens(userID, username, role, employeeName string) (*dto.LoginResponse, error) {
	accessTTL := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	refreshTTL := time.Duration(s.cfg.JWTRefreshHours) * time.Hour

	access, err := s.sign(userID, username, role, employeeName, "access", accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, username, role, employeeName, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(accessTTL.Seconds()),
		User: dto.UserResponse{
			ID:           userID,
			Username:     username,
			Role:         role,
			EmployeeName: employeeName,
		},
	}, nil
}

func (s *authService) sign(userID, username, role, employeeName, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := middleware.JWTClaims{
		UserID:       userID,
		Username:     username,
		Role:         role,
		EmployeeName: employeeName,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
