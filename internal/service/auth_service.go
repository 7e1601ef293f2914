package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/identity"
)

var ErrAuthFailure = errors.New("authentication failed")
var ErrTokenInvalid = errors.New("token is invalid or expired")

const (
	msgRegistered       = "Registered successfully. Check your email for the confirmation code."
	msgAccountExists    = "This email is already registered. Please log in instead."
	msgConfirmed        = "User confirmed successfully."
	msgAlreadyConfirmed = "User is already confirmed. Please log in."
)

// IdentityProvider is the managed user directory.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
	GetUserAttributes(ctx context.Context, accessToken string) ([]domain.UserAttribute, error)
}

type AuthService struct {
	provider           IdentityProvider
	logger             *zap.Logger
	jwtSecret          string
	jwtExpirationHours time.Duration
	now                func() time.Time
}

func NewAuthService(provider IdentityProvider, logger *zap.Logger, jwtSecret string, jwtExpHours time.Duration) *AuthService {
	return &AuthService{
		provider:           provider,
		logger:             logger,
		jwtSecret:          jwtSecret,
		jwtExpirationHours: jwtExpHours,
		now:                time.Now,
	}
}

// Register creates an unconfirmed account. A duplicate email is returned as
// identity.ErrAccountExists together with a user-facing message.
func (s *AuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (string, error) {
	err := s.provider.SignUp(ctx, dto.Email, dto.Password, dto.Username)
	if err != nil {
		if errors.Is(err, identity.ErrAccountExists) {
			return msgAccountExists, err
		}
		return "", fmt.Errorf("register: %w", err)
	}
	s.logger.Info("user registered", zap.String("email", dto.Email))
	return msgRegistered, nil
}

// Confirm is idempotent: confirming a confirmed account succeeds.
func (s *AuthService) Confirm(ctx context.Context, dto domain.ConfirmUserDTO) (string, error) {
	err := s.provider.ConfirmSignUp(ctx, dto.Email, dto.Code)
	switch {
	case err == nil:
		s.logger.Info("user confirmed", zap.String("email", dto.Email))
		return msgConfirmed, nil
	case errors.Is(err, identity.ErrAlreadyConfirmed):
		return msgAlreadyConfirmed, nil
	default:
		return "", fmt.Errorf("confirm: %w", err)
	}
}

// Login authenticates against the provider, resolves the display name and
// issues a service token for the REST surface.
func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	accessToken, err := s.provider.Authenticate(ctx, dto.Email, dto.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}

	username := dto.Email
	attrs, err := s.provider.GetUserAttributes(ctx, accessToken)
	if err != nil {
		s.logger.Warn("could not fetch user attributes, using email as display name",
			zap.String("email", dto.Email), zap.Error(err))
	} else {
		username = displayName(attrs, dto.Email)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":      dto.Email,
		"exp":      now.Add(s.jwtExpirationHours).Unix(),
		"iat":      now.Unix(),
		"username": username,
		"email":    dto.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("email", dto.Email), zap.String("username", username))
	return &domain.AuthResponseDTO{
		Token:    tokenString,
		Username: username,
		Email:    dto.Email,
	}, nil
}

// displayName prefers "name", then "custom:username", then the email.
func displayName(attrs []domain.UserAttribute, email string) string {
	values := make(map[string]string, len(attrs))
	for _, a := range attrs {
		values[a.Name] = a.Value
	}
	for _, key := range []string{"name", "custom:username"} {
		if v := values[key]; v != "" {
			return v
		}
	}
	return email
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, nil, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, nil, fmt.Errorf("%w: token not valid yet", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}

// SessionFromClaims rebuilds an authenticated session from a validated token.
func SessionFromClaims(claims jwt.MapClaims) (*domain.Session, error) {
	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrTokenInvalid)
	}
	session := domain.NewSession()
	session.SignIn(username, email)
	return session, nil
}
