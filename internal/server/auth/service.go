package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
)

// Authenticator is the user lookup the service needs.
type Authenticator interface {
	Authenticate(ctx context.Context, username string, password []byte) (*models.User, error)
}

// Service logs users in and verifies their tokens.
type Service struct {
	users    Authenticator
	secret   []byte
	validity time.Duration
}

func NewService(users Authenticator, secretKey string, validity time.Duration) *Service {
	return &Service{users: users, secret: []byte(secretKey), validity: validity}
}

// Login returns a signed access token and the authenticated user.
func (s *Service) Login(ctx context.Context, username string, password []byte) (string, *models.User, error) {
	if username == "" || len(password) == 0 {
		return "", nil, fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	token, err := GenerateToken(user, s.secret, s.validity)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// Verify returns the user the token was issued for.
func (s *Service) Verify(token string) (*models.User, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}

// Authorize checks that user holds at least the required role.
func Authorize(user *models.User, required models.Role) error {
	if user == nil {
		return common.ErrUnauthorized
	}
	if required == models.RoleAdmin && user.Role != models.RoleAdmin {
		return common.ErrForbidden
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleOperator {
		return common.ErrForbidden
	}
	return nil
}
