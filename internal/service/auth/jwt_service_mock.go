package auth

import (
	"context"
)

// MockJWTService is a configurable mock implementation of JWTService for
// use in tests.
type MockJWTService struct {
	// ValidateTokenFn allows tests to control ValidateToken behavior.
	ValidateTokenFn func(ctx context.Context, tokenString string) (*Claims, error)

	// ValidateTokenCalls records the tokens passed to ValidateToken.
	ValidateTokenCalls []string
}

// Ensure MockJWTService implements JWTService interface
var _ JWTService = (*MockJWTService)(nil)

// ValidateToken implements JWTService.ValidateToken.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	m.ValidateTokenCalls = append(m.ValidateTokenCalls, tokenString)
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}
