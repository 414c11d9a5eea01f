package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// authenticate validates the Authorization header and returns the user and token claims.
func (s *Server) authenticate(ctx context.Context, authHeader string) (*domain.User, *auth.AccessClaims, error) {
	if authHeader == "" {
		return nil, nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, claims, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return nil, nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return user, claims, nil
}

// authenticateRequest validates the Authorization header and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	user, _, err := s.authenticate(ctx, authHeader)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
