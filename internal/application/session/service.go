package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
)

type Service interface {
	// Current resolves the user bound to sc.
	Current(ctx context.Context, sc *Context) (*domain.User, error)
	// Logout clears the binding.
	Logout(ctx context.Context, sc *Context)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	userRepo userStore
}

func NewService(userRepo userStore) Service {
	return &service{userRepo: userRepo}
}

func (s *service) Current(ctx context.Context, sc *Context) (*domain.User, error) {
	userID, err := sc.CurrentUser()
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// binding outlived its user record
			sc.Teardown()
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

func (s *service) Logout(ctx context.Context, sc *Context) {
	if userID, err := sc.CurrentUser(); err == nil {
		logger.FromContext(ctx).Info().Str("user_id", userID).Msg("session cleared")
	}
	sc.Teardown()
}
