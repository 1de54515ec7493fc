package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-matchmaker/internal/application/session"
	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
)

// IdentifierField is the hidden form field carrying the user id. It is never
// stored as an answer.
const IdentifierField = "user_id"

type Service interface {
	// Submit stores the onboarding answers of a verified user and binds sc to
	// that user. A user who already submitted gets domain.ErrAlreadyOnboarded.
	Submit(ctx context.Context, sc *session.Context, userID string, answers map[string]string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	userRepo userStore
}

func NewService(userRepo userStore) Service {
	return &service{userRepo: userRepo}
}

func (s *service) Submit(ctx context.Context, sc *session.Context, userID string, answers map[string]string) error {
	if userID == "" {
		return domain.ErrUserNotFound
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !u.Verified {
		return domain.ErrNotVerified
	}
	// Answers are written once. Later submissions neither overwrite them nor
	// open a session.
	if u.HasQuestionnaire() {
		return domain.ErrAlreadyOnboarded
	}

	stored := make(map[string]string, len(answers))
	for k, v := range answers {
		if k == IdentifierField {
			continue
		}
		stored[k] = v
	}
	blob, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{domain.FieldQuestionnaire: string(blob)}); err != nil {
		return fmt.Errorf("store answers: %w", err)
	}
	logger.FromContext(ctx).Info().Str("user_id", u.UserID).Int("answers", len(stored)).Msg("questionnaire stored")

	sc.Establish(u.UserID)
	return nil
}
