package http

import (
	"context"

	"github.com/go-matchmaker/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user
// store. Both the SQL and the DynamoDB repositories satisfy it.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// Mailer delivers verification codes.
type Mailer interface {
	SendEmail(to, subject, body string) error
}
