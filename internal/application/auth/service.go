package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-matchmaker/internal/application/session"
	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
	"github.com/go-matchmaker/internal/pkg/id"
	"github.com/go-matchmaker/internal/pkg/otp"
	"github.com/go-matchmaker/internal/pkg/validate"
)

const codeSubject = "Your Verification OTP"

type VerifyRequest struct {
	UserID string
	Code   string
	Mode   string
}

// Service drives a user through registration, code issuance and code
// confirmation. Every issued code overwrites the single OTP slot on the user.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Pending, error)
	Login(ctx context.Context, email string) (*domain.Pending, error)
	Verify(ctx context.Context, sc *session.Context, req VerifyRequest) (domain.Step, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	userRepo userStore
	mailer   mailer
	newCode  func() (string, error)
	now      func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   mailer
	// CodeGenerator defaults to otp.Generate.
	CodeGenerator func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	gen := deps.CodeGenerator
	if gen == nil {
		gen = otp.Generate
	}
	return &service{
		userRepo: deps.UserRepo,
		mailer:   deps.Mailer,
		newCode:  gen,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Pending, error) {
	log := logger.FromContext(ctx)

	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.CollegeYear = strings.TrimSpace(req.CollegeYear)
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &domain.User{
		UserID:      id.New(),
		Name:        req.Name,
		Age:         req.Age,
		CollegeYear: req.CollegeYear,
		Email:       req.Email,
		OTP:         &code,
		Verified:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		// lost a race against a concurrent registration for the same email
		if errors.Is(err, domain.ErrConstraintViolation) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Info().Str("user_id", u.UserID).Msg("user registered")

	pending := &domain.Pending{UserID: u.UserID, Mode: domain.ModeRegister}
	if err := s.sendCode(u, code); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID).Msg("mail sending error")
		pending.DeliveryErr = err
	}
	return pending, nil
}

func (s *service) Login(ctx context.Context, email string) (*domain.Pending, error) {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownEmail
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{domain.FieldOTP: code}); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}
	log.Debug().Str("user_id", u.UserID).Msg("login code issued")

	if err := s.sendCode(u, code); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID).Msg("mail sending error")
		return nil, err
	}
	return &domain.Pending{UserID: u.UserID, Mode: domain.ModeLogin}, nil
}

func (s *service) Verify(ctx context.Context, sc *session.Context, req VerifyRequest) (domain.Step, error) {
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return 0, err
	}
	if req.UserID == "" {
		return 0, domain.ErrUserNotFound
	}
	u, err := s.userRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	// The stored code is compared, never cleared.
	if u.OTP == nil || *u.OTP != strings.TrimSpace(req.Code) {
		return 0, domain.ErrInvalidCode
	}

	if !u.Verified {
		if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{domain.FieldVerified: true}); err != nil {
			return 0, fmt.Errorf("mark verified: %w", err)
		}
		logger.FromContext(ctx).Info().Str("user_id", u.UserID).Msg("user verified")
	}

	if mode == domain.ModeLogin || u.HasQuestionnaire() {
		sc.Establish(u.UserID)
		return domain.StepDashboard, nil
	}
	return domain.StepQuestionnaire, nil
}

func (s *service) sendCode(u *domain.User, code string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour OTP code is: %s\n\nThank you.", u.Name, code)
	if err := s.mailer.SendEmail(u.Email, codeSubject, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
