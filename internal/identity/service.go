package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/internal/users"
	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/security"
)

// Service covers account onboarding and the email verification workflow.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	VerifyEmail(ctx context.Context, token string) (*VerifyEmailResult, error)
	ResendVerification(ctx context.Context, email string) error
	CheckActivation(ctx context.Context, email string) (*ActivationStatus, error)
	Settings() VerificationSettings
}

type verificationNotifier interface {
	SendVerificationEmail(ctx context.Context, user *models.User, token string) error
}

// ServiceParams packages the dependencies for the identity service.
type ServiceParams struct {
	DB              *db.Client
	Notifier        verificationNotifier
	PasswordConfig  config.PasswordConfig
	VerificationCfg config.VerificationConfig
}

type service struct {
	db          *db.Client
	notifier    verificationNotifier
	passwordCfg config.PasswordConfig
	verifyCfg   config.VerificationConfig
	now         func() time.Time
}

// NewService builds the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if params.VerificationCfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("verification token ttl must be positive")
	}
	if params.VerificationCfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("verification max attempts must be positive")
	}
	return &service{
		db:          params.DB,
		notifier:    params.Notifier,
		passwordCfg: params.PasswordConfig,
		verifyCfg:   params.VerificationCfg,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.AcceptedPolicy {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accepted_policy must be true")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	token, err := security.NewVerificationToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}

	now := s.now().UTC()
	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		verifyRepo := NewVerificationRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:         email,
			PasswordHash:  passwordHash,
			FirstName:     strings.TrimSpace(req.FirstName),
			LastName:      strings.TrimSpace(req.LastName),
			Username:      strings.TrimSpace(req.Username),
			AcceptedTerms: true,
		})
		if err != nil {
			// A concurrent registration can slip past the lookup above; the
			// unique constraint is the authority.
			if db.IsUniqueViolation(err, "uq_users_email") {
				return pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := verifyRepo.RecordTermsAcceptance(ctx, user.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record terms acceptance")
		}

		if _, err := verifyRepo.CreateToken(ctx, user.ID, token, now.Add(s.verifyCfg.TokenTTL)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create verification token")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerificationEmail(ctx, created, token); err != nil {
		return nil, err
	}

	return &RegisterResponse{
		User:    users.FromModel(created),
		Message: "registration successful, check your email for a verification link",
	}, nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*VerifyEmailResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}

	var result *VerifyEmailResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		verifyRepo := NewVerificationRepository(tx)

		record, err := verifyRepo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invalid verification token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
		}

		user, err := userRepo.FindByID(ctx, record.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		// Repeated clicks on an already-used link succeed without side
		// effects. The token row is deliberately kept after verification so
		// this branch can resolve; deleting it would turn a re-click into a
		// NotFound.
		if user.IsEmailVerified {
			result = &VerifyEmailResult{Email: user.Email, AlreadyVerified: true}
			return nil
		}

		now := s.now().UTC()
		if record.IsExpired(now) {
			return pkgerrors.New(pkgerrors.CodeExpired, "verification token has expired")
		}
		if record.MaxAttemptsReached(s.verifyCfg.MaxAttempts) {
			return pkgerrors.New(pkgerrors.CodeAttemptsExhausted, "maximum verification attempts reached")
		}

		if err := verifyRepo.IncrementAttempts(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment attempts")
		}
		if err := userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
		}

		result = &VerifyEmailResult{Email: user.Email}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	token, err := security.NewVerificationToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification token")
	}

	now := s.now().UTC()
	var recipient *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		verifyRepo := NewVerificationRepository(tx)

		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no account found for this email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if user.IsEmailVerified {
			return pkgerrors.New(pkgerrors.CodeConflict, "email is already verified")
		}

		existing, err := verifyRepo.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
		}
		// A still-valid token means the previous email was sent moments ago.
		if existing != nil && !existing.IsExpired(now) {
			return pkgerrors.New(pkgerrors.CodeCooldown, "a verification email was sent recently, try again later")
		}

		if err := verifyRepo.DeleteByUserID(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete stale token")
		}
		if _, err := verifyRepo.CreateToken(ctx, user.ID, token, now.Add(s.verifyCfg.TokenTTL)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create verification token")
		}

		recipient = user
		return nil
	})
	if err != nil {
		return err
	}

	return s.notifier.SendVerificationEmail(ctx, recipient, token)
}

func (s *service) CheckActivation(ctx context.Context, email string) (*ActivationStatus, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	userRepo := users.NewRepository(s.db.DB())
	user, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account found for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	status := &ActivationStatus{
		Email:           user.Email,
		IsEmailVerified: user.IsEmailVerified,
	}

	// A verified account has nothing left to activate; the retained token
	// row is an implementation detail and must not leak cooldown state.
	if user.IsEmailVerified {
		return status, nil
	}

	record, err := NewVerificationRepository(s.db.DB()).FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup verification token")
	}

	now := s.now().UTC()
	status.TokenExists = true
	status.IsExpired = record.IsExpired(now)
	status.MaxAttemptsReached = record.MaxAttemptsReached(s.verifyCfg.MaxAttempts)
	if !status.IsExpired {
		status.CooldownSeconds = int(record.ExpiresAt.Sub(now).Seconds())
	}
	return status, nil
}

func (s *service) Settings() VerificationSettings {
	return VerificationSettings{
		MaxResendAttempts: s.verifyCfg.MaxAttempts,
		CooldownSeconds:   int(s.verifyCfg.TokenTTL.Seconds()),
	}
}
