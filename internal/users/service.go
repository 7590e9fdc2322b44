package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/db"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/security"
)

// Service exposes the authenticated account's own profile.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
}

// ServiceParams packages the dependencies for the user service.
type ServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type service struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewService builds the user profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	var updated *UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
		}

		if req.FirstName != nil {
			user.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Username != nil {
			user.Username = strings.TrimSpace(*req.Username)
		}
		if req.Password != nil {
			hash, err := security.HashPassword(*req.Password, s.passwordCfg)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			user.PasswordHash = hash
		}

		if err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update account")
		}
		updated = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
