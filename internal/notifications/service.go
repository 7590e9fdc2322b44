package notifications

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/logger"
	"github.com/mart-ng/mart-backend/pkg/mailer"
)

// Service sends transactional email and records every delivery.
type Service interface {
	SendVerificationEmail(ctx context.Context, user *models.User, token string) error
	SendOrderConfirmation(ctx context.Context, order *models.Order, store *models.Store) error
}

// ServiceParams packages the dependencies for the notification service.
type ServiceParams struct {
	DB          *gorm.DB
	Mailer      mailer.Sender
	FrontendURL string
	Logger      *logger.Logger
}

type service struct {
	db          *gorm.DB
	mailer      mailer.Sender
	frontendURL string
	logg        *logger.Logger
}

// NewService constructs a notification service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	return &service{
		db:          params.DB,
		mailer:      params.Mailer,
		frontendURL: strings.TrimRight(params.FrontendURL, "/"),
		logg:        params.Logger,
	}, nil
}

const verificationTemplate = "email_verification"

func (s *service) SendVerificationEmail(ctx context.Context, user *models.User, token string) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "user is required")
	}
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "verification token is required")
	}

	link := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, token)
	subject := "Verify your email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome aboard. Confirm your email address by opening the link below:\n\n%s\n\nThe link expires shortly, so verify soon. If you did not create an account you can ignore this message.\n",
		user.FirstName, link,
	)

	return s.deliver(ctx, verificationTemplate, user.Email, subject, body)
}

const orderConfirmationTemplate = "order_confirmation"

func (s *service) SendOrderConfirmation(ctx context.Context, order *models.Order, store *models.Store) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}
	storeName := "the store"
	if store != nil {
		storeName = store.Name
	}

	subject := fmt.Sprintf("Order received: %s", order.TrackingNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order with %s has been received.\n\nTracking number: %s\nTotal: %s\n\nKeep the tracking number safe. You can use it to check your order status and to upload your proof of payment.\n",
		order.CustomerName, storeName, order.TrackingNumber, order.TotalAmount.StringFixed(2),
	)

	return s.deliver(ctx, orderConfirmationTemplate, order.CustomerEmail, subject, body)
}

func (s *service) deliver(ctx context.Context, template, recipient, subject, body string) error {
	if err := s.mailer.Send(ctx, mailer.Message{
		To:        recipient,
		Subject:   subject,
		PlainText: body,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}

	log := &models.EmailLog{
		Template:   &template,
		Subject:    subject,
		Body:       body,
		Recipients: recipient,
	}
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		// Delivery already happened; a failed audit row must not fail the caller.
		if s.logg != nil {
			s.logg.Error(ctx, "email.log_write_failed", err)
		}
	}
	return nil
}
