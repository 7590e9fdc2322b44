package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/internal/products"
	"github.com/mart-ng/mart-backend/internal/stores"
	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	"github.com/mart-ng/mart-backend/pkg/enums"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/pagination"
	"github.com/mart-ng/mart-backend/pkg/security"
	"github.com/mart-ng/mart-backend/pkg/storage/gcs"
)

// trackingAttempts bounds how often order creation retries after losing a
// tracking-number uniqueness race.
const trackingAttempts = 5

// Service runs the order workflow from public checkout to owner fulfilment.
type Service interface {
	PlaceOrder(ctx context.Context, storeSlug string, req PlaceOrderRequest) (*OrderDTO, error)
	Track(ctx context.Context, trackingNumber string) (*OrderDTO, error)
	AttachPaymentProof(ctx context.Context, trackingNumber string, overwrite bool, filename, contentType string, body io.Reader) (*OrderDTO, error)
	List(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderPage, error)
	Get(ctx context.Context, ownerID, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status string) (*OrderDTO, error)
	Delete(ctx context.Context, ownerID, orderID uuid.UUID) error
}

type orderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order, store *models.Store) error
}

type proofStorage interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (*gcs.ObjectInfo, error)
}

// ServiceParams packages the dependencies for the order service.
type ServiceParams struct {
	DB       *db.Client
	Notifier orderNotifier
	Storage  proofStorage
}

type service struct {
	db          *db.Client
	notifier    orderNotifier
	storage     proofStorage
	newTracking func() (string, error)
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	return &service{
		db:          params.DB,
		notifier:    params.Notifier,
		storage:     params.Storage,
		newTracking: security.NewTrackingNumber,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, storeSlug string, req PlaceOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	var (
		created *models.Order
		store   *models.Store
	)

	// Each attempt runs its own transaction. A tracking-number collision
	// aborts the insert, so the retry has to start over.
	for attempt := 0; attempt < trackingAttempts; attempt++ {
		trackingNumber, err := s.newTracking()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate tracking number")
		}

		err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			target, err := stores.NewRepository(tx).FindActiveBySlug(ctx, storeSlug)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
			}

			productRepo := products.NewRepository(tx)
			items := make([]models.OrderItem, 0, len(req.Items))
			total := decimal.Zero
			for _, line := range req.Items {
				product, err := productRepo.FindByStoreAndID(ctx, target.ID, line.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeValidation, "item does not belong to this store").
							WithDetails(map[string]string{"product_id": line.ProductID.String()})
					}
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
				}
				items = append(items, models.OrderItem{
					ProductID: product.ID,
					Quantity:  line.Quantity,
					Price:     product.Price,
				})
				total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}

			order := &models.Order{
				StoreID:         target.ID,
				CustomerName:    req.CustomerName,
				CustomerEmail:   req.CustomerEmail,
				CustomerPhone:   req.CustomerPhone,
				CustomerAddress: req.CustomerAddress,
				TotalAmount:     total,
				Status:          enums.OrderStatusPending,
				TrackingNumber:  trackingNumber,
				Items:           items,
			}
			if err := NewRepository(tx).Create(ctx, order); err != nil {
				return err
			}
			created = order
			store = target
			return nil
		})
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "uq_orders_tracking_number") {
			continue
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a tracking number")
	}

	if err := s.notifier.SendOrderConfirmation(ctx, created, store); err != nil {
		return nil, err
	}

	dto := fromModel(created)
	return &dto, nil
}

func (s *service) Track(ctx context.Context, trackingNumber string) (*OrderDTO, error) {
	order, err := s.orderByTracking(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	dto := fromModel(order)
	return &dto, nil
}

func (s *service) AttachPaymentProof(ctx context.Context, trackingNumber string, overwrite bool, filename, contentType string, body io.Reader) (*OrderDTO, error) {
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof file is required")
	}

	order, err := s.orderByTracking(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentProofURL != nil && !overwrite {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment proof is already attached")
	}

	object := path.Join("payment-proofs", order.TrackingNumber, path.Base(filename))
	info, err := s.storage.Upload(ctx, object, contentType, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload payment proof")
	}

	if err := NewRepository(s.db.DB()).SetPaymentProofURL(ctx, order.ID, info.PublicURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save payment proof reference")
	}
	order.PaymentProofURL = &info.PublicURL

	dto := fromModel(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	store, err := s.ownerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := NewRepository(s.db.DB()).ListByStore(ctx, store.ID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	page := &OrderPage{Orders: make([]OrderDTO, 0, limit)}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
			break
		}
		page.Orders = append(page.Orders, fromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, ownerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.ownedOrder(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	dto := fromModel(order)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]string{"status": status})
	}

	order, err := s.ownedOrder(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}

	if err := NewRepository(s.db.DB()).UpdateStatus(ctx, order.ID, parsed.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = parsed

	dto := fromModel(order)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, orderID uuid.UUID) error {
	order, err := s.ownedOrder(ctx, ownerID, orderID)
	if err != nil {
		return err
	}

	if err := NewRepository(s.db.DB()).Delete(ctx, order.StoreID, order.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
	}
	return nil
}

func (s *service) orderByTracking(ctx context.Context, trackingNumber string) (*models.Order, error) {
	order, err := NewRepository(s.db.DB()).FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// ownedOrder loads the order and checks it belongs to the caller's store.
func (s *service) ownedOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*models.Order, error) {
	store, err := s.ownerStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	order, err := NewRepository(s.db.DB()).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.StoreID != store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another store")
	}
	return order, nil
}

func (s *service) ownerStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, err := stores.NewRepository(s.db.DB()).FindByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no store configured for this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}
