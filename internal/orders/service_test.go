package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	"github.com/mart-ng/mart-backend/pkg/enums"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/pagination"
	"github.com/mart-ng/mart-backend/pkg/storage/gcs"
)

type fakeNotifier struct {
	confirmations []string
	err           error
}

func (f *fakeNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order, store *models.Store) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, order.TrackingNumber)
	return nil
}

type fakeStorage struct {
	objects map[string]string
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, object, contentType string, body io.Reader) (*gcs.ObjectInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[object] = string(data)
	return &gcs.ObjectInfo{
		Bucket:    "test-bucket",
		Name:      object,
		PublicURL: "https://storage.googleapis.com/test-bucket/" + object,
	}, nil
}

func openTestDB(t *testing.T) *db.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.FromGorm(conn)
}

type fixture struct {
	svc      *service
	client   *db.Client
	notifier *fakeNotifier
	storage  *fakeStorage
	ownerID  uuid.UUID
	storeID  uuid.UUID
	slug     string
	product  *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := openTestDB(t)
	notifier := &fakeNotifier{}
	storage := &fakeStorage{}
	svc, err := NewService(ServiceParams{DB: client, Notifier: notifier, Storage: storage})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	user := &models.User{
		Email:           uuid.NewString() + "@example.com",
		PasswordHash:    "x",
		FirstName:       "Ada",
		LastName:        "Obi",
		IsVendor:        true,
		IsEmailVerified: true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	store := &models.Store{
		OwnerID:      user.ID,
		Name:         "Ada Fabrics",
		Slug:         "ada-fabrics-" + uuid.NewString()[:8],
		Location:     "Lagos",
		ContactEmail: "shop@example.com",
		ContactPhone: "+2348000000000",
		IsActive:     true,
	}
	if err := client.DB().Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	product := &models.Product{
		StoreID:     store.ID,
		Name:        "Ankara Wrap",
		Description: "Six yards",
		Price:       decimal.RequireFromString("4500.00"),
		Quantity:    12,
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return &fixture{
		svc:      svc.(*service),
		client:   client,
		notifier: notifier,
		storage:  storage,
		ownerID:  user.ID,
		storeID:  store.ID,
		slug:     store.Slug,
		product:  product,
	}
}

func (f *fixture) placeOrder(t *testing.T, quantity int) *OrderDTO {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), f.slug, PlaceOrderRequest{
		CustomerName:    "Chidi Eze",
		CustomerEmail:   "chidi@example.com",
		CustomerPhone:   "+2348111111111",
		CustomerAddress: "12 Marina Road, Lagos",
		Items:           []OrderItemRequest{{ProductID: f.product.ID, Quantity: quantity}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return order
}

func TestPlaceOrderComputesTotalServerSide(t *testing.T) {
	f := newFixture(t)

	order := f.placeOrder(t, 3)

	want := decimal.RequireFromString("13500.00")
	if !order.TotalAmount.Equal(want) {
		t.Fatalf("total = %s, want %s", order.TotalAmount, want)
	}
	if len(order.Items) != 1 || !order.Items[0].Price.Equal(f.product.Price) {
		t.Fatalf("item price must snapshot the product price: %+v", order.Items)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("new orders start pending, got %s", order.Status)
	}
	if len(order.TrackingNumber) != 10 {
		t.Fatalf("unexpected tracking number %q", order.TrackingNumber)
	}
	if len(f.notifier.confirmations) != 1 || f.notifier.confirmations[0] != order.TrackingNumber {
		t.Fatalf("confirmation email not dispatched: %+v", f.notifier.confirmations)
	}
}

func TestPlaceOrderUnknownStoreIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "no-such-store", PlaceOrderRequest{
		CustomerName:    "Chidi Eze",
		CustomerEmail:   "chidi@example.com",
		CustomerPhone:   "+2348111111111",
		CustomerAddress: "12 Marina Road, Lagos",
		Items:           []OrderItemRequest{{ProductID: f.product.ID, Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlaceOrderRejectsForeignProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), f.slug, PlaceOrderRequest{
		CustomerName:    "Chidi Eze",
		CustomerEmail:   "chidi@example.com",
		CustomerPhone:   "+2348111111111",
		CustomerAddress: "12 Marina Road, Lagos",
		Items:           []OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), f.slug, PlaceOrderRequest{
		CustomerName:    "Chidi Eze",
		CustomerEmail:   "chidi@example.com",
		CustomerPhone:   "+2348111111111",
		CustomerAddress: "12 Marina Road, Lagos",
		Items:           []OrderItemRequest{{ProductID: f.product.ID, Quantity: 0}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceOrderRetriesTrackingCollision(t *testing.T) {
	f := newFixture(t)

	first := f.placeOrder(t, 1)

	attempts := 0
	f.svc.newTracking = func() (string, error) {
		attempts++
		if attempts == 1 {
			return first.TrackingNumber, nil
		}
		return fmt.Sprintf("FRESH%05d", attempts), nil
	}

	second := f.placeOrder(t, 1)
	if second.TrackingNumber == first.TrackingNumber {
		t.Fatal("colliding tracking number was not retried")
	}
	if attempts != 2 {
		t.Fatalf("expected exactly one retry, got %d attempts", attempts)
	}
}

func TestPlaceOrderPropagatesEmailFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = pkgerrors.New(pkgerrors.CodeDependency, "mail transport down")

	_, err := f.svc.PlaceOrder(context.Background(), f.slug, PlaceOrderRequest{
		CustomerName:    "Chidi Eze",
		CustomerEmail:   "chidi@example.com",
		CustomerPhone:   "+2348111111111",
		CustomerAddress: "12 Marina Road, Lagos",
		Items:           []OrderItemRequest{{ProductID: f.product.ID, Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestTrackReturnsOrderByTrackingNumber(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 2)

	tracked, err := f.svc.Track(context.Background(), placed.TrackingNumber)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if tracked.ID != placed.ID || len(tracked.Items) != 1 {
		t.Fatalf("unexpected tracked order %+v", tracked)
	}

	_, err = f.svc.Track(context.Background(), "ZZZZZZZZZZ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttachPaymentProofCreateThenConflictThenOverwrite(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 1)

	attached, err := f.svc.AttachPaymentProof(context.Background(), placed.TrackingNumber, false,
		"receipt.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if attached.PaymentProofURL == nil || !strings.Contains(*attached.PaymentProofURL, placed.TrackingNumber) {
		t.Fatalf("unexpected proof url %v", attached.PaymentProofURL)
	}

	_, err = f.svc.AttachPaymentProof(context.Background(), placed.TrackingNumber, false,
		"receipt2.png", "image/png", strings.NewReader("x"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("second create must conflict, got %v", err)
	}

	replaced, err := f.svc.AttachPaymentProof(context.Background(), placed.TrackingNumber, true,
		"receipt2.png", "image/png", strings.NewReader("y"))
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if replaced.PaymentProofURL == nil || !strings.Contains(*replaced.PaymentProofURL, "receipt2.png") {
		t.Fatalf("overwrite did not replace proof: %v", replaced.PaymentProofURL)
	}
}

func TestAttachPaymentProofRequiresFile(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 1)

	_, err := f.svc.AttachPaymentProof(context.Background(), placed.TrackingNumber, false, "", "", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusOwnerOnly(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), f.ownerID, placed.ID, "shipped")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("unexpected status %s", updated.Status)
	}

	// Backwards moves stay allowed; the lifecycle is not a one-way ladder.
	if _, err := f.svc.UpdateStatus(context.Background(), f.ownerID, placed.ID, "pending"); err != nil {
		t.Fatalf("backward transition: %v", err)
	}

	_, err = f.svc.UpdateStatus(context.Background(), f.ownerID, placed.ID, "lost-in-transit")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown status must fail validation, got %v", err)
	}
}

func TestOrdersForbiddenForOtherStoreOwner(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 1)

	intruder := &models.User{
		Email:           uuid.NewString() + "@example.com",
		PasswordHash:    "x",
		FirstName:       "Ngozi",
		LastName:        "Ike",
		IsVendor:        true,
		IsEmailVerified: true,
	}
	if err := f.client.DB().Create(intruder).Error; err != nil {
		t.Fatalf("seed intruder: %v", err)
	}
	otherStore := &models.Store{
		OwnerID:      intruder.ID,
		Name:         "Ngozi Shoes",
		Slug:         "ngozi-shoes",
		Location:     "Enugu",
		ContactEmail: "ngozi@example.com",
		ContactPhone: "+2348222222222",
		IsActive:     true,
	}
	if err := f.client.DB().Create(otherStore).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), intruder.ID, placed.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden get, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), intruder.ID, placed.ID, "shipped"); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden status update, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), intruder.ID, placed.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)

	var ids []uuid.UUID
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		order := &models.Order{
			StoreID:         f.storeID,
			CustomerName:    "Chidi Eze",
			CustomerEmail:   "chidi@example.com",
			CustomerPhone:   "+2348111111111",
			CustomerAddress: "12 Marina Road, Lagos",
			TotalAmount:     decimal.RequireFromString("100.00"),
			Status:          enums.OrderStatusPending,
			TrackingNumber:  fmt.Sprintf("TRACK%05d", i),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := f.client.DB().Create(order).Error; err != nil {
			t.Fatalf("seed order: %v", err)
		}
		ids = append(ids, order.ID)
	}

	page, err := f.svc.List(context.Background(), f.ownerID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Orders) != 2 || page.NextCursor == "" {
		t.Fatalf("unexpected first page %+v", page)
	}
	if page.Orders[0].ID != ids[4] || page.Orders[1].ID != ids[3] {
		t.Fatal("orders must come back newest first")
	}

	second, err := f.svc.List(context.Background(), f.ownerID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Orders) != 2 || second.Orders[0].ID != ids[2] {
		t.Fatalf("unexpected second page %+v", second.Orders)
	}

	third, err := f.svc.List(context.Background(), f.ownerID, pagination.Params{Limit: 2, Cursor: second.NextCursor})
	if err != nil {
		t.Fatalf("third page: %v", err)
	}
	if len(third.Orders) != 1 || third.NextCursor != "" {
		t.Fatalf("unexpected final page %+v", third)
	}
}

func TestDeleteRemovesOwnOrder(t *testing.T) {
	f := newFixture(t)
	placed := f.placeOrder(t, 1)

	if err := f.svc.Delete(context.Background(), f.ownerID, placed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.svc.Get(context.Background(), f.ownerID, placed.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
