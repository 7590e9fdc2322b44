package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
)

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
		&models.BankDetail{},
		&models.Product{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.FromGorm(conn)
}

func testService(t *testing.T, client *db.Client) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedOwner(t *testing.T, client *db.Client) uuid.UUID {
	t.Helper()
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
	return user.ID
}

func setupTestStore(t *testing.T, svc Service, ownerID uuid.UUID, name string) *StoreDTO {
	t.Helper()
	store, err := svc.Setup(context.Background(), ownerID, SetupStoreRequest{
		Name:         name,
		Location:     "Lagos",
		ContactEmail: "shop@example.com",
		ContactPhone: "+2348000000000",
	})
	if err != nil {
		t.Fatalf("setup store: %v", err)
	}
	return store
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ada Fabrics":        "ada-fabrics",
		"  Ada's  Fabrics! ": "ada-s-fabrics",
		"ÀDA":                "da",
		"Shop 24/7":          "shop-24-7",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSetupCreatesActiveStoreWithSlug(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)

	store := setupTestStore(t, svc, ownerID, "Ada Fabrics")

	if store.Slug != "ada-fabrics" {
		t.Fatalf("unexpected slug %q", store.Slug)
	}
	if !store.IsActive {
		t.Fatal("new stores must start active")
	}
}

func TestSetupRejectsSecondStore(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)
	setupTestStore(t, svc, ownerID, "Ada Fabrics")

	_, err := svc.Setup(context.Background(), ownerID, SetupStoreRequest{
		Name:         "Second Shop",
		Location:     "Abuja",
		ContactEmail: "second@example.com",
		ContactPhone: "+2348000000001",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSetupDeduplicatesSlugs(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)

	first := setupTestStore(t, svc, seedOwner(t, client), "Ada Fabrics")
	second := setupTestStore(t, svc, seedOwner(t, client), "Ada Fabrics")
	third := setupTestStore(t, svc, seedOwner(t, client), "Ada Fabrics")

	if first.Slug != "ada-fabrics" || second.Slug != "ada-fabrics-2" || third.Slug != "ada-fabrics-3" {
		t.Fatalf("unexpected slugs %q %q %q", first.Slug, second.Slug, third.Slug)
	}
}

func TestUpdateDetailRederivesSlugOnlyWhenNameChanges(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)
	setupTestStore(t, svc, ownerID, "Ada Fabrics")

	location := "Ibadan"
	updated, err := svc.UpdateDetail(context.Background(), ownerID, UpdateStoreRequest{Location: &location})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "ada-fabrics" || updated.Location != "Ibadan" {
		t.Fatalf("slug must survive a name-less update, got %+v", updated)
	}

	name := "Obi Textiles"
	updated, err = svc.UpdateDetail(context.Background(), ownerID, UpdateStoreRequest{Name: &name})
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if updated.Slug != "obi-textiles" {
		t.Fatalf("slug must follow the new name, got %q", updated.Slug)
	}
}

func TestUpdateDetailWithoutStoreIsNotFound(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)

	location := "Lagos"
	_, err := svc.UpdateDetail(context.Background(), uuid.New(), UpdateStoreRequest{Location: &location})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStorefrontShowsActiveStoreWithProducts(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)
	store := setupTestStore(t, svc, ownerID, "Ada Fabrics")

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

	front, err := svc.Storefront(context.Background(), "ada-fabrics")
	if err != nil {
		t.Fatalf("storefront: %v", err)
	}
	if front.Store.Name != "Ada Fabrics" {
		t.Fatalf("unexpected store %+v", front.Store)
	}
	if len(front.Products) != 1 || front.Products[0].Name != "Ankara Wrap" {
		t.Fatalf("unexpected products %+v", front.Products)
	}
	if !front.Products[0].Price.Equal(decimal.RequireFromString("4500.00")) {
		t.Fatalf("unexpected price %s", front.Products[0].Price)
	}
}

func TestStorefrontHidesInactiveStore(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)
	setupTestStore(t, svc, ownerID, "Ada Fabrics")

	inactive := false
	if _, err := svc.UpdateDetail(context.Background(), ownerID, UpdateStoreRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.Storefront(context.Background(), "ada-fabrics")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBankDetailLifecycle(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)
	ownerID := seedOwner(t, client)
	setupTestStore(t, svc, ownerID, "Ada Fabrics")

	created, err := svc.AddBankDetail(context.Background(), ownerID, CreateBankDetailRequest{
		BankName:      "GTBank",
		AccountNumber: "0123456789",
		AccountName:   "Ada Obi",
	})
	if err != nil {
		t.Fatalf("add bank detail: %v", err)
	}

	listed, err := svc.ListBankDetails(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", listed)
	}

	newName := "Ada O. Obi"
	updated, err := svc.UpdateBankDetail(context.Background(), ownerID, created.ID, UpdateBankDetailRequest{
		AccountName: &newName,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AccountName != newName || updated.BankName != "GTBank" {
		t.Fatalf("partial update mangled detail: %+v", updated)
	}

	if err := svc.DeleteBankDetail(context.Background(), ownerID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetBankDetail(context.Background(), ownerID, created.ID); pkgerrors.As(err) == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestBankDetailScopedToOwnStore(t *testing.T) {
	client := openTestDB(t)
	svc := testService(t, client)

	owner := seedOwner(t, client)
	setupTestStore(t, svc, owner, "Ada Fabrics")
	detail, err := svc.AddBankDetail(context.Background(), owner, CreateBankDetailRequest{
		BankName:      "GTBank",
		AccountNumber: "0123456789",
		AccountName:   "Ada Obi",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	other := seedOwner(t, client)
	setupTestStore(t, svc, other, "Obi Textiles")

	_, err = svc.GetBankDetail(context.Background(), other, detail.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found across stores, got %v", err)
	}
	if err := svc.DeleteBankDetail(context.Background(), other, detail.ID); pkgerrors.As(err) == nil {
		t.Fatal("cross-store delete must fail")
	}
}
