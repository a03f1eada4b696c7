package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newProductTestService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Store{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	svc := NewProductService(
		repository.NewProductRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewStoreRepository(db),
	)
	return svc, db
}

func seedVendorFixtures(t *testing.T, db *gorm.DB, vendorID uint) (*models.Category, *models.Store) {
	t.Helper()
	category := &models.Category{Name: "Gadgets", Slug: fmt.Sprintf("gadgets-%d", vendorID), IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	store := &models.Store{
		VendorID: vendorID,
		Name:     "Store",
		Slug:     fmt.Sprintf("store-%d", vendorID),
		IsActive: true,
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return category, store
}

func TestCreateProductAssignsStoreAndSlug(t *testing.T) {
	svc, db := newProductTestService(t)
	category, store := seedVendorFixtures(t, db, 10)

	stock := 7
	product, err := svc.CreateProduct(10, ProductInput{
		Name:          "USB-C Cable 2m",
		Price:         "9.99",
		CategoryID:    category.ID,
		StockQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	if product.StoreID != store.ID || product.VendorID != 10 {
		t.Fatalf("wrong ownership: store=%d vendor=%d", product.StoreID, product.VendorID)
	}
	if product.Slug == "" {
		t.Fatal("expected a generated slug")
	}
	if product.Status != constants.ProductStatusActive {
		t.Fatalf("status = %s, want active", product.Status)
	}

	var reloadedStore models.Store
	if err := db.First(&reloadedStore, store.ID).Error; err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if reloadedStore.TotalProducts != 1 {
		t.Fatalf("store product count = %d, want 1", reloadedStore.TotalProducts)
	}
}

func TestCreateProductZeroStockStartsOutOfStock(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	product, err := svc.CreateProduct(10, ProductInput{
		Name:       "Preorder Item",
		Price:      "19.99",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	if product.Status != constants.ProductStatusOutOfStock {
		t.Fatalf("status = %s, want out_of_stock for tracked zero stock", product.Status)
	}

	untracked := false
	digital, err := svc.CreateProduct(10, ProductInput{
		Name:           "License Key",
		Price:          "4.99",
		CategoryID:     category.ID,
		TrackInventory: &untracked,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	if digital.Status != constants.ProductStatusActive {
		t.Fatalf("untracked status = %s, want active", digital.Status)
	}
}

func TestCreateProductRejections(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	if _, err := svc.CreateProduct(10, ProductInput{Name: "X", Price: "-1", CategoryID: category.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative price, got %v", err)
	}
	if _, err := svc.CreateProduct(10, ProductInput{Name: "X", Price: "1.00", CategoryID: 9999}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	// Vendor 20 has no store yet.
	if _, err := svc.CreateProduct(20, ProductInput{Name: "X", Price: "1.00", CategoryID: category.ID}); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestPublicViewHidesNonVisibleProducts(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	stock := 3
	product, err := svc.CreateProduct(10, ProductInput{
		Name: "Widget", Price: "10.00", CategoryID: category.ID, StockQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}

	got, err := svc.GetProductBySlug(product.Slug)
	if err != nil {
		t.Fatalf("GetProductBySlug error: %v", err)
	}
	if got.Views != product.Views+1 {
		t.Fatalf("views = %d, want %d", got.Views, product.Views+1)
	}

	vendor := Actor{UserID: 10, Role: constants.RoleVendor}
	if _, err := svc.SetVisibility(vendor, product.ID, constants.ProductStatusHidden); err != nil {
		t.Fatalf("SetVisibility error: %v", err)
	}
	if _, err := svc.GetProduct(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("hidden product should read as missing, got %v", err)
	}
	// The owner still sees it.
	if _, err := svc.GetVendorProduct(10, product.ID); err != nil {
		t.Fatalf("GetVendorProduct error: %v", err)
	}
}

func TestSetVisibilityRespectsStockInvariant(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	product, err := svc.CreateProduct(10, ProductInput{
		Name: "Empty Shelf", Price: "10.00", CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	vendor := Actor{UserID: 10, Role: constants.RoleVendor}

	if _, err := svc.SetVisibility(vendor, product.ID, constants.ProductStatusHidden); err != nil {
		t.Fatalf("SetVisibility error: %v", err)
	}
	// Reactivating a tracked listing with zero units lands on
	// out_of_stock, never active.
	updated, err := svc.SetVisibility(vendor, product.ID, constants.ProductStatusActive)
	if err != nil {
		t.Fatalf("SetVisibility error: %v", err)
	}
	if updated.Status != constants.ProductStatusOutOfStock {
		t.Fatalf("status = %s, want out_of_stock", updated.Status)
	}

	if _, err := svc.SetVisibility(vendor, product.ID, "archived"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestProductOwnershipChecks(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	product, err := svc.CreateProduct(10, ProductInput{
		Name: "Widget", Price: "10.00", CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}

	other := Actor{UserID: 11, Role: constants.RoleVendor}
	if _, err := svc.SetVisibility(other, product.ID, constants.ProductStatusHidden); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another vendor, got %v", err)
	}
	if err := svc.DeleteProduct(other, product.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	admin := Actor{UserID: 99, Role: constants.RoleAdmin}
	if _, err := svc.SetVisibility(admin, product.ID, constants.ProductStatusHidden); err != nil {
		t.Fatalf("admin SetVisibility error: %v", err)
	}

	owner := Actor{UserID: 10, Role: constants.RoleVendor}
	if err := svc.DeleteProduct(owner, product.ID); err != nil {
		t.Fatalf("DeleteProduct error: %v", err)
	}
	if _, err := svc.GetVendorProduct(10, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}

	var reloadedStore models.Store
	if err := db.Where("vendor_id = ?", 10).First(&reloadedStore).Error; err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if reloadedStore.TotalProducts != 0 {
		t.Fatalf("store product count = %d, want 0 after delete", reloadedStore.TotalProducts)
	}
}

func TestVendorProductsStatusCounts(t *testing.T) {
	svc, db := newProductTestService(t)
	category, _ := seedVendorFixtures(t, db, 10)

	stock := 5
	for i := 0; i < 2; i++ {
		if _, err := svc.CreateProduct(10, ProductInput{
			Name: fmt.Sprintf("Active %d", i), Price: "10.00", CategoryID: category.ID, StockQuantity: &stock,
		}); err != nil {
			t.Fatalf("CreateProduct error: %v", err)
		}
	}
	hidden, err := svc.CreateProduct(10, ProductInput{
		Name: "Hidden", Price: "10.00", CategoryID: category.ID, StockQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	vendor := Actor{UserID: 10, Role: constants.RoleVendor}
	if _, err := svc.SetVisibility(vendor, hidden.ID, constants.ProductStatusHidden); err != nil {
		t.Fatalf("SetVisibility error: %v", err)
	}

	products, total, counts, err := svc.VendorProducts(10, repository.ProductListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("VendorProducts error: %v", err)
	}
	if total != 3 || len(products) != 3 {
		t.Fatalf("vendor should see all statuses, total=%d len=%d", total, len(products))
	}
	byStatus := map[string]int64{}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	if byStatus[constants.ProductStatusActive] != 2 || byStatus[constants.ProductStatusHidden] != 1 {
		t.Fatalf("unexpected status counts: %+v", counts)
	}
}
