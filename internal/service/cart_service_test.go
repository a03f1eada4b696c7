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

func newCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newCartService(db *gorm.DB) *CartService {
	return NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
}

func seedCartProduct(t *testing.T, db *gorm.DB, slug, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:           "Product " + slug,
		Slug:           slug,
		Price:          mustMoney(t, price),
		CategoryID:     1,
		VendorID:       10,
		StoreID:        100,
		StockQuantity:  stock,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestAddItemMergesQuantities(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	product := seedCartProduct(t, db, "widget", "10.00", 10)

	if _, err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	summary, err := svc.AddItem(1, product.ID, 3)
	if err != nil {
		t.Fatalf("second AddItem error: %v", err)
	}
	if len(summary.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(summary.Items))
	}
	if summary.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", summary.Items[0].Quantity)
	}
	if summary.TotalItems != 5 {
		t.Fatalf("total items = %d, want 5", summary.TotalItems)
	}
	if got := summary.TotalPrice.StringFixed(2); got != "50.00" {
		t.Fatalf("total price = %s, want 50.00", got)
	}
}

func TestAddItemStockCheckRunsOnMergedQuantity(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	product := seedCartProduct(t, db, "widget", "10.00", 4)

	if _, err := svc.AddItem(1, product.ID, 3); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	_, err := svc.AddItem(1, product.ID, 2)
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if !errors.Is(stockErr.Reason, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", stockErr.Reason)
	}
	if stockErr.Requested != 5 || stockErr.Available != 4 {
		t.Fatalf("unexpected detail: %+v", stockErr)
	}

	// The failed add must not have touched the existing line.
	summary, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("GetCart error: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 3 {
		t.Fatalf("cart changed after rejected add: %+v", summary.Items)
	}
}

func TestAddItemRejectsNonPurchasable(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	product := seedCartProduct(t, db, "hidden", "10.00", 10)
	if err := db.Model(product).Update("status", constants.ProductStatusHidden).Error; err != nil {
		t.Fatalf("hide product: %v", err)
	}

	_, err := svc.AddItem(1, product.ID, 1)
	var stockErr *StockError
	if !errors.As(err, &stockErr) || !errors.Is(stockErr.Reason, ErrProductNotAvailable) {
		t.Fatalf("expected ErrProductNotAvailable StockError, got %v", err)
	}

	if _, err := svc.AddItem(1, 9999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.AddItem(1, product.ID, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero quantity, got %v", err)
	}
}

func TestUpdateQuantityRefreshesPriceSnapshot(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	product := seedCartProduct(t, db, "widget", "10.00", 10)

	if _, err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if err := db.Model(product).Update("price", mustMoney(t, "12.50")).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	summary, err := svc.UpdateQuantity(1, product.ID, 4)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if summary.Items[0].Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", summary.Items[0].Quantity)
	}
	if got := summary.Items[0].UnitPrice.StringFixed(2); got != "12.50" {
		t.Fatalf("unit price = %s, want refreshed 12.50", got)
	}

	if _, err := svc.UpdateQuantity(1, 9999, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestValidatePrunesAndReports(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)

	gone := seedCartProduct(t, db, "gone", "5.00", 10)
	scarce := seedCartProduct(t, db, "scarce", "8.00", 10)
	repriced := seedCartProduct(t, db, "repriced", "10.00", 10)

	for _, p := range []*models.Product{gone, scarce, repriced} {
		if _, err := svc.AddItem(1, p.ID, 2); err != nil {
			t.Fatalf("AddItem %s error: %v", p.Slug, err)
		}
	}

	// Catalog drifts under the cart: one product leaves the
	// storefront, one runs low, one changes price.
	if err := db.Model(gone).Update("status", constants.ProductStatusInactive).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}
	if err := db.Model(scarce).Update("stock_quantity", 1).Error; err != nil {
		t.Fatalf("shrink stock: %v", err)
	}
	if err := db.Model(repriced).Update("price", mustMoney(t, "11.00")).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	result, err := svc.Validate(1)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected invalid cart")
	}
	reasons := map[string]int{}
	for _, p := range result.Problems {
		reasons[p.Reason]++
	}
	if reasons["removed"] != 1 || reasons["insufficient_stock"] != 1 || reasons["price_updated"] != 1 {
		t.Fatalf("unexpected problems: %+v", result.Problems)
	}
	if len(result.Summary.Items) != 2 {
		t.Fatalf("expected 2 surviving lines, got %d", len(result.Summary.Items))
	}

	// A second pass finds the same state: the removed line stays
	// gone and the refreshed price no longer differs.
	again, err := svc.Validate(1)
	if err != nil {
		t.Fatalf("second Validate error: %v", err)
	}
	if again.IsValid {
		t.Fatal("insufficient stock should still be reported")
	}
	if len(again.Problems) != 1 || again.Problems[0].Reason != "insufficient_stock" {
		t.Fatalf("unexpected problems on second pass: %+v", again.Problems)
	}
}

func TestCartCountSumsUnits(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	a := seedCartProduct(t, db, "a", "1.00", 10)
	b := seedCartProduct(t, db, "b", "2.00", 10)

	if _, err := svc.AddItem(1, a.ID, 2); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if _, err := svc.AddItem(1, b.ID, 3); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}

	count, err := svc.Count(1)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}

	if err := svc.Clear(1); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	count, err = svc.Count(1)
	if err != nil {
		t.Fatalf("Count after clear error: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after clear = %d, want 0", count)
	}
}

func TestRemovedLineCanBeAddedAgain(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(db)
	product := seedCartProduct(t, db, "widget", "10.00", 10)

	if _, err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if _, err := svc.RemoveItem(1, product.ID); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	summary, err := svc.AddItem(1, product.ID, 1)
	if err != nil {
		t.Fatalf("AddItem after remove error: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart after re-add: %+v", summary.Items)
	}

	// Clear must also free the unique slot, same as checkout's
	// post-commit cart clear.
	if err := svc.Clear(1); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	summary, err = svc.AddItem(1, product.ID, 3)
	if err != nil {
		t.Fatalf("AddItem after clear error: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 3 {
		t.Fatalf("unexpected cart after clear and re-add: %+v", summary.Items)
	}

	var rows int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&rows).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("cart rows = %d, want 1 (removed lines must not linger)", rows)
	}
}
