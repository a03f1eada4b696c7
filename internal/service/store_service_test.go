package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newStoreTestService(t *testing.T) (*StoreService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:store_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewStoreService(repository.NewStoreRepository(db)), db
}

func seedServiceStore(t *testing.T, db *gorm.DB, vendorID uint, slug string, active bool) *models.Store {
	t.Helper()
	store := &models.Store{
		VendorID: vendorID,
		Name:     "Store " + slug,
		Slug:     slug,
		IsActive: active,
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestGetPublicHidesInactiveStores(t *testing.T) {
	svc, db := newStoreTestService(t)
	open := seedServiceStore(t, db, 10, "open", true)
	closed := seedServiceStore(t, db, 11, "closed", false)

	if _, err := svc.GetPublic(open.ID); err != nil {
		t.Fatalf("GetPublic error: %v", err)
	}
	if _, err := svc.GetPublic(closed.ID); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("inactive store should read as missing, got %v", err)
	}
	if _, err := svc.GetPublicBySlug("closed"); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("inactive store by slug should read as missing, got %v", err)
	}
	if _, err := svc.GetPublicBySlug("open"); err != nil {
		t.Fatalf("GetPublicBySlug error: %v", err)
	}

	stores, total, err := svc.ListPublic(repository.StoreListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListPublic error: %v", err)
	}
	if total != 1 || len(stores) != 1 || stores[0].ID != open.ID {
		t.Fatalf("public listing should hold only active stores, got total=%d", total)
	}

	all, total, err := svc.ListAll(repository.StoreListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("admin listing should hold every store, got total=%d", total)
	}
}

func TestUpdateMineRenamesWithFreshSlug(t *testing.T) {
	svc, db := newStoreTestService(t)
	store := seedServiceStore(t, db, 10, "old-name-10", true)

	updated, err := svc.UpdateMine(10, StoreInput{Name: "Fresh Goods"})
	if err != nil {
		t.Fatalf("UpdateMine error: %v", err)
	}
	if updated.Name != "Fresh Goods" {
		t.Fatalf("name = %s", updated.Name)
	}
	if updated.Slug == store.Slug || updated.Slug == "" {
		t.Fatalf("expected a new slug, got %q", updated.Slug)
	}

	if _, err := svc.UpdateMine(10, StoreInput{ThemeColor: "teal"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad color, got %v", err)
	}
	if _, err := svc.UpdateMine(10, StoreInput{ThemeColor: "#3b82f6"}); err != nil {
		t.Fatalf("UpdateMine error for hex color: %v", err)
	}

	if _, err := svc.UpdateMine(99, StoreInput{Name: "Nope"}); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound for vendor without store, got %v", err)
	}
}

func TestRecomputeAllStatsSweepsEveryStore(t *testing.T) {
	svc, db := newStoreTestService(t)
	a := seedServiceStore(t, db, 10, "a", true)
	b := seedServiceStore(t, db, 11, "b", true)

	for i, storeID := range []uint{a.ID, a.ID, b.ID} {
		product := &models.Product{
			Name:    fmt.Sprintf("P%d", i),
			Slug:    fmt.Sprintf("p-%d", i),
			StoreID: storeID, VendorID: 10, CategoryID: 1,
			Status: "active",
		}
		if err := db.Create(product).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	if err := svc.RecomputeAllStats(); err != nil {
		t.Fatalf("RecomputeAllStats error: %v", err)
	}

	var reloadedA, reloadedB models.Store
	if err := db.First(&reloadedA, a.ID).Error; err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if err := db.First(&reloadedB, b.ID).Error; err != nil {
		t.Fatalf("reload store: %v", err)
	}
	if reloadedA.TotalProducts != 2 || reloadedB.TotalProducts != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", reloadedA.TotalProducts, reloadedB.TotalProducts)
	}
}
