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

func newCategoryTestService(t *testing.T) (*CategoryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:category_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewCategoryService(repository.NewCategoryRepository(db)), db
}

func TestCategoryCreateDerivesSlugAndLevel(t *testing.T) {
	svc, _ := newCategoryTestService(t)

	parent, err := svc.Create(CategoryInput{Name: "Home & Kitchen"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if parent.Slug != "home-kitchen" {
		t.Fatalf("slug = %s, want home-kitchen", parent.Slug)
	}
	if parent.Level != 0 || !parent.IsActive {
		t.Fatalf("unexpected root category: %+v", parent)
	}

	child, err := svc.Create(CategoryInput{Name: "Cookware", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("Create child error: %v", err)
	}
	if child.Level != 1 {
		t.Fatalf("child level = %d, want 1", child.Level)
	}

	missing := uint(9999)
	if _, err := svc.Create(CategoryInput{Name: "Orphan", ParentID: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategorySlugConflicts(t *testing.T) {
	svc, _ := newCategoryTestService(t)

	first, err := svc.Create(CategoryInput{Name: "Audio"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(CategoryInput{Name: "Audio Gear", Slug: "audio"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	second, err := svc.Create(CategoryInput{Name: "Video"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Update(second.ID, CategoryInput{Slug: first.Slug}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken on update, got %v", err)
	}
}

func TestCategoryDeleteGuardedByProducts(t *testing.T) {
	svc, db := newCategoryTestService(t)

	category, err := svc.Create(CategoryInput{Name: "Gadgets"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	product := &models.Product{
		Name:       "Widget",
		Slug:       "widget",
		CategoryID: category.ID,
		VendorID:   10,
		StoreID:    100,
		Status:     constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryHasProducts) {
		t.Fatalf("expected ErrCategoryHasProducts, got %v", err)
	}

	if err := db.Delete(product).Error; err != nil {
		t.Fatalf("remove product: %v", err)
	}
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}
}

func TestCategoryListPublicCounts(t *testing.T) {
	svc, db := newCategoryTestService(t)

	active, err := svc.Create(CategoryInput{Name: "Active"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	inactive := false
	if _, err := svc.Create(CategoryInput{Name: "Hidden", IsActive: &inactive}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	for i := 0; i < 2; i++ {
		product := &models.Product{
			Name:       fmt.Sprintf("P%d", i),
			Slug:       fmt.Sprintf("p-%d", i),
			CategoryID: active.ID,
			VendorID:   10,
			StoreID:    100,
			Status:     constants.ProductStatusActive,
		}
		if err := db.Create(product).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	list, err := svc.ListPublic()
	if err != nil {
		t.Fatalf("ListPublic error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected only active categories, got %d", len(list))
	}
	if list[0].ProductCount != 2 {
		t.Fatalf("product count = %d, want 2", list[0].ProductCount)
	}
}
