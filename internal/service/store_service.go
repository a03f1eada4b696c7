package service

import (
	"fmt"
	"strings"

	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"
)

// StoreService storefront management
type StoreService struct {
	storeRepo repository.StoreRepository
}

// NewStoreService creates the store service
func NewStoreService(storeRepo repository.StoreRepository) *StoreService {
	return &StoreService{storeRepo: storeRepo}
}

// StoreInput vendor store update payload
type StoreInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Logo        string          `json:"logo"`
	Banner      string          `json:"banner"`
	ThemeColor  string          `json:"theme_color"`
	Address     *models.Address `json:"address"`
	Contact     *models.Contact `json:"contact"`
	IsActive    *bool           `json:"is_active"`
}

// ListPublic pages active stores
func (s *StoreService) ListPublic(filter repository.StoreListFilter) ([]models.Store, int64, error) {
	filter.OnlyActive = true
	return s.storeRepo.List(filter)
}

// ListAll pages every store, inactive ones included
func (s *StoreService) ListAll(filter repository.StoreListFilter) ([]models.Store, int64, error) {
	return s.storeRepo.List(filter)
}

// GetPublic public store page
func (s *StoreService) GetPublic(id uint) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if store == nil || !store.IsActive {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

// GetPublicBySlug slug variant of the public store page
func (s *StoreService) GetPublicBySlug(slug string) (*models.Store, error) {
	store, err := s.storeRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if store == nil || !store.IsActive {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

// GetMine returns the vendor's own store
func (s *StoreService) GetMine(vendorID uint) (*models.Store, error) {
	store, err := s.storeRepo.GetByVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

// UpdateMine edits the vendor's own store
func (s *StoreService) UpdateMine(vendorID uint, input StoreInput) (*models.Store, error) {
	store, err := s.GetMine(vendorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" && name != store.Name {
		slug := uniqueSlugWithSuffix(slugify(name), store.VendorID)
		taken, err := s.storeRepo.CountBySlug(slug, &store.ID)
		if err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, ErrSlugTaken
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Logo != "" {
		updates["logo"] = input.Logo
	}
	if input.Banner != "" {
		updates["banner"] = input.Banner
	}
	if color := strings.TrimSpace(input.ThemeColor); color != "" {
		if !validThemeColor(color) {
			return nil, fmt.Errorf("%w: theme_color must be a hex color", ErrValidation)
		}
		updates["theme_color"] = color
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Contact != nil {
		updates["contact"] = *input.Contact
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.storeRepo.UpdateFields(store.ID, updates); err != nil {
			return nil, err
		}
	}
	return s.GetMine(vendorID)
}

// RecomputeStats rebuilds one store's counters from the ledger
func (s *StoreService) RecomputeStats(storeID uint) error {
	snapshot, err := s.storeRepo.RecomputeStats(storeID)
	if err != nil {
		return err
	}
	logger.Debugw("store_stats_recomputed",
		"store_id", storeID,
		"products", snapshot.TotalProducts,
		"orders", snapshot.TotalOrders,
		"revenue", snapshot.TotalRevenue,
	)
	return nil
}

// RecomputeAllStats sweeps every store, continuing past failures
func (s *StoreService) RecomputeAllStats() error {
	ids, err := s.storeRepo.ListIDs()
	if err != nil {
		return err
	}
	var firstErr error
	for _, id := range ids {
		if err := s.RecomputeStats(id); err != nil {
			logger.Warnw("store_stats_recompute_failed", "store_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func validThemeColor(color string) bool {
	if !strings.HasPrefix(color, "#") {
		return false
	}
	hex := color[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
