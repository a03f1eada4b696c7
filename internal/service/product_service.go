package service

import (
	"fmt"
	"strings"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/repository"
)

// ProductService catalog operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	storeRepo    repository.StoreRepository
}

// NewProductService creates the product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	storeRepo repository.StoreRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
	}
}

// ProductInput create/update payload for vendor product management
type ProductInput struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Price             string             `json:"price"`
	CategoryID        uint               `json:"category_id"`
	StockQuantity     *int               `json:"stock_quantity"`
	LowStockThreshold *int               `json:"low_stock_threshold"`
	TrackInventory    *bool              `json:"track_inventory"`
	Images            models.StringArray `json:"images"`
	Tags              models.StringArray `json:"tags"`
	Featured          *bool              `json:"featured"`
}

// ListProducts storefront listing, visible products only
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyVisible = true
	filter.WithCategory = true
	filter.WithStore = true
	return s.productRepo.List(filter)
}

// SearchProducts keyword search with substring fallback
func (s *ProductService) SearchProducts(keyword string, page, pageSize int) ([]models.Product, int64, error) {
	return s.productRepo.Search(keyword, page, pageSize)
}

// GetProduct public detail view; hidden and inactive products read as
// missing, and every hit bumps the view counter.
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.publicView(product)
}

// GetProductBySlug slug variant of the public detail view
func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.publicView(product)
}

func (s *ProductService) publicView(product *models.Product) (*models.Product, error) {
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Status == constants.ProductStatusHidden || product.Status == constants.ProductStatusInactive {
		return nil, ErrProductNotFound
	}
	if err := s.productRepo.IncrementViews(product.ID); err != nil {
		logger.Warnw("product_views_increment_failed", "product_id", product.ID, "error", err)
	} else {
		product.Views++
	}
	return product, nil
}

// GetVendorProduct detail view for the owning vendor, any status
func (s *ProductService) GetVendorProduct(vendorID, productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.VendorID != vendorID {
		return nil, ErrForbidden
	}
	return product, nil
}

// CreateProduct adds a listing under the vendor's store
func (s *ProductService) CreateProduct(vendorID uint, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	price, err := models.NewMoneyFromString(input.Price)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("%w: invalid price", ErrValidation)
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	store, err := s.storeRepo.GetByVendorID(vendorID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	stock := 0
	if input.StockQuantity != nil {
		stock = *input.StockQuantity
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	track := true
	if input.TrackInventory != nil {
		track = *input.TrackInventory
	}
	threshold := 5
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	product := &models.Product{
		Name:              name,
		Description:       input.Description,
		Price:             price,
		CategoryID:        category.ID,
		VendorID:          vendorID,
		StoreID:           store.ID,
		StockQuantity:     stock,
		LowStockThreshold: threshold,
		TrackInventory:    track,
		Status:            deriveStatus(constants.ProductStatusActive, track, stock),
		Images:            input.Images,
		Tags:              input.Tags,
		Featured:          input.Featured != nil && *input.Featured,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	// Slug carries the row id as a discriminator, so it is written
	// after the insert.
	product.Slug = uniqueSlugWithSuffix(slugify(name), product.ID)
	if err := s.productRepo.UpdateFields(product.ID, map[string]interface{}{"slug": product.Slug}); err != nil {
		return nil, err
	}

	if err := s.storeRepo.ApplyStatsDelta(store.ID, 0, models.Money{}, 1); err != nil {
		logger.Warnw("store_product_count_bump_failed", "store_id", store.ID, "error", err)
	}
	return s.productRepo.GetByID(product.ID)
}

// UpdateProduct edits a listing the vendor owns
func (s *ProductService) UpdateProduct(actor Actor, productID uint, input ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(actor, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" && name != product.Name {
		updates["name"] = name
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.Price != "" {
		price, err := models.NewMoneyFromString(input.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: invalid price", ErrValidation)
		}
		updates["price"] = price
	}
	if input.CategoryID != 0 && input.CategoryID != product.CategoryID {
		category, err := s.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		updates["category_id"] = category.ID
	}
	track := product.TrackInventory
	if input.TrackInventory != nil {
		track = *input.TrackInventory
		updates["track_inventory"] = track
	}
	stock := product.StockQuantity
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		stock = *input.StockQuantity
		updates["stock_quantity"] = stock
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.Images != nil {
		updates["images"] = input.Images
	}
	if input.Tags != nil {
		updates["tags"] = input.Tags
	}
	if input.Featured != nil {
		updates["featured"] = *input.Featured
	}

	if product.Status == constants.ProductStatusActive || product.Status == constants.ProductStatusOutOfStock {
		updates["status"] = deriveStatus(constants.ProductStatusActive, track, stock)
	}

	if len(updates) > 0 {
		if err := s.productRepo.UpdateFields(productID, updates); err != nil {
			return nil, err
		}
	}
	return s.productRepo.GetByID(productID)
}

// SetVisibility switches a listing between active, inactive and
// hidden. out_of_stock is derived, never set by hand: activating a
// tracked listing with no stock lands on out_of_stock.
func (s *ProductService) SetVisibility(actor Actor, productID uint, status string) (*models.Product, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case constants.ProductStatusActive, constants.ProductStatusInactive, constants.ProductStatusHidden:
	default:
		return nil, fmt.Errorf("%w: status must be active, inactive or hidden", ErrValidation)
	}
	product, err := s.ownedProduct(actor, productID)
	if err != nil {
		return nil, err
	}
	if status == constants.ProductStatusActive {
		status = deriveStatus(constants.ProductStatusActive, product.TrackInventory, product.StockQuantity)
	}
	if err := s.productRepo.UpdateFields(productID, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(productID)
}

// DeleteProduct removes a listing the vendor owns
func (s *ProductService) DeleteProduct(actor Actor, productID uint) error {
	product, err := s.ownedProduct(actor, productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(productID); err != nil {
		return err
	}
	if err := s.storeRepo.ApplyStatsDelta(product.StoreID, 0, models.Money{}, -1); err != nil {
		logger.Warnw("store_product_count_bump_failed", "store_id", product.StoreID, "error", err)
	}
	return nil
}

// VendorProducts pages the vendor's own listings, any status, with
// per-status tallies for the dashboard.
func (s *ProductService) VendorProducts(vendorID uint, filter repository.ProductListFilter) ([]models.Product, int64, []repository.ProductStatusCount, error) {
	filter.VendorID = vendorID
	filter.WithCategory = true
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, nil, err
	}
	counts, err := s.productRepo.StatusCountsByVendor(vendorID)
	if err != nil {
		return nil, 0, nil, err
	}
	return products, total, counts, nil
}

func (s *ProductService) ownedProduct(actor Actor, productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if actor.Role != constants.RoleAdmin && product.VendorID != actor.UserID {
		return nil, ErrForbidden
	}
	return product, nil
}

// deriveStatus keeps the out_of_stock invariant: a tracked listing
// with zero units cannot read active.
func deriveStatus(wanted string, trackInventory bool, stock int) string {
	if wanted == constants.ProductStatusActive && trackInventory && stock <= 0 {
		return constants.ProductStatusOutOfStock
	}
	return wanted
}
