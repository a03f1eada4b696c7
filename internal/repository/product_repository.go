package repository

import (
	"errors"
	"strings"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/models"

	"gorm.io/gorm"
)

// ProductRepository catalog data access
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	Search(keyword string, page, pageSize int) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateFields(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	IncrementViews(id uint) error
	DecrementStock(productID uint, quantity int) (int64, error)
	RestoreStock(productID uint, quantity int) (int64, error)
	SyncOutOfStockStatus(productID uint) error
	StatusCountsByVendor(vendorID uint) ([]ProductStatusCount, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM implementation
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates the catalog repository
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx binds a transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction runs fn inside a transaction
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List product listing with filters and paging
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.WithStore {
		query = query.Preload("Store")
	}
	if filter.OnlyVisible {
		query = query.Where("status IN ?", []string{
			constants.ProductStatusActive,
			constants.ProductStatusOutOfStock,
		})
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured = ?", true)
	}
	if filter.MinPrice != "" {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != "" {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order(productOrderClause(filter.SortBy)).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func productOrderClause(sortBy string) string {
	switch sortBy {
	case "price_asc":
		return "price ASC, id ASC"
	case "price_desc":
		return "price DESC, id ASC"
	case "popular":
		return "views DESC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// Search phrase match on the name first; when nothing hits, widen to
// a substring scan across name, description and tags.
func (r *GormProductRepository) Search(keyword string, page, pageSize int) ([]models.Product, int64, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.Product{}, 0, nil
	}

	visible := []string{constants.ProductStatusActive, constants.ProductStatusOutOfStock}
	like := "%" + keyword + "%"

	base := r.db.Model(&models.Product{}).
		Where("status IN ?", visible).
		Where("name LIKE ?", like)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if total == 0 {
		base = r.db.Model(&models.Product{}).
			Where("status IN ?", visible).
			Where("name LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
		if err := base.Count(&total).Error; err != nil {
			return nil, 0, err
		}
	}

	var products []models.Product
	query := applyPagination(base.Preload("Category").Preload("Store"), page, pageSize)
	if err := query.Order("views DESC, created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID fetches a product by id
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").Preload("Store").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug fetches a product by slug
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").Preload("Store").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs fetches products by id set
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update saves a full product row
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// UpdateFields applies a partial update
func (r *GormProductRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
}

// Delete soft-deletes a product
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountBySlug counts slug collisions, optionally excluding one row
func (r *GormProductRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementViews bumps the detail view counter
func (r *GormProductRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// DecrementStock conditionally takes quantity units off the shelf.
// The WHERE guard makes the decrement a compare-and-swap: zero rows
// affected means another checkout won the remaining stock. Untracked
// products match unconditionally.
func (r *GormProductRepository) DecrementStock(productID uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND (track_inventory = ? OR stock_quantity >= ?)", productID, false, quantity).
		Update("stock_quantity", gorm.Expr(
			"CASE WHEN track_inventory THEN stock_quantity - ? ELSE stock_quantity END", quantity))
	return result.RowsAffected, result.Error
}

// RestoreStock returns quantity units to the shelf
func (r *GormProductRepository) RestoreStock(productID uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND track_inventory = ?", productID, true).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	return result.RowsAffected, result.Error
}

// SyncOutOfStockStatus reconciles the status flag with the counter:
// tracked products at zero become out_of_stock, and out_of_stock
// products with units back on the shelf return to active.
func (r *GormProductRepository) SyncOutOfStockStatus(productID uint) error {
	if err := r.db.Model(&models.Product{}).
		Where("id = ? AND track_inventory = ? AND stock_quantity <= 0 AND status = ?",
			productID, true, constants.ProductStatusActive).
		Update("status", constants.ProductStatusOutOfStock).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Product{}).
		Where("id = ? AND track_inventory = ? AND stock_quantity > 0 AND status = ?",
			productID, true, constants.ProductStatusOutOfStock).
		Update("status", constants.ProductStatusActive).Error
}

// StatusCountsByVendor tallies one vendor's products per status
func (r *GormProductRepository) StatusCountsByVendor(vendorID uint) ([]ProductStatusCount, error) {
	var counts []ProductStatusCount
	if err := r.db.Model(&models.Product{}).
		Select("status, COUNT(*) AS count").
		Where("vendor_id = ?", vendorID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
