package repository

import (
	"errors"
	"strings"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/models"

	"gorm.io/gorm"
)

// StoreRepository storefront data access
type StoreRepository interface {
	List(filter StoreListFilter) ([]models.Store, int64, error)
	GetByID(id uint) (*models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	GetByVendorID(vendorID uint) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
	UpdateFields(id uint, updates map[string]interface{}) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	ApplyStatsDelta(storeID uint, ordersDelta int, revenueDelta models.Money, productsDelta int) error
	RecomputeStats(storeID uint) (*StoreStatsSnapshot, error)
	ListIDs() ([]uint, error)
	WithTx(tx *gorm.DB) *GormStoreRepository
}

// GormStoreRepository GORM implementation
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates the store repository
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// WithTx binds a transaction
func (r *GormStoreRepository) WithTx(tx *gorm.DB) *GormStoreRepository {
	if tx == nil {
		return r
	}
	return &GormStoreRepository{db: tx}
}

// List pages stores for public browsing
func (r *GormStoreRepository) List(filter StoreListFilter) ([]models.Store, int64, error) {
	query := r.db.Model(&models.Store{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stores []models.Store
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("total_orders DESC, created_at DESC").Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// GetByID fetches a store by id
func (r *GormStoreRepository) GetByID(id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetBySlug fetches a store by slug
func (r *GormStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.Where("slug = ?", slug).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetByVendorID fetches the vendor's store
func (r *GormStoreRepository) GetByVendorID(vendorID uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.Where("vendor_id = ?", vendorID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// Create inserts a store
func (r *GormStoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// Update saves a full store row
func (r *GormStoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}

// UpdateFields applies a partial update
func (r *GormStoreRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Store{}).Where("id = ?", id).Updates(updates).Error
}

// CountBySlug counts slug collisions, optionally excluding one row
func (r *GormStoreRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Store{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyStatsDelta bumps the denormalized counters in place. Callers
// retrying the same delta must dedupe upstream; the update itself is
// a plain atomic increment.
func (r *GormStoreRepository) ApplyStatsDelta(storeID uint, ordersDelta int, revenueDelta models.Money, productsDelta int) error {
	updates := map[string]interface{}{}
	if ordersDelta != 0 {
		updates["total_orders"] = gorm.Expr("total_orders + ?", ordersDelta)
	}
	if !revenueDelta.IsZero() {
		updates["total_revenue"] = gorm.Expr("total_revenue + ?", revenueDelta)
	}
	if productsDelta != 0 {
		updates["total_products"] = gorm.Expr("total_products + ?", productsDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Store{}).Where("id = ?", storeID).Updates(updates).Error
}

// RecomputeStats rebuilds the counters from the ledger and catalog
// and writes them back. This is the source of truth the incremental
// deltas drift toward.
func (r *GormStoreRepository) RecomputeStats(storeID uint) (*StoreStatsSnapshot, error) {
	snapshot := &StoreStatsSnapshot{}

	if err := r.db.Model(&models.Product{}).
		Where("store_id = ?", storeID).
		Count(&snapshot.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("status <> ?", constants.OrderStatusCancelled).
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.store_id = ?)", storeID).
		Count(&snapshot.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue struct {
		Revenue string
	}
	if err := r.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.store_id = ? AND orders.status <> ?", storeID, constants.OrderStatusCancelled).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	snapshot.TotalRevenue = revenue.Revenue
	if snapshot.TotalRevenue == "" {
		snapshot.TotalRevenue = "0"
	}

	amount, err := models.NewMoneyFromString(snapshot.TotalRevenue)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Store{}).Where("id = ?", storeID).Updates(map[string]interface{}{
		"total_products": snapshot.TotalProducts,
		"total_orders":   snapshot.TotalOrders,
		"total_revenue":  amount,
	}).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListIDs returns every store id, for the recompute sweep
func (r *GormStoreRepository) ListIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Store{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
