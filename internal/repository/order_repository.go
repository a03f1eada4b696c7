package repository

import (
	"errors"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/models"

	"gorm.io/gorm"
)

// OrderRepository order ledger data access
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNumber(orderNumber string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListByVendor(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	VendorStats(vendorID uint) (*VendorOrderStats, error)
	ContainsVendorItems(orderID, vendorID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM implementation
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the order repository
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds a transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create persists the order row and its line items together
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches an order with items
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser fetches a customer's own order
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNumber fetches an order by its human-facing number
func (r *GormOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser pages a customer's own orders
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	return r.listOrders(query, filter)
}

// ListByVendor pages orders containing at least one of the vendor's
// line items.
func (r *GormOrderRepository) ListByVendor(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.vendor_id = ?)",
			filter.VendorID)
	return r.listOrders(query, filter)
}

// ListAdmin pages all orders with optional filters
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderNumber != "" {
		query = query.Where("order_number = ?", filter.OrderNumber)
	}
	return r.listOrders(query, filter)
}

func (r *GormOrderRepository) listOrders(query *gorm.DB, filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("Items"), filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves the order's status plus any companion fields
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// ContainsVendorItems reports whether the order carries any of the
// vendor's line items.
func (r *GormOrderRepository) ContainsVendorItems(orderID, vendorID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND vendor_id = ?", orderID, vendorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// VendorStats aggregates the vendor's dashboard figures. Revenue sums
// the vendor's own line totals inside delivered orders.
func (r *GormOrderRepository) VendorStats(vendorID uint) (*VendorOrderStats, error) {
	stats := &VendorOrderStats{}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := r.db.Model(&models.Order{}).
		Select("orders.status, COUNT(DISTINCT orders.id) AS count").
		Joins("JOIN order_items oi ON oi.order_id = orders.id").
		Where("oi.vendor_id = ?", vendorID).
		Group("orders.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.TotalOrders += row.Count
		switch row.Status {
		case constants.OrderStatusPending, constants.OrderStatusConfirmed:
			stats.PendingOrders += row.Count
		case constants.OrderStatusShipped:
			stats.ShippedOrders += row.Count
		case constants.OrderStatusDelivered:
			stats.DeliveredOrders += row.Count
		case constants.OrderStatusCancelled:
			stats.CancelledOrders += row.Count
		}
	}

	var agg struct {
		Units   int64
		Revenue string
	}
	if err := r.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0) AS units, COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.vendor_id = ? AND orders.status = ?", vendorID, constants.OrderStatusDelivered).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	stats.TotalUnits = agg.Units
	stats.TotalRevenue = agg.Revenue
	if stats.TotalRevenue == "" {
		stats.TotalRevenue = "0"
	}
	return stats, nil
}
