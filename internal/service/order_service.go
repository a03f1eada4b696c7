package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/queue"
	"github.com/averoza/marketplace/internal/repository"

	"gorm.io/gorm"
)

// Actor the authenticated account performing an order operation
type Actor struct {
	UserID uint
	Role   string
}

// OrderService order ledger operations
type OrderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewOrderService creates the order service
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// GetOrder returns one order, scoped to what the actor may see.
// Admins see everything, buyers see their own orders, and vendors see
// orders containing their items with the line items trimmed to their
// own.
func (s *OrderService) GetOrder(orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	switch actor.Role {
	case constants.RoleAdmin:
		return order, nil
	case constants.RoleVendor:
		if order.UserID == actor.UserID {
			return order, nil
		}
		filtered := filterVendorItems(order.Items, actor.UserID)
		if len(filtered) == 0 {
			return nil, ErrForbidden
		}
		order.Items = filtered
		return order, nil
	default:
		if order.UserID != actor.UserID {
			return nil, ErrForbidden
		}
		return order, nil
	}
}

// ListUserOrders pages the buyer's own orders
func (s *OrderService) ListUserOrders(userID uint, status string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   status,
	})
}

// ListVendorOrders pages orders containing the vendor's items, each
// trimmed to the vendor's own lines.
func (s *OrderService) ListVendorOrders(vendorID uint, status string, page, pageSize int) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListByVendor(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendorID,
		Status:   status,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = filterVendorItems(orders[i].Items, vendorID)
	}
	return orders, total, nil
}

// ListAdminOrders pages all orders
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// VendorStats returns the vendor's dashboard aggregates
func (s *OrderService) VendorStats(vendorID uint) (*repository.VendorOrderStats, error) {
	return s.orderRepo.VendorStats(vendorID)
}

// UpdateStatus moves an order along the lifecycle. Vendors may only
// touch orders carrying their items; the transition table rejects
// everything but the single forward step, so statuses never move
// backwards and cancellation cannot happen through this path.
func (s *OrderService) UpdateStatus(orderID uint, actor Actor, newStatus, note, trackingNumber string) (*models.Order, error) {
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	if !ValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if actor.Role == constants.RoleVendor {
		ok, err := s.orderRepo.ContainsVendorItems(orderID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	} else if actor.Role != constants.RoleAdmin {
		return nil, ErrForbidden
	}

	if !CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, newStatus)
	}

	now := time.Now()
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", newStatus)
	}
	history := append(order.StatusHistory, models.StatusHistoryEntry{
		Status:    newStatus,
		Timestamp: now,
		Note:      note,
	})
	updates := map[string]interface{}{
		"status_history": history,
		"updated_at":     now,
	}
	if trackingNumber != "" {
		updates["tracking_number"] = trackingNumber
	}
	if newStatus == constants.OrderStatusDelivered {
		updates["delivered_at"] = now
		if order.Payment.Method == constants.PaymentMethodCashOnDelivery {
			payment := order.Payment
			payment.Status = constants.PaymentStatusCompleted
			payment.PaidAt = &now
			updates["payment"] = payment
		}
	}

	if err := s.orderRepo.UpdateStatus(orderID, newStatus, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_status_updated",
		"order_number", order.OrderNumber,
		"from", order.Status,
		"to", newStatus,
		"actor_id", actor.UserID,
		"actor_role", actor.Role,
	)
	return s.orderRepo.GetByID(orderID)
}

// CancelOrder backs an order out while it is still pending or
// confirmed. Stock returns to the shelf in the same transaction and
// out_of_stock products flip back to active once units reappear. The
// store counters are reversed through the queue afterwards.
func (s *OrderService) CancelOrder(orderID uint, actor Actor, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if actor.Role != constants.RoleAdmin && order.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if !CanCancel(order.Status) {
		return nil, ErrOrderCancelNotAllowed
	}

	now := time.Now()
	note := "Order cancelled"
	if strings.TrimSpace(reason) != "" {
		note = "Order cancelled: " + strings.TrimSpace(reason)
	}
	history := append(order.StatusHistory, models.StatusHistoryEntry{
		Status:    constants.OrderStatusCancelled,
		Timestamp: now,
		Note:      note,
	})

	err = s.db.Transaction(func(tx *gorm.DB) error {
		productTx := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := productTx.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := productTx.SyncOutOfStockStatus(item.ProductID); err != nil {
				return err
			}
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(orderID, constants.OrderStatusCancelled, map[string]interface{}{
			"status_history": history,
			"cancelled_at":   now,
			"updated_at":     now,
		})
	})
	if err != nil {
		return nil, err
	}

	enqueueStoreStatsDeltas(s.queueClient, order, order.Items, -1)
	logger.Infow("order_cancelled",
		"order_number", order.OrderNumber,
		"actor_id", actor.UserID,
		"reason", reason,
	)
	return s.orderRepo.GetByID(orderID)
}

func filterVendorItems(items []models.OrderItem, vendorID uint) []models.OrderItem {
	filtered := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.VendorID == vendorID {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
