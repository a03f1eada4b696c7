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

func newOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
}

type orderSeed struct {
	UserID        uint
	Status        string
	PaymentMethod string
	Items         []models.OrderItem
}

func seedOrder(t *testing.T, db *gorm.DB, seed orderSeed) *models.Order {
	t.Helper()
	if seed.PaymentMethod == "" {
		seed.PaymentMethod = constants.PaymentMethodCreditCard
	}
	order := &models.Order{
		OrderNumber: fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		UserID:      seed.UserID,
		Status:      seed.Status,
		Currency:    "USD",
		Payment: models.PaymentInfo{
			Method: seed.PaymentMethod,
			Status: constants.PaymentStatusPending,
		},
		StatusHistory: models.StatusHistory{{
			Status:    seed.Status,
			Timestamp: time.Now(),
			Note:      "seeded",
		}},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	for i := range seed.Items {
		seed.Items[i].OrderID = order.ID
		if err := db.Create(&seed.Items[i]).Error; err != nil {
			t.Fatalf("seed order item: %v", err)
		}
	}
	order.Items = seed.Items
	return order
}

func TestUpdateStatusVendorForwardStep(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1}},
	})
	vendor := Actor{UserID: 10, Role: constants.RoleVendor}

	updated, err := svc.UpdateStatus(order.ID, vendor, constants.OrderStatusConfirmed, "", "")
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	if last.Status != constants.OrderStatusConfirmed {
		t.Fatalf("last history entry = %+v", last)
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1}},
	})
	vendor := Actor{UserID: 10, Role: constants.RoleVendor}

	if _, err := svc.UpdateStatus(order.ID, vendor, constants.OrderStatusShipped, "", ""); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
}

func TestUpdateStatusCannotCancel(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1}},
	})

	// Cancellation has its own path with a stock restore; a plain
	// status update must never reach cancelled.
	admin := Actor{UserID: 99, Role: constants.RoleAdmin}
	if _, err := svc.UpdateStatus(order.ID, admin, constants.OrderStatusCancelled, "", ""); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
}

func TestUpdateStatusVendorWithoutItems(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1}},
	})
	stranger := Actor{UserID: 77, Role: constants.RoleVendor}

	if _, err := svc.UpdateStatus(order.ID, stranger, constants.OrderStatusConfirmed, "", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateStatusDeliveredSettlesCashOnDelivery(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID:        1,
		Status:        constants.OrderStatusShipped,
		PaymentMethod: constants.PaymentMethodCashOnDelivery,
		Items:         []models.OrderItem{{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1}},
	})
	admin := Actor{UserID: 99, Role: constants.RoleAdmin}

	updated, err := svc.UpdateStatus(order.ID, admin, constants.OrderStatusDelivered, "", "")
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("expected delivered_at to be set")
	}
	if updated.Payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("payment status = %s, want completed", updated.Payment.Status)
	}
	if updated.Payment.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	product := &models.Product{
		Name:           "Widget",
		Slug:           "widget",
		CategoryID:     1,
		VendorID:       10,
		StoreID:        100,
		StockQuantity:  0,
		TrackInventory: true,
		Status:         constants.ProductStatusOutOfStock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: product.ID, VendorID: 10, StoreID: 100, Quantity: 2}},
	})
	owner := Actor{UserID: 1, Role: constants.RoleCustomer}

	cancelled, err := svc.CancelOrder(order.ID, owner, "changed my mind")
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
	last := cancelled.StatusHistory[len(cancelled.StatusHistory)-1]
	if last.Status != constants.OrderStatusCancelled || last.Note == "" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockQuantity != 2 {
		t.Fatalf("stock = %d, want 2", reloaded.StockQuantity)
	}
	if reloaded.Status != constants.ProductStatusActive {
		t.Fatalf("status = %s, want active after units returned", reloaded.Status)
	}
}

func TestCancelOrderGuards(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	processing := seedOrder(t, db, orderSeed{UserID: 1, Status: constants.OrderStatusProcessing})
	owner := Actor{UserID: 1, Role: constants.RoleCustomer}
	if _, err := svc.CancelOrder(processing.ID, owner, ""); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected ErrOrderCancelNotAllowed, got %v", err)
	}

	pending := seedOrder(t, db, orderSeed{UserID: 1, Status: constants.OrderStatusPending})
	stranger := Actor{UserID: 2, Role: constants.RoleCustomer}
	if _, err := svc.CancelOrder(pending.ID, stranger, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.CancelOrder(9999, owner, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrderScoping(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	order := seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1},
			{ProductID: 2, VendorID: 11, StoreID: 101, Quantity: 1},
		},
	})

	got, err := svc.GetOrder(order.ID, Actor{UserID: 1, Role: constants.RoleCustomer})
	if err != nil {
		t.Fatalf("owner GetOrder error: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("owner should see all items, got %d", len(got.Items))
	}

	if _, err := svc.GetOrder(order.ID, Actor{UserID: 2, Role: constants.RoleCustomer}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another customer, got %v", err)
	}

	vendorView, err := svc.GetOrder(order.ID, Actor{UserID: 10, Role: constants.RoleVendor})
	if err != nil {
		t.Fatalf("vendor GetOrder error: %v", err)
	}
	if len(vendorView.Items) != 1 || vendorView.Items[0].VendorID != 10 {
		t.Fatalf("vendor should see only their items, got %+v", vendorView.Items)
	}

	if _, err := svc.GetOrder(order.ID, Actor{UserID: 12, Role: constants.RoleVendor}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unrelated vendor, got %v", err)
	}

	adminView, err := svc.GetOrder(order.ID, Actor{UserID: 99, Role: constants.RoleAdmin})
	if err != nil {
		t.Fatalf("admin GetOrder error: %v", err)
	}
	if len(adminView.Items) != 2 {
		t.Fatalf("admin should see all items, got %d", len(adminView.Items))
	}
}

func TestListVendorOrdersTrimsItems(t *testing.T) {
	db := newOrderTestDB(t)
	svc := newOrderService(db)

	seedOrder(t, db, orderSeed{
		UserID: 1,
		Status: constants.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: 1, VendorID: 10, StoreID: 100, Quantity: 1},
			{ProductID: 2, VendorID: 11, StoreID: 101, Quantity: 1},
		},
	})
	seedOrder(t, db, orderSeed{
		UserID: 2,
		Status: constants.OrderStatusPending,
		Items:  []models.OrderItem{{ProductID: 3, VendorID: 11, StoreID: 101, Quantity: 1}},
	})

	orders, total, err := svc.ListVendorOrders(10, "", 1, 20)
	if err != nil {
		t.Fatalf("ListVendorOrders error: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("expected 1 order for vendor 10, got total=%d len=%d", total, len(orders))
	}
	for _, item := range orders[0].Items {
		if item.VendorID != 10 {
			t.Fatalf("leaked item from another vendor: %+v", item)
		}
	}
}
