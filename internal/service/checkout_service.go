package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/queue"
	"github.com/averoza/marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutPricing totals parameters, fixed at startup from config
type CheckoutPricing struct {
	TaxRate     decimal.Decimal
	ShippingFee models.Money
	Currency    string
}

// LoadCheckoutPricing parses the order config block. Malformed values
// fall back to zero rates rather than blocking startup.
func LoadCheckoutPricing(cfg *config.OrderConfig) CheckoutPricing {
	pricing := CheckoutPricing{Currency: constants.SiteCurrencyDefault}
	if cfg == nil {
		return pricing
	}
	if rate, err := decimal.NewFromString(strings.TrimSpace(cfg.TaxRate)); err == nil && !rate.IsNegative() {
		pricing.TaxRate = rate
	} else if strings.TrimSpace(cfg.TaxRate) != "" {
		logger.Warnw("checkout_tax_rate_invalid", "value", cfg.TaxRate)
	}
	if fee, err := models.NewMoneyFromString(strings.TrimSpace(cfg.ShippingFee)); err == nil && !fee.IsNegative() {
		pricing.ShippingFee = fee
	} else if strings.TrimSpace(cfg.ShippingFee) != "" {
		logger.Warnw("checkout_shipping_fee_invalid", "value", cfg.ShippingFee)
	}
	if currency := strings.TrimSpace(cfg.Currency); currency != "" {
		pricing.Currency = strings.ToUpper(currency)
	}
	return pricing
}

// CheckoutInput the buyer's side of a checkout request. Line items
// come from the stored cart, never from the request body.
type CheckoutInput struct {
	ShippingAddress       models.Address
	BillingAddress        *models.Address
	BillingSameAsShipping bool
	PaymentMethod         string
	CustomerNotes         string
}

// CheckoutService turns a cart into an order.
//
// The inventory decrement, the order insert and the cart snapshot all
// commit in one database transaction, so a failure at any point before
// commit leaves no side effects. Cart clearing and store counters run
// after commit and are deliberately best-effort: their failure is
// logged, never surfaced, and repaired later (cart validation prunes,
// the recompute sweep fixes counters).
type CheckoutService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
	pricing     CheckoutPricing
}

// NewCheckoutService creates the checkout service
func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	queueClient *queue.Client,
	pricing CheckoutPricing,
) *CheckoutService {
	if pricing.Currency == "" {
		pricing.Currency = constants.SiteCurrencyDefault
	}
	return &CheckoutService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		queueClient: queueClient,
		pricing:     pricing,
	}
}

// CheckoutTotals priced view of the current cart, for the summary
// endpoint and the order itself.
type CheckoutTotals struct {
	Subtotal models.Money `json:"subtotal"`
	Tax      models.Money `json:"tax"`
	Shipping models.Money `json:"shipping"`
	Discount models.Money `json:"discount"`
	Total    models.Money `json:"total"`
	Currency string       `json:"currency"`
}

// Summary prices the cart without touching anything
func (s *CheckoutService) Summary(userID uint) (*CheckoutTotals, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	if err := validateCartItems(items); err != nil {
		return nil, err
	}
	totals := s.computeTotals(items)
	return &totals, nil
}

// Process runs the checkout end to end and returns the created order
func (s *CheckoutService) Process(userID uint, input CheckoutInput) (*models.Order, error) {
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrPaymentMethodInvalid
	}
	if err := validateShippingAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	if err := validateCartItems(items); err != nil {
		return nil, err
	}

	totals := s.computeTotals(items)
	now := time.Now()

	billing := input.ShippingAddress
	sameAsShipping := true
	if input.BillingAddress != nil && !input.BillingSameAsShipping {
		billing = *input.BillingAddress
		sameAsShipping = false
	}

	order := &models.Order{
		OrderNumber:       generateOrderNumber(now),
		UserID:            userID,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		ShippingCost:      totals.Shipping,
		Discount:          totals.Discount,
		Total:             totals.Total,
		Currency:          totals.Currency,
		Status:            constants.OrderStatusPending,
		ShippingAddress:   input.ShippingAddress,
		BillingAddress:    billing,
		BillingSameAsShip: sameAsShipping,
		Payment: models.PaymentInfo{
			Method: input.PaymentMethod,
			Status: constants.PaymentStatusPending,
		},
		StatusHistory: models.StatusHistory{{
			Status:    constants.OrderStatusPending,
			Timestamp: now,
			Note:      "Order created",
		}},
		CustomerNotes: input.CustomerNotes,
	}

	orderItems := buildOrderItems(items)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		productTx := s.productRepo.WithTx(tx)
		for _, item := range items {
			rows, err := productTx.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				// Lost the race for the remaining units; the
				// transaction rollback undoes earlier decrements.
				return &StockError{
					ProductID:   item.ProductID,
					ProductName: item.Product.Name,
					Requested:   item.Quantity,
					Reason:      ErrStockConflict,
				}
			}
			if err := productTx.SyncOutOfStockStatus(item.ProductID); err != nil {
				return err
			}
		}

		if err := s.orderRepo.WithTx(tx).Create(order, orderItems); err != nil {
			if isDuplicateKeyError(err) {
				return ErrOrderNumberConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit steps. The order exists regardless of what happens
	// below; failures here must not be surfaced to the buyer.
	if err := s.cartRepo.ClearByUser(userID); err != nil {
		logger.Warnw("checkout_cart_clear_failed",
			"user_id", userID,
			"order_number", order.OrderNumber,
			"error", err,
		)
	}
	enqueueStoreStatsDeltas(s.queueClient, order, orderItems, 1)

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil || created == nil {
		logger.Warnw("checkout_reload_failed", "order_id", order.ID, "error", err)
		order.Items = orderItems
		return order, nil
	}
	logger.Infow("checkout_completed",
		"user_id", userID,
		"order_number", order.OrderNumber,
		"total", order.Total.String(),
		"items", len(orderItems),
	)
	return created, nil
}

// enqueueStoreStatsDeltas pushes one idempotent counter task per
// store. direction is +1 for checkout, -1 for cancellation.
func enqueueStoreStatsDeltas(client *queue.Client, order *models.Order, items []models.OrderItem, direction int) {
	if client == nil {
		return
	}
	type delta struct {
		revenue decimal.Decimal
	}
	perStore := map[uint]*delta{}
	for _, item := range items {
		d, ok := perStore[item.StoreID]
		if !ok {
			d = &delta{revenue: decimal.Zero}
			perStore[item.StoreID] = d
		}
		d.revenue = d.revenue.Add(item.TotalPrice.Decimal)
	}
	for storeID, d := range perStore {
		payload := queue.StoreStatsApplyPayload{
			StoreID:      storeID,
			OrderNumber:  order.OrderNumber,
			OrdersDelta:  direction,
			RevenueDelta: d.revenue.Mul(decimal.NewFromInt(int64(direction))).Round(2).StringFixed(2),
		}
		if err := client.EnqueueStoreStatsApply(payload); err != nil {
			logger.Warnw("store_stats_enqueue_failed",
				"store_id", storeID,
				"order_number", order.OrderNumber,
				"error", err,
			)
		}
	}
}

func (s *CheckoutService) computeTotals(items []models.CartItem) CheckoutTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(s.pricing.TaxRate).Round(2)
	shipping := s.pricing.ShippingFee.Decimal
	discount := decimal.Zero
	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(2)
	return CheckoutTotals{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Tax:      models.NewMoneyFromDecimal(tax),
		Shipping: models.NewMoneyFromDecimal(shipping),
		Discount: models.NewMoneyFromDecimal(discount),
		Total:    models.NewMoneyFromDecimal(total),
		Currency: s.pricing.Currency,
	}
}

func validateCartItems(items []models.CartItem) error {
	for _, item := range items {
		product := item.Product
		if product == nil || !product.Purchasable() {
			name := ""
			if product != nil {
				name = product.Name
			}
			return &StockError{
				ProductID:   item.ProductID,
				ProductName: name,
				Reason:      ErrProductNotAvailable,
			}
		}
		if !product.InStock(item.Quantity) {
			return &StockError{
				ProductID:   item.ProductID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.StockQuantity,
				Reason:      ErrInsufficientStock,
			}
		}
	}
	return nil
}

func buildOrderItems(items []models.CartItem) []models.OrderItem {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product := item.Product
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, models.OrderItem{
			ProductID:    item.ProductID,
			VendorID:     product.VendorID,
			StoreID:      product.StoreID,
			ProductName:  product.Name,
			ProductImage: image,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   models.NewMoneyFromDecimal(lineTotal),
		})
	}
	return orderItems
}

func validateShippingAddress(addr models.Address) error {
	if strings.TrimSpace(addr.Street) == "" ||
		strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.Country) == "" {
		return fmt.Errorf("%w: shipping address requires street, city and country", ErrValidation)
	}
	return nil
}

func validPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCreditCard,
		constants.PaymentMethodDebitCard,
		constants.PaymentMethodPaypal,
		constants.PaymentMethodBankTransfer,
		constants.PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// generateOrderNumber ORD-<epoch-ms suffix>-<random base36>. The
// unique index on order_number is the real guarantee; a collision
// fails the checkout instead of silently reusing a number.
func generateOrderNumber(now time.Time) string {
	ms := now.UnixMilli()
	suffix := ms % 1000000
	return fmt.Sprintf("ORD-%06d-%s", suffix, randBase36(6))
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randBase36(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	return b.String()
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
