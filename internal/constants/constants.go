package constants

// Order status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// Payment method constants
const (
	PaymentMethodCreditCard     = "credit_card"
	PaymentMethodDebitCard      = "debit_card"
	PaymentMethodPaypal         = "paypal"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)

// Payment status constants
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Product status constants
const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusHidden     = "hidden"
	ProductStatusOutOfStock = "out_of_stock"
)

// User role constants
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// Queue constants
const (
	QueueDefault            = "default"
	TaskStoreStatsApply     = "store_stats:apply"
	TaskStoreStatsRecompute = "store_stats:recompute"
)

// Cache constants
const (
	RedisPrefixDefault = "avz"
)

// Currency constants
const (
	SiteCurrencyDefault = "USD"
)
