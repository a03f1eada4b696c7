package repository

import "time"

// ProductListFilter filters for product listings
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	VendorID     uint
	StoreID      uint
	Search       string
	Status       string
	MinPrice     string
	MaxPrice     string
	FeaturedOnly bool
	OnlyVisible  bool // storefront view: active and out_of_stock only
	WithCategory bool
	WithStore    bool
	SortBy       string // newest / price_asc / price_desc / popular
}

// OrderListFilter filters for order listings
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	VendorID    uint
	Status      string
	OrderNumber string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StoreListFilter filters for store listings
type StoreListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// ProductStatusCount count of one vendor's products per status
type ProductStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// VendorOrderStats aggregated figures for a vendor's dashboard
type VendorOrderStats struct {
	TotalOrders     int64  `json:"total_orders"`
	PendingOrders   int64  `json:"pending_orders"`
	ShippedOrders   int64  `json:"shipped_orders"`
	DeliveredOrders int64  `json:"delivered_orders"`
	CancelledOrders int64  `json:"cancelled_orders"`
	TotalUnits      int64  `json:"total_units"`
	TotalRevenue    string `json:"total_revenue"`
}

// StoreStatsSnapshot recomputed counters for one store
type StoreStatsSnapshot struct {
	TotalProducts int64
	TotalOrders   int64
	TotalRevenue  string
}
