package main

import (
	"fmt"

	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	categoryIDs := seedCategories(stdLog.Printf)
	vendors := seedVendors(stdLog.Printf)
	seedProducts(stdLog.Printf, categoryIDs, vendors)

	stdLog.Printf("seed finished")
}

type seededVendor struct {
	UserID  uint
	StoreID uint
}

func seedCategories(logf func(string, ...interface{})) map[string]uint {
	categories := []models.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Phones, laptops and consumer electronics", SortOrder: 1},
		{Name: "Home & Kitchen", Slug: "home-kitchen", Description: "Everything for the home", SortOrder: 2},
		{Name: "Accessories", Slug: "accessories", Description: "Cables, cases and add-ons", SortOrder: 3},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				logf("failed to create category %s: %v", cat.Slug, err)
			} else {
				logf("created category: %s", cat.Slug)
			}
		} else {
			logf("category already exists: %s", cat.Slug)
		}
	}

	ids := map[string]uint{}
	var list []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "home-kitchen", "accessories"}).Find(&list).Error; err != nil {
		logf("failed to load categories: %v", err)
		return ids
	}
	for _, cat := range list {
		ids[cat.Slug] = cat.ID
	}
	return ids
}

func seedVendors(logf func(string, ...interface{})) map[string]seededVendor {
	type vendorSeed struct {
		Username  string
		Email     string
		StoreName string
		StoreSlug string
		About     string
	}

	seeds := []vendorSeed{
		{Username: "acme", Email: "vendor-acme@example.com", StoreName: "Acme Outlet", StoreSlug: "acme-outlet", About: "Factory-direct gadgets at outlet prices"},
		{Username: "northwind", Email: "vendor-northwind@example.com", StoreName: "Northwind Goods", StoreSlug: "northwind-goods", About: "Curated home essentials"},
	}

	result := map[string]seededVendor{}
	for _, seed := range seeds {
		var user models.User
		if err := models.DB.Where("email = ?", seed.Email).First(&user).Error; err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte("vendor123"), bcrypt.DefaultCost)
			if err != nil {
				logf("failed to hash vendor password: %v", err)
				continue
			}
			user = models.User{
				Username:     seed.Username,
				Email:        seed.Email,
				PasswordHash: string(hash),
				Role:         "vendor",
				IsActive:     true,
			}
			if err := models.DB.Create(&user).Error; err != nil {
				logf("failed to create vendor %s: %v", seed.Email, err)
				continue
			}
			logf("created vendor: %s (password vendor123)", seed.Email)
		} else {
			logf("vendor already exists: %s", seed.Email)
		}

		var store models.Store
		if err := models.DB.Where("vendor_id = ?", user.ID).First(&store).Error; err != nil {
			store = models.Store{
				VendorID:    user.ID,
				Name:        seed.StoreName,
				Slug:        seed.StoreSlug,
				Description: seed.About,
				IsActive:    true,
				Contact:     models.Contact{Email: seed.Email},
			}
			if err := models.DB.Create(&store).Error; err != nil {
				logf("failed to create store %s: %v", seed.StoreSlug, err)
				continue
			}
			logf("created store: %s", seed.StoreSlug)
		} else {
			logf("store already exists: %s", store.Slug)
		}

		result[seed.Username] = seededVendor{UserID: user.ID, StoreID: store.ID}
	}
	return result
}

func seedProducts(logf func(string, ...interface{}), categoryIDs map[string]uint, vendors map[string]seededVendor) {
	type productSeed struct {
		Vendor   string
		Category string
		Name     string
		Slug     string
		Price    string
		Compare  string
		Stock    int
		Featured bool
		Tags     []string
	}

	seeds := []productSeed{
		{Vendor: "acme", Category: "electronics", Name: "Wireless Earbuds", Slug: "wireless-earbuds", Price: "49.99", Compare: "69.99", Stock: 120, Featured: true, Tags: []string{"audio", "bluetooth"}},
		{Vendor: "acme", Category: "electronics", Name: "Portable Charger 20000mAh", Slug: "portable-charger-20000", Price: "29.99", Stock: 200, Tags: []string{"power", "travel"}},
		{Vendor: "acme", Category: "accessories", Name: "USB-C Cable 2m", Slug: "usb-c-cable-2m", Price: "9.99", Stock: 500, Tags: []string{"cable"}},
		{Vendor: "northwind", Category: "home-kitchen", Name: "Cast Iron Skillet 12in", Slug: "cast-iron-skillet-12", Price: "39.99", Compare: "54.99", Stock: 60, Featured: true, Tags: []string{"cookware"}},
		{Vendor: "northwind", Category: "home-kitchen", Name: "French Press 1L", Slug: "french-press-1l", Price: "24.99", Stock: 80, Tags: []string{"coffee"}},
		{Vendor: "northwind", Category: "accessories", Name: "Linen Apron", Slug: "linen-apron", Price: "19.99", Stock: 45, Tags: []string{"kitchen", "apparel"}},
	}

	for _, seed := range seeds {
		vendor, ok := vendors[seed.Vendor]
		if !ok {
			logf("skipping product %s: vendor %s missing", seed.Slug, seed.Vendor)
			continue
		}
		categoryID, ok := categoryIDs[seed.Category]
		if !ok {
			logf("skipping product %s: category %s missing", seed.Slug, seed.Category)
			continue
		}

		var existing models.Product
		if err := models.DB.Where("slug = ?", seed.Slug).First(&existing).Error; err == nil {
			logf("product already exists: %s", seed.Slug)
			continue
		}

		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			logf("skipping product %s: bad price %q", seed.Slug, seed.Price)
			continue
		}

		product := models.Product{
			Name:           seed.Name,
			Slug:           seed.Slug,
			Description:    fmt.Sprintf("%s from %s", seed.Name, seed.Vendor),
			Price:          models.NewMoneyFromDecimal(price),
			CategoryID:     categoryID,
			VendorID:       vendor.UserID,
			StoreID:        vendor.StoreID,
			StockQuantity:  seed.Stock,
			TrackInventory: true,
			Status:         "active",
			Featured:       seed.Featured,
			Tags:           models.StringArray(seed.Tags),
		}
		if seed.Compare != "" {
			if compare, err := decimal.NewFromString(seed.Compare); err == nil {
				m := models.NewMoneyFromDecimal(compare)
				product.ComparePrice = &m
			}
		}

		if err := models.DB.Create(&product).Error; err != nil {
			logf("failed to create product %s: %v", seed.Slug, err)
			continue
		}
		logf("created product: %s", seed.Slug)
	}

	// Keep the denormalized store counters in line with what was inserted.
	for name, vendor := range vendors {
		var count int64
		if err := models.DB.Model(&models.Product{}).Where("store_id = ?", vendor.StoreID).Count(&count).Error; err != nil {
			logf("failed to count products for %s: %v", name, err)
			continue
		}
		if err := models.DB.Model(&models.Store{}).Where("id = ?", vendor.StoreID).
			Update("total_products", count).Error; err != nil {
			logf("failed to update store counters for %s: %v", name, err)
		}
	}
}
