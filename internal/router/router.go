package router

import (
	"fmt"
	"strings"

	"github.com/averoza/marketplace/internal/cache"
	"github.com/averoza/marketplace/internal/config"
	adminhandlers "github.com/averoza/marketplace/internal/http/handlers/admin"
	publichandlers "github.com/averoza/marketplace/internal/http/handlers/public"
	vendorhandlers "github.com/averoza/marketplace/internal/http/handlers/vendor"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP route tree
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	vendorHandler := vendorhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "avz"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// Browsing surface, no auth required
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/search", publicHandler.SearchProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProduct)
		apiV1.GET("/categories", publicHandler.ListCategories)
		apiV1.GET("/categories/:slug", publicHandler.GetCategory)
		apiV1.GET("/stores", publicHandler.ListStores)
		apiV1.GET("/stores/:slug", publicHandler.GetStore)

		authed := apiV1.Group("")
		authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			authed.GET("/profile", publicHandler.GetProfile)
			authed.PUT("/profile", publicHandler.UpdateProfile)
			authed.PUT("/profile/password", publicHandler.ChangePassword)

			authed.GET("/cart", publicHandler.GetCart)
			authed.GET("/cart/count", publicHandler.CartCount)
			authed.POST("/cart/items", publicHandler.AddCartItem)
			authed.PUT("/cart/items/:product_id", publicHandler.UpdateCartItem)
			authed.DELETE("/cart/items/:product_id", publicHandler.RemoveCartItem)
			authed.DELETE("/cart", publicHandler.ClearCart)
			authed.POST("/cart/validate", publicHandler.ValidateCart)

			authed.GET("/checkout/summary", publicHandler.CheckoutSummary)
			authed.POST("/checkout", publicHandler.Checkout)

			authed.GET("/orders", publicHandler.ListOrders)
			authed.GET("/orders/:id", publicHandler.GetOrder)
			authed.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			vendor := authed.Group("/vendor")
			{
				vendor.GET("/products", vendorHandler.ListProducts)
				vendor.POST("/products", vendorHandler.CreateProduct)
				vendor.GET("/products/:id", vendorHandler.GetProduct)
				vendor.PUT("/products/:id", vendorHandler.UpdateProduct)
				vendor.DELETE("/products/:id", vendorHandler.DeleteProduct)
				vendor.PATCH("/products/:id/visibility", vendorHandler.SetProductVisibility)

				vendor.GET("/orders", vendorHandler.ListOrders)
				vendor.GET("/orders/:id", vendorHandler.GetOrder)
				vendor.PATCH("/orders/:id/status", vendorHandler.UpdateOrderStatus)

				vendor.GET("/stats", vendorHandler.GetStats)

				vendor.GET("/store", vendorHandler.GetStore)
				vendor.PUT("/store", vendorHandler.UpdateStore)
				vendor.POST("/store/recompute-stats", vendorHandler.RecomputeStoreStats)
			}

			admin := authed.Group("/admin")
			{
				admin.GET("/categories", adminHandler.ListCategories)
				admin.POST("/categories", adminHandler.CreateCategory)
				admin.PUT("/categories/:id", adminHandler.UpdateCategory)
				admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

				admin.GET("/orders", adminHandler.ListOrders)
				admin.GET("/orders/:id", adminHandler.GetOrder)
				admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
				admin.POST("/orders/:id/cancel", adminHandler.CancelOrder)

				admin.GET("/stores", adminHandler.ListStores)
				admin.POST("/stores/:id/recompute-stats", adminHandler.RecomputeStoreStats)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
