package provider

import (
	"github.com/averoza/marketplace/internal/authz"
	"github.com/averoza/marketplace/internal/cache"
	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/queue"
	"github.com/averoza/marketplace/internal/repository"
	"github.com/averoza/marketplace/internal/service"
)

// Container wires repositories and services once at startup
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo     repository.UserRepository
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	OrderRepo    repository.OrderRepository
	StoreRepo    repository.StoreRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	CategoryService *service.CategoryService
	ProductService  *service.ProductService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
	StoreService    *service.StoreService
}

// NewContainer initializes cache, queue, repositories and services
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.StoreRepo = repository.NewStoreRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	pricing := service.LoadCheckoutPricing(&c.Config.Order)

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.StoreRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.StoreRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CheckoutService = service.NewCheckoutService(models.DB, c.CartRepo, c.ProductRepo, c.OrderRepo, c.QueueClient, pricing)
	c.OrderService = service.NewOrderService(models.DB, c.OrderRepo, c.ProductRepo, c.QueueClient)
	c.StoreService = service.NewStoreService(c.StoreRepo)
}
