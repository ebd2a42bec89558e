package provider

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/promo-engine/internal/authz"
	"github.com/dujiao-next/promo-engine/internal/cache"
	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/models"
	"github.com/dujiao-next/promo-engine/internal/queue"
	"github.com/dujiao-next/promo-engine/internal/repository"
	"github.com/dujiao-next/promo-engine/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	CategoryRepo   repository.CategoryRepository
	ProductRepo    repository.ProductRepository
	ProductSKURepo repository.ProductSKURepository
	CartRepo       repository.CartRepository
	PromotionRepo  repository.PromotionRepository
	AuditLogRepo   repository.AdminAuditLogRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	CaptchaService        *service.CaptchaService
	CategoryService       *service.CategoryService
	ProductService        *service.ProductService
	PromotionService      *service.PromotionService
	PromotionAdminService *service.PromotionAdminService
	CartService           *service.CartService
	AdminAuditService     *service.AdminAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	// Redis 不通不阻止启动，快照退化为仅本地缓存
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		logger.Warnw("provider_redis_unreachable", "error", err)
	}
	cancel()

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ProductSKURepo = repository.NewProductSKURepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.AuditLogRepo = repository.NewAdminAuditLogRepository(db)
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

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.PromotionService = service.NewPromotionService(c.Config.Promotion, c.PromotionRepo, c.CategoryRepo, c.ProductRepo, c.ProductSKURepo)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.ProductSKURepo, c.PromotionService, c.QueueClient)
	c.ProductService = service.NewProductService(c.ProductRepo, c.PromotionService)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.ProductSKURepo, c.PromotionService)
	c.AdminAuditService = service.NewAdminAuditService(c.AuditLogRepo)
}

// Close 释放队列客户端与 Redis 连接
func (c *Container) Close() error {
	var errs []error
	if c != nil && c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
