package router

import (
	"time"

	"jewelpos/internal/config"
	"jewelpos/internal/handler"
	"jewelpos/internal/infra"
	"jewelpos/internal/middleware"
	"jewelpos/internal/repository"
	"jewelpos/internal/service"
	"jewelpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: sales still complete, but no bill documents are queued.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gold service.GoldPriceService, goldCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	uow := repository.NewUnitOfWork(db)
	ornamentRepo := repository.NewOrnamentRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	clientRepo := repository.NewClientRepository(db)
	billRepo := repository.NewBillRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var jobs service.BillJobQueue
	if rdb != nil {
		jobs = worker.NewDispatcher(rdb)
	}

	ornamentSvc := service.NewOrnamentService(uow, ornamentRepo, merchantRepo, cfg.StorageTimeout)
	saleSvc := service.NewSaleService(uow, billRepo, jobs, cfg.StorageTimeout, cfg.StoreName)
	merchantSvc := service.NewMerchantService(merchantRepo, cfg.StorageTimeout)
	clientSvc := service.NewClientService(clientRepo, cfg.StorageTimeout)
	dashboardSvc := service.NewDashboardService(dashboardRepo, billRepo, cfg.StorageTimeout)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ornamentsH := handler.NewOrnamentsHandler(ornamentSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	merchantsH := handler.NewMerchantsHandler(merchantSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc, gold)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, goldCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		orn := v1.Group("/ornaments")
		{
			orn.POST("", ornamentsH.Add)
			orn.GET("", ornamentsH.ListStock)
			orn.GET("/available", ornamentsH.ListAvailable)
			orn.GET("/:ornamentId/qr", ornamentsH.QRCode)
		}
		v1.POST("/scan", ornamentsH.Scan)

		v1.POST("/sales", salesH.Complete)
		v1.GET("/sales", salesH.List)
		v1.GET("/bills/:billId", salesH.GetBill)
		v1.GET("/bills/:billId/pdf", salesH.BillPDF)

		merchants := v1.Group("/merchants")
		{
			merchants.POST("", merchantsH.Create)
			merchants.GET("", merchantsH.List)
			merchants.GET("/:code", merchantsH.Get)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
		}

		v1.GET("/dashboard/summary", dashboardH.Summary)
		v1.GET("/gold-price", dashboardH.GoldPrice)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
