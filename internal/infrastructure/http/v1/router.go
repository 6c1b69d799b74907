package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintledger/internal/core/entity"
	"maintledger/internal/core/security"
	"maintledger/internal/domain"
	"maintledger/internal/domain/costing"
	"maintledger/internal/domain/ledger"
	"maintledger/internal/domain/worktime"
	"maintledger/internal/infrastructure/http/v1/handlers"
	"maintledger/internal/infrastructure/http/v1/middleware"
	"maintledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	// Validator turns bearer tokens into sessions.
	Validator middleware.TokenValidator

	Ledger   *ledger.Service
	Costing  *costing.Service
	Worktime *worktime.Service

	WorkOrders *domain.Repository[*entity.WorkOrder]
	Projects   *domain.Repository[*entity.Project]
	Assets     *domain.Repository[*entity.Asset]

	// Store is pinged by the readiness probe; nil in memory mode.
	Store handlers.Pinger

	// PendingWrites reports the writer backlog.
	PendingWrites func() int

	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: Recovery must wrap everything, ErrorHandler renders
	// errors registered by any handler below it.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.PendingWrites)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Validator))
	{
		registerMaterialRoutes(api, cfg)
		registerWorkOrderRoutes(api, cfg)
		registerProjectRoutes(api, cfg)
	}

	return router
}

func registerMaterialRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewMaterialHandler(handlers.NewBaseHandler(), cfg.Ledger)

	read := middleware.RequirePermission(security.PermStockRead)
	write := middleware.RequirePermission(security.PermStockWrite)
	consume := middleware.RequirePermission(security.PermStockConsume)

	materials := rg.Group("/materials")
	materials.GET("", read, h.List)
	materials.POST("", write, h.Register)
	materials.GET("/low-stock", read, h.LowStock)
	materials.GET("/:id", read, h.Get)
	materials.POST("/:id/locations", write, h.AddLocation)
	materials.POST("/:id/inbound", write, h.Inbound)
	materials.POST("/:id/outbound", consume, h.Outbound)
	materials.POST("/:id/transfer", write, h.Transfer)
	materials.POST("/:id/consume", consume, h.Consume)
	materials.GET("/:id/kardex", read, h.Kardex)
	materials.GET("/:id/turnover", read, h.Turnover)
	materials.GET("/:id/verify", read, h.Verify)
}

func registerWorkOrderRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	h := handlers.NewWorkOrderHandler(base, cfg.Costing, cfg.Worktime)

	workOrders := rg.Group("/work-orders")
	RegisterRecordRoutes(workOrders, handlers.NewRecordHandler(base, cfg.WorkOrders), security.PermCostRead, security.PermStockWrite)
	workOrders.GET("/:id/cost", middleware.RequirePermission(security.PermCostRead), h.Cost)
	workOrders.GET("/:id/hours", middleware.RequirePermission(security.PermWorktimeRead), h.Hours)

	executors := workOrders.Group("/:id/executors/:executorId")
	executors.Use(middleware.RequirePermission(security.PermWorktimeWrite))
	for _, action := range []worktime.Action{
		worktime.ActionStart, worktime.ActionPause, worktime.ActionResume, worktime.ActionComplete,
	} {
		executors.POST("/"+string(action), h.Transition(action))
	}

	RegisterRecordRoutes(rg.Group("/assets"), handlers.NewRecordHandler(base, cfg.Assets), security.PermStockRead, security.PermStockWrite)
}

func registerProjectRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	h := handlers.NewProjectHandler(base, cfg.Costing)

	projects := rg.Group("/projects")
	RegisterRecordRoutes(projects, handlers.NewRecordHandler(base, cfg.Projects), security.PermCostRead, security.PermStockWrite)
	projects.GET("/:id/cost", middleware.RequirePermission(security.PermCostRead), h.Cost)
	projects.GET("/:id/planned-vs-actual", middleware.RequirePermission(security.PermCostRead), h.PlannedVsActual)
}
