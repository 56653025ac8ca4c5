package router

import (
	"time"

	"contalink/internal/config"
	"contalink/internal/handler"
	"contalink/internal/infra"
	"contalink/internal/metrics"
	"contalink/internal/middleware"
	"contalink/internal/repository"
	"contalink/internal/service"
	"contalink/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Prometheus())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	tx := repository.NewTransactor(db)
	productoRepo := repository.NewProductoRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	devolucionRepo := repository.NewDevolucionRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher: receives stock alerts after commit
	dispatcher := worker.NewDispatcher(rdb).
		WithBreaker(infra.NewCircuitBreaker("alertas_stock", infra.DefaultCBConfig()))
	alertaStore := worker.NewAlertaStore(rdb)

	cajaLedger := service.NewCajaLedger(cajaRepo)
	deps := service.LedgerDeps{
		Tx:           tx,
		Productos:    productoRepo,
		Personas:     personaRepo,
		Cajas:        cajaRepo,
		Devoluciones: devolucionRepo,
		Stock:        service.NewStockLedger(productoRepo, movimientoStockRepo),
		Caja:         cajaLedger,
		Alertas:      dispatcher,
	}
	ventaSvc := service.NewVentaService(ventaRepo, deps)
	compraSvc := service.NewCompraService(compraRepo, deps)
	devolucionSvc := service.NewDevolucionService(ventaRepo, deps)
	cajaSvc := service.NewCajaService(tx, cajaRepo, cajaLedger)
	inventarioSvc := service.NewInventarioService(movimientoStockRepo, alertaStore)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewTransaccionesHandler(ventaSvc)
	comprasH := handler.NewTransaccionesHandler(compraSvc)
	devolucionesH := handler.NewDevolucionesHandler(devolucionSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.Crear)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/:id", ventasH.Obtener)
			ventas.DELETE("/:id", ventasH.Eliminar)
		}

		compras := v1.Group("/compras")
		{
			compras.POST("", comprasH.Crear)
			compras.GET("", comprasH.Listar)
			compras.GET("/:id", comprasH.Obtener)
			compras.DELETE("/:id", comprasH.Eliminar)
		}

		v1.POST("/devoluciones", devolucionesH.Crear)
		v1.DELETE("/devoluciones/:id", devolucionesH.Eliminar)

		cajas := v1.Group("/cajas")
		{
			cajas.GET("/:id/saldo", cajaH.Saldo)
			cajas.GET("/:id/movimientos", cajaH.Movimientos)
			cajas.POST("/movimiento", cajaH.RegistrarMovimiento)
		}

		inv := v1.Group("/inventario")
		{
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
