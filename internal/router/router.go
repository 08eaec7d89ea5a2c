package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yuseponub/varixcenter-sub001/internal/config"
	"github.com/yuseponub/varixcenter-sub001/internal/handler"
	"github.com/yuseponub/varixcenter-sub001/internal/middleware"
	"github.com/yuseponub/varixcenter-sub001/internal/model"
	"github.com/yuseponub/varixcenter-sub001/internal/repository"
	"github.com/yuseponub/varixcenter-sub001/internal/service"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	secuenciaRepo := repository.NewSecuenciaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	devolucionRepo := repository.NewDevolucionRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	ajusteRepo := repository.NewAjusteRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	ledgerSvc := service.NewLedgerService(productoRepo, movimientoRepo)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, secuenciaRepo, cierreRepo, ledgerSvc)
	devolucionSvc := service.NewDevolucionService(devolucionRepo, ventaRepo, secuenciaRepo, ledgerSvc)
	compraSvc := service.NewCompraService(compraRepo, productoRepo, secuenciaRepo, ledgerSvc)
	cierreSvc := service.NewCierreService(cierreRepo, ventaRepo, secuenciaRepo)
	ajusteSvc := service.NewAjusteService(ajusteRepo, ledgerSvc)
	dashboardSvc := service.NewDashboardService(ventaRepo, devolucionRepo, productoRepo, rdb, time.Duration(cfg.DashboardCacheTTL)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	historialPreciosH := handler.NewHistorialPreciosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	devolucionesH := handler.NewDevolucionesHandler(devolucionSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	cierresH := handler.NewCierresHandler(cierreSvc)
	inventarioH := handler.NewInventarioHandler(ajusteSvc, ledgerSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := []string{model.RolAdmin, model.RolSecretaria, model.RolMedico}
	v1 := r.Group("/v1", jwtMW)
	{
		// Ventas
		v1.POST("/ventas", middleware.RequireRole(todos...), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireRole(todos...), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireRole(todos...), ventasH.ObtenerVenta)
		v1.DELETE("/ventas/:id", middleware.RequireRole(model.RolAdmin), ventasH.AnularVenta)

		// Devoluciones
		v1.POST("/devoluciones", middleware.RequireRole(todos...), devolucionesH.CrearDevolucion)
		v1.GET("/devoluciones", middleware.RequireRole(todos...), devolucionesH.ListarDevoluciones)
		v1.POST("/devoluciones/:id/aprobar", middleware.RequireRole(model.RolAdmin, model.RolMedico), devolucionesH.AprobarDevolucion)
		v1.POST("/devoluciones/:id/rechazar", middleware.RequireRole(model.RolAdmin, model.RolMedico), devolucionesH.RechazarDevolucion)

		// Compras
		compras := v1.Group("/compras", middleware.RequireRole(model.RolAdmin, model.RolSecretaria))
		{
			compras.POST("", comprasH.CrearCompra)
			compras.GET("", comprasH.ListarCompras)
			compras.GET("/:id", comprasH.ObtenerCompra)
			compras.POST("/:id/recibir", comprasH.RecibirCompra)
		}
		v1.DELETE("/compras/:id", middleware.RequireRole(model.RolAdmin), comprasH.AnularCompra)

		// Cierres de caja
		v1.POST("/cierres", middleware.RequireRole(model.RolAdmin, model.RolSecretaria), cierresH.CerrarDia)
		v1.GET("/cierres", middleware.RequireRole(model.RolAdmin, model.RolSecretaria), cierresH.ListarCierres)
		v1.GET("/cierres/:id", middleware.RequireRole(model.RolAdmin, model.RolSecretaria), cierresH.ObtenerCierre)
		v1.POST("/cierres/:id/reabrir", middleware.RequireRole(model.RolAdmin), cierresH.ReabrirCierre)

		// Productos — lectura para todos, escritura solo admin
		v1.GET("/productos", middleware.RequireRole(todos...), productosH.ListarProductos)
		v1.GET("/productos/stock-bajo", middleware.RequireRole(todos...), productosH.StockBajo)
		v1.GET("/productos/:id", middleware.RequireRole(todos...), productosH.ObtenerProducto)
		v1.GET("/productos/:id/historial-precios", middleware.RequireRole(todos...), historialPreciosH.Listar)
		prods := v1.Group("/productos", middleware.RequireRole(model.RolAdmin))
		{
			prods.POST("", productosH.CrearProducto)
			prods.PATCH("/:id/precio", productosH.ActualizarPrecio)
			prods.DELETE("/:id", productosH.DesactivarProducto)
			prods.POST("/:id/reactivar", productosH.ReactivarProducto)
		}

		// Inventario
		v1.GET("/inventario/movimientos", middleware.RequireRole(todos...), inventarioH.ListarMovimientos)
		inv := v1.Group("/inventario", middleware.RequireRole(model.RolAdmin))
		{
			inv.POST("/ajustes", inventarioH.CrearAjuste)
			inv.POST("/transferencias", inventarioH.Transferir)
			inv.GET("/ajustes/producto/:id", inventarioH.ListarAjustesProducto)
		}

		// Dashboard
		v1.GET("/dashboard", middleware.RequireRole(todos...), dashboardH.Resumen)

		// Usuarios — solo admin
		usuarios := v1.Group("/usuarios", middleware.RequireRole(model.RolAdmin))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
