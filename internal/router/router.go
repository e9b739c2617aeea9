package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"

	"github.com/MILO-debug/POS/internal/config"
	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/handler"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/middleware"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
	"github.com/MILO-debug/POS/internal/service"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository/Gateway ← Mongo/Queue
func New(cfg *config.Config, db *infra.Mongo, probe *infra.Probe, gw *gateway.Gateway) *gin.Engine {
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
	// Product and shift reads go through last-known-good caches so carts
	// keep pricing and sales keep attaching to a shift while the store is
	// unreachable.
	productRepo := repository.NewCachedProductRepository(repository.NewProductRepository(db))
	categoryRepo := repository.NewCategoryRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	shiftRepo := repository.NewCachedShiftRepository(repository.NewShiftRepository(db))
	saleRepo := repository.NewSaleRepository(db)
	lendingRepo := repository.NewLendingRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	userRepo := repository.NewUserRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	receipts := infra.NewReceiptPrinter(cfg.StoreName, cfg.PDFStoragePath)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, gw)
	categorySvc := service.NewCategoryService(categoryRepo, gw)
	employeeSvc := service.NewEmployeeService(employeeRepo, gw)
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, gw, probe, db)
	saleSvc := service.NewSaleService(saleRepo, productRepo, shiftRepo, shiftSvc, gw, probe, db, receipts)
	lendingSvc := service.NewLendingService(lendingRepo, productRepo, shiftSvc, gw)
	financeSvc := service.NewFinanceService(saleRepo, expenseRepo, productRepo, gw)
	exportSvc := service.NewExportService(saleRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	employeesH := handler.NewEmployeesHandler(employeeSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	lendingH := handler.NewLendingHandler(lendingSvc)
	financeH := handler.NewFinanceHandler(financeSvc)
	exportH := handler.NewExportHandler(exportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(probe, gw))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleCashier)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — everyone reads, admin writes
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/low-stock", anyRole, productsH.LowStock)
		v1.GET("/products/:id", anyRole, productsH.Get)
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		v1.GET("/categories", anyRole, categoriesH.List)
		categories := v1.Group("/categories", adminOnly)
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
		}

		employees := v1.Group("/employees", adminOnly)
		{
			employees.POST("", employeesH.Create)
			employees.GET("", employeesH.List)
			employees.PUT("/:id", employeesH.Update)
			employees.DELETE("/:id", employeesH.Delete)
		}

		// Shifts
		v1.POST("/shifts", anyRole, shiftsH.Start)
		v1.GET("/shifts", adminOnly, shiftsH.List)
		v1.GET("/shifts/current", anyRole, shiftsH.Current)
		v1.GET("/shifts/mine", anyRole, shiftsH.Mine)
		v1.GET("/shifts/:id", anyRole, shiftsH.Get)
		v1.POST("/shifts/:id/end", anyRole, shiftsH.End)

		// Sales
		v1.POST("/sales", anyRole, salesH.Checkout)
		v1.POST("/sales/quote", anyRole, salesH.Quote)
		v1.GET("/sales", anyRole, salesH.List)
		v1.GET("/sales/summary", anyRole, salesH.Summary)
		v1.GET("/sales/:id", anyRole, salesH.Get)
		v1.DELETE("/sales/:id", adminOnly, salesH.Refund)
		v1.DELETE("/sales", adminOnly, salesH.ClearAll)

		// Lending
		v1.POST("/lendings", anyRole, lendingH.Create)
		v1.GET("/lendings/borrowers", anyRole, lendingH.Borrowers)
		v1.GET("/lendings/borrowers/:name", anyRole, lendingH.Borrower)
		v1.POST("/lendings/borrowers/:name/payments", anyRole, lendingH.Pay)

		// Finance — admin only
		finance := v1.Group("/finance", adminOnly)
		{
			finance.GET("/report", financeH.Report)
			finance.POST("/expenses", financeH.AddExpense)
			finance.GET("/expenses", financeH.ListExpenses)
			finance.DELETE("/expenses/:id", financeH.DeleteExpense)
			finance.DELETE("/expenses", financeH.ResetExpenses)
		}

		// Exports — admin only
		export := v1.Group("/export", adminOnly)
		{
			export.GET("/sales", exportH.Sales)
			export.GET("/history", exportH.History)
		}

		// Offline queue status and manual drain
		v1.GET("/offline/status", anyRole, handler.OfflineStatus(probe, gw))
		v1.POST("/offline/drain", adminOnly, handler.DrainNow(gw))
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
