package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"stockpilot/internal/caching"
	"stockpilot/internal/config"
	"stockpilot/internal/handlers"
	"stockpilot/internal/jobs"
	"stockpilot/internal/jobs/background"
	"stockpilot/internal/repositories"
	"stockpilot/internal/services"
	"stockpilot/pkg/database"
)

const version = "1.0.0"

func main() {
	// File config first, environment variables override
	configPath := os.Getenv("STOCKPILOT_CONFIG")
	if configPath == "" {
		configPath = "stockpilot.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = cfg.Database.URL
	}
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = cfg.Redis.Addr
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	if redisPassword == "" {
		redisPassword = cfg.Redis.Password
	}
	redisDB := cfg.Redis.DB
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Create repositories
	productRepo := repositories.NewProductRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	warehouseRepo := repositories.NewWarehouseRepo(pool)
	unitRepo := repositories.NewUnitRepo(pool)
	movementRepo := repositories.NewMovementRepo(pool, time.Duration(cfg.Inventory.LockTimeoutMS)*time.Millisecond)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	catalogSvc := services.NewCatalogService(productRepo, categoryRepo, warehouseRepo, unitRepo, movementRepo, cacheSvc)
	balanceSvc := services.NewBalanceService(movementRepo, productRepo, cacheSvc, cfg.Inventory.DefaultReorderThreshold)
	inventorySvc := services.NewInventoryService(productRepo, warehouseRepo, unitRepo, movementRepo, balanceSvc, cacheSvc)

	// Create handlers
	productHandlers := handlers.NewProductHandlers(catalogSvc, inventorySvc)
	categoryHandlers := handlers.NewCategoryHandlers(catalogSvc)
	warehouseHandlers := handlers.NewWarehouseHandlers(catalogSvc, balanceSvc)
	unitHandlers := handlers.NewUnitHandlers(catalogSvc)
	stockHandlers := handlers.NewStockHandlers(inventorySvc, balanceSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	alertSvc := jobs.NewLowStockAlertService(balanceSvc)
	scheduler := background.NewJobScheduler(alertSvc, cacheSvc, time.Duration(cfg.Alerts.CheckIntervalMinutes)*time.Minute)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Product routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.POST("/products", productHandlers.CreateProduct)
	v1.POST("/products/provision", productHandlers.ProvisionProduct)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.PUT("/products/:id", productHandlers.UpdateProduct)
	v1.DELETE("/products/:id", productHandlers.DeleteProduct)
	v1.GET("/products/:id/detail", productHandlers.GetProductDetail)
	v1.GET("/products/:id/movements", productHandlers.GetProductMovements)
	v1.GET("/products/:id/balance", stockHandlers.GetBalance)

	// Category routes
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.POST("/categories", categoryHandlers.CreateCategory)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)
	v1.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	v1.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	// Warehouse routes
	v1.GET("/warehouses", warehouseHandlers.ListWarehouses)
	v1.POST("/warehouses", warehouseHandlers.CreateWarehouse)
	v1.GET("/warehouses/:id", warehouseHandlers.GetWarehouse)
	v1.PUT("/warehouses/:id", warehouseHandlers.UpdateWarehouse)
	v1.DELETE("/warehouses/:id", warehouseHandlers.DeleteWarehouse)
	v1.GET("/warehouses/:id/summary", warehouseHandlers.GetWarehouseSummary)

	// Unit of measure routes
	v1.GET("/units", unitHandlers.ListUnits)
	v1.POST("/units", unitHandlers.CreateUnit)
	v1.GET("/units/:id", unitHandlers.GetUnit)
	v1.PUT("/units/:id", unitHandlers.UpdateUnit)
	v1.DELETE("/units/:id", unitHandlers.DeleteUnit)

	// Stock ledger routes
	v1.POST("/stock/in", stockHandlers.StockIn)
	v1.POST("/stock/out", stockHandlers.StockOut)
	v1.GET("/stock/availability", stockHandlers.CheckAvailability)
	v1.GET("/stock/low", stockHandlers.GetLowStock)
	v1.GET("/stock/out-of-stock", stockHandlers.GetOutOfStock)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	log.Printf("Starting stockpilot %s on port %s", version, port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
