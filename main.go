package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"medstock/server/internal/api"
	"medstock/server/internal/config"
	"medstock/server/internal/database"
	"medstock/server/internal/models"
	"medstock/server/internal/services"
	"medstock/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	// Загрузка конфигурации
	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	} else {
		log.Printf("⚠️ DATABASE_URL не установлен, используется значение по умолчанию")
	}

	// Подключение к PostgreSQL
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}
	defer database.ClosePostgres(db)

	// Выполняем миграции
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Подключение к Redis (с поддержкой Sentinel)
	redisClient, err := database.ConnectRedis(
		cfg.RedisURL,
		cfg.RedisSentinelAddrs,
		cfg.RedisMasterName,
	)
	var redisUtil *utils.RedisClient
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// WebSocket хаб для оповещений дашбордов
	hub := api.NewHub()
	go hub.Run()

	// Kafka publisher событий аудита (nil, если брокеры не заданы)
	activityPublisher := services.NewActivityPublisher(
		cfg.KafkaBrokers,
		cfg.KafkaActivityTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		cfg.KafkaCACert,
	)
	if activityPublisher == nil {
		log.Println("⚠️ KAFKA_BROKERS не установлен, события аудита публикуются только в БД")
	}
	defer activityPublisher.Close()

	// Инициализация сервисов
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTLHours)
	log.Println("✅ Auth service initialized")

	activityService := services.NewActivityService(db)
	if activityPublisher != nil {
		activityService.SetPublisher(activityPublisher)
		log.Println("✅ Activity service linked with Kafka publisher")
	}

	inventoryService := services.NewInventoryService(db)
	inventoryService.SetNotifier(hub)
	if redisUtil != nil {
		inventoryService.SetRedis(redisUtil)
		log.Println("✅ Inventory service linked with Redis cache")
	}
	log.Println("✅ Inventory service initialized")

	materialService := services.NewMaterialService(db)
	materialService.SetNotifier(hub)
	if redisUtil != nil {
		materialService.SetRedis(redisUtil)
	}
	log.Println("✅ Material service initialized")

	requestService := services.NewRequestService(db, inventoryService)
	log.Println("✅ Request service initialized")

	vendorService := services.NewVendorService(db)
	departmentService := services.NewDepartmentService(db)

	// Периодическая проверка сроков годности
	sweepInterval := time.Duration(cfg.ExpirySweepMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			materialService.ExpirySweep()
		}
	}()
	log.Printf("⏰ Автоматическая проверка сроков годности запущена (каждые %d минут)", cfg.ExpirySweepMinutes)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Health check endpoint (должен быть до CORS для Railway)
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "MedStock Server",
			"version": "1.0.0",
		})
	})

	// Логирование всех запросов
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latency: %v", method, path, status, latency)
	})

	// CORS для фронтенда
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Контроллеры
	authController := api.NewAuthController(authService, activityService)
	materialController := api.NewMaterialController(materialService, activityService, cfg.ExpiringSoonDays)
	movementController := api.NewMovementController(inventoryService, activityService)
	requestController := api.NewRequestController(requestService, inventoryService, activityService)
	vendorController := api.NewVendorController(vendorService, activityService)
	departmentController := api.NewDepartmentController(departmentService, activityService)
	activityController := api.NewActivityController(activityService)
	wsController := api.NewWSController(hub)

	// API routes
	apiGroup := r.Group("/api/v1")

	// Авторизация
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/signin", authController.SignIn)
		authGroup.POST("/create-user",
			api.AuthMiddleware(authService),
			api.RequireRoles(models.RoleAdmin),
			authController.CreateUser)
	}

	// Все остальные маршруты требуют аутентификации
	authorized := apiGroup.Group("")
	authorized.Use(api.AuthMiddleware(authService))

	// Материалы
	materialsGroup := authorized.Group("/materials")
	{
		materialsGroup.GET("", materialController.List)
		materialsGroup.GET("/expiring",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			materialController.Expiring)
		materialsGroup.GET("/:id", materialController.Get)
		materialsGroup.POST("",
			api.RequireRoles(models.RoleStoreManager),
			materialController.Create)
		materialsGroup.PUT("/:id",
			api.RequireRoles(models.RoleStoreManager),
			materialController.Update)
		materialsGroup.DELETE("/:id",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			materialController.Delete)
		materialsGroup.POST("/:id/batches",
			api.RequireRoles(models.RoleStoreManager),
			materialController.AddBatch)
		materialsGroup.PUT("/:id/batches/:batchNumber",
			api.RequireRoles(models.RoleStoreManager),
			materialController.UpdateBatch)
	}

	// Складские движения
	movementsGroup := authorized.Group("/movements")
	{
		movementsGroup.POST("/issue",
			api.RequireRoles(models.RoleStoreManager),
			movementController.Issue)
		movementsGroup.POST("/return",
			api.RequireRoles(models.RoleStoreManager),
			movementController.Return)
		movementsGroup.POST("/dispose",
			api.RequireRoles(models.RoleStoreManager),
			movementController.Dispose)
		movementsGroup.GET("",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			movementController.List)
		movementsGroup.GET("/stats", movementController.Stats)
		movementsGroup.GET("/expired",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			movementController.Expired)
	}

	// Заявки на материалы
	requestsGroup := authorized.Group("/requests")
	{
		requestsGroup.POST("",
			api.RequireRoles(models.RoleDoctor, models.RoleStaff),
			requestController.Submit)
		requestsGroup.GET("",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			requestController.List)
		requestsGroup.GET("/my",
			api.RequireRoles(models.RoleDoctor, models.RoleStaff),
			requestController.My)
		requestsGroup.GET("/track-issued",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			requestController.TrackIssued)
		requestsGroup.PUT("/:id",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			requestController.Decide)
	}

	// Поставщики
	vendorsGroup := authorized.Group("/vendors")
	{
		vendorsGroup.GET("", vendorController.List)
		vendorsGroup.GET("/:id", vendorController.Get)
		vendorsGroup.POST("",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			vendorController.Create)
		vendorsGroup.PUT("/:id",
			api.RequireRoles(models.RoleAdmin, models.RoleStoreManager),
			vendorController.Update)
		vendorsGroup.DELETE("/:id",
			api.RequireRoles(models.RoleAdmin),
			vendorController.Delete)
	}

	// Отделения
	departmentsGroup := authorized.Group("/departments")
	{
		departmentsGroup.GET("", departmentController.List)
		departmentsGroup.GET("/:id", departmentController.Get)
		departmentsGroup.POST("",
			api.RequireRoles(models.RoleAdmin),
			departmentController.Create)
		departmentsGroup.PUT("/:id",
			api.RequireRoles(models.RoleAdmin),
			departmentController.Update)
		departmentsGroup.DELETE("/:id",
			api.RequireRoles(models.RoleAdmin),
			departmentController.Delete)
	}

	// Журнал активности
	activityGroup := authorized.Group("/activity")
	activityGroup.Use(api.RequireRoles(models.RoleAdmin))
	{
		activityGroup.GET("", activityController.List)
		activityGroup.GET("/user/:id", activityController.ByUser)
	}

	// WebSocket оповещения дашбордов
	apiGroup.GET("/ws", wsController.ServeWS)

	port := cfg.ServerPort
	log.Printf("🚀 MedStock server запущен на порту %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("❌ Ошибка запуска сервера: %v", err)
	}
}
