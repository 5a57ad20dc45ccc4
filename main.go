package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"rental-api/config"
	"rental-api/consumers"
	"rental-api/controllers"
	"rental-api/domain"
	"rental-api/middleware"
	"rental-api/publishers"
	"rental-api/repositories"
	"rental-api/services"
)

func main() {
	// sin .env no es un error: en contenedores todo viene por entorno
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("mongo_db", cfg.MongoDB),
		zap.Bool("search_legacy_dispatch", cfg.SearchLegacyDispatch))

	// MySQL para usuarios, como en el resto de los servicios de la
	// plataforma; Mongo para propiedades y transacciones por el índice
	// geoespacial.
	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to MySQL", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		logger.Fatal("failed to migrate users table", zap.Error(err))
	}
	logger.Info("connected to MySQL")

	mongoClient, err := repositories.NewMongoClient(cfg.MongoURI)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	mongoDB := mongoClient.Database(cfg.MongoDB)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repositories.EnsureIndexes(indexCtx, mongoDB); err != nil {
		cancelIndex()
		logger.Fatal("failed to create MongoDB indexes", zap.Error(err))
	}
	cancelIndex()
	logger.Info("connected to MongoDB")

	// Repositorios
	userRepo := repositories.NewUserRepository(db)
	propertyRepo := repositories.NewPropertyRepository(mongoDB)
	transactionRepo := repositories.NewTransactionRepository(mongoDB)
	cacheRepo := repositories.NewCacheRepository(cfg.MemcachedHost, logger)

	// Publisher de eventos. Si el broker no está, el servicio arranca
	// igual: la invalidación local sigue funcionando.
	var publisher services.PropertyEventPublisher
	rabbitPublisher, err := publishers.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		logger.Warn("RabbitMQ publisher unavailable, running without property events", zap.Error(err))
	} else {
		publisher = rabbitPublisher
	}

	// Servicios
	propertyService := services.NewPropertyService(propertyRepo, cacheRepo, publisher, cfg.SearchCacheTTL, cfg.SearchLegacyDispatch, logger)
	transactionService := services.NewTransactionService(transactionRepo, propertyService, logger)
	userService := services.NewUserService(userRepo, logger)

	// Controllers
	propertyController := controllers.NewPropertyController(propertyService, logger)
	transactionController := controllers.NewTransactionController(transactionService, logger)
	userController := controllers.NewUserController(userService, logger)

	// Consumer de invalidación de caché entre instancias
	var consumer *consumers.RabbitMQConsumer
	if rabbitPublisher != nil {
		consumer, err = consumers.NewRabbitMQConsumer(cfg.RabbitMQURL, cfg.RabbitMQExchange, propertyService, logger)
		if err != nil {
			logger.Warn("RabbitMQ consumer unavailable", zap.Error(err))
		} else if err := consumer.Start(); err != nil {
			logger.Warn("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	router.GET("/health", userController.HealthCheck)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", userController.Register)
		auth.POST("/login", userController.Login)
		auth.GET("/me", middleware.AuthMiddleware(), userController.Me)

		properties := api.Group("/properties")
		properties.GET("", propertyController.Search)
		properties.GET("/owner", middleware.AuthMiddleware(), propertyController.ListOwn)
		properties.GET("/:id", propertyController.GetByID)
		properties.POST("", middleware.AuthMiddleware(), propertyController.Create)
		properties.PUT("/:id", middleware.AuthMiddleware(), propertyController.Update)
		properties.DELETE("/:id", middleware.AuthMiddleware(), propertyController.Delete)

		transactions := api.Group("/transactions")
		transactions.Use(middleware.AuthMiddleware())
		transactions.POST("", transactionController.Create)
		transactions.GET("", transactionController.ListForTenant)
		transactions.GET("/owner", transactionController.ListForOwner)
		transactions.PUT("/:id/approve", transactionController.Approve)
		transactions.PUT("/:id/reject", transactionController.Reject)
		transactions.PUT("/:id/cancel", transactionController.Cancel)
		transactions.PUT("/:id/complete", transactionController.Complete)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		admin.PUT("/properties/:id/status", propertyController.SetStatus)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("rental API listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("error closing RabbitMQ consumer", zap.Error(err))
		}
	}
	if rabbitPublisher != nil {
		if err := rabbitPublisher.Close(); err != nil {
			logger.Error("error closing RabbitMQ publisher", zap.Error(err))
		}
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Error("error disconnecting MongoDB", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
