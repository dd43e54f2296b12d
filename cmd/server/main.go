package main

import (
	"log"
	"net/http"
	"os"

	_ "fsvp/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fsvp/internal/auth"
	"fsvp/internal/cache"
	"fsvp/internal/config"
	"fsvp/internal/db"
	"fsvp/internal/handler"
	"fsvp/internal/logger"
	"fsvp/internal/model"
	"fsvp/internal/repository"
	"fsvp/internal/router"
	"fsvp/internal/service"
	"fsvp/internal/storage"
)

// @title FSVP Compliance API
// @version 1.0
// @description Supplier verification workflow: product SKU lifecycle, document management, digital signatures and an append-only audit trail.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	zapLogger := logger.NewWithDefaults(cfg.ServerEnv)
	defer zapLogger.Sync()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		zapLogger.Warn("RESET_DB=true detected, dropping all tables")
		tables := []interface{}{
			&model.AuditLog{},
			&model.DigitalSignature{},
			&model.Document{},
			&model.Product{},
			&model.Vendor{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				zapLogger.Warn("failed to drop table", zap.Error(err))
			}
		}
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Vendor{},
		&model.Product{},
		&model.Document{},
		&model.DigitalSignature{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	objectStore := storage.NewLocalStore(cfg.UploadDir)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	vendorRepo := repository.NewVendorRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	documentRepo := repository.NewDocumentRepository(gormDB)
	signatureRepo := repository.NewSignatureRepository(gormDB)
	auditRepo := repository.NewAuditLogRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	auditService := service.NewAuditService(auditRepo, userRepo, cacheClient, zapLogger)
	authService := service.NewAuthService(userRepo, vendorRepo, auditService, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	vendorService := service.NewVendorService(vendorRepo, userRepo, auditService, zapLogger)
	productService := service.NewProductService(productRepo, vendorRepo, auditService, cacheClient, zapLogger)
	documentService := service.NewDocumentService(documentRepo, signatureRepo, productRepo, vendorRepo, auditService, objectStore, zapLogger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	productHandler := handler.NewProductHandler(productService)
	documentHandler := handler.NewDocumentHandler(documentService)
	auditHandler := handler.NewAuditHandler(auditService)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		userService,
		authHandler,
		vendorHandler,
		productHandler,
		documentHandler,
		auditHandler,
	)

	zapLogger.Info("server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("env", cfg.ServerEnv))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
