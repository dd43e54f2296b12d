package main

import (
	"context"
	"errors"
	"log"

	"fsvp/internal/cache"
	"fsvp/internal/config"
	"fsvp/internal/db"
	apperrors "fsvp/internal/errors"
	"fsvp/internal/logger"
	"fsvp/internal/model"
	"fsvp/internal/repository"
	"fsvp/internal/service"

	"gorm.io/gorm"
)

type seedUser struct {
	email       string
	name        string
	role        model.Role
	companyName string
	country     string
}

var seedUsers = []seedUser{
	{"vendor@example.com", "Atlantic Seafood Co", model.RoleVendor, "Atlantic Seafood Co", "Norway"},
	{"vendor2@example.com", "Highland Grains Ltd", model.RoleVendor, "Highland Grains Ltd", "Scotland"},
	{"distributor@example.com", "Pacific Imports", model.RoleDistributor, "", ""},
	{"auditor@example.com", "Compliance Audit Group", model.RoleAuditor, "", ""},
	{"admin@example.com", "Platform Admin", model.RoleAdmin, "", ""},
}

const seedPassword = "Password123!"

// Seeds demo users and walks two products through the review workflow so
// every state and a full audit trail exist out of the box. All writes go
// through the services; nothing bypasses the trail.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Vendor{},
		&model.Product{},
		&model.Document{},
		&model.DigitalSignature{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	zapLogger := logger.NewWithDefaults(cfg.ServerEnv)
	defer zapLogger.Sync()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	vendorRepo := repository.NewVendorRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	auditRepo := repository.NewAuditLogRepository(gormDB)

	auditService := service.NewAuditService(auditRepo, userRepo, cacheClient, zapLogger)
	authService := service.NewAuthService(userRepo, vendorRepo, auditService, nil, nil)
	productService := service.NewProductService(productRepo, vendorRepo, auditService, cacheClient, zapLogger)

	ctx := context.Background()
	users := make(map[model.Role]*model.User)

	for _, su := range seedUsers {
		user, err := authService.Register(ctx, service.RegisterInput{
			Email:       su.email,
			Password:    seedPassword,
			Name:        su.name,
			Role:        su.role,
			CompanyName: su.companyName,
			Country:     su.country,
		})
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				log.Printf("User %s already exists, loading", su.email)
				user, err = userRepo.FindByEmail(ctx, su.email)
				if err != nil {
					log.Fatalf("Failed to load existing user %s: %v", su.email, err)
				}
			} else {
				log.Fatalf("Failed to register %s: %v", su.email, err)
			}
		}
		if _, ok := users[su.role]; !ok {
			users[su.role] = user
		}
		log.Printf("User ready: %s (%s)", user.Email, user.Role)
	}

	vendor := users[model.RoleVendor]
	distributor := users[model.RoleDistributor]

	approved, err := seedProduct(ctx, productService, vendor, service.ProductCreateInput{
		SKUNumber:       "SKU-SALMON-001",
		ProductName:     "Smoked Atlantic Salmon",
		Category:        "Seafood",
		Description:     "Cold smoked salmon fillet, vacuum packed",
		Manufacturer:    "Atlantic Seafood Co",
		CountryOfOrigin: "Norway",
		IngredientsList: "Salmon, salt, beechwood smoke",
		AllergenInfo:    "Fish",
	})
	if err != nil {
		log.Fatalf("Failed to seed approved product: %v", err)
	}
	if approved != nil {
		if _, err := productService.Submit(ctx, vendor, approved.ID); err != nil {
			log.Fatalf("Failed to submit product: %v", err)
		}
		if _, err := productService.Review(ctx, distributor, approved.ID, service.ReviewApprove, "documentation complete"); err != nil {
			log.Fatalf("Failed to approve product: %v", err)
		}
		log.Printf("Product %s approved", approved.SKUNumber)
	}

	rejected, err := seedProduct(ctx, productService, vendor, service.ProductCreateInput{
		SKUNumber:       "SKU-HERRING-002",
		ProductName:     "Pickled Herring",
		Category:        "Seafood",
		Description:     "Pickled herring in brine",
		Manufacturer:    "Atlantic Seafood Co",
		CountryOfOrigin: "Norway",
		IngredientsList: "Herring, vinegar, salt, sugar",
		AllergenInfo:    "Fish",
	})
	if err != nil {
		log.Fatalf("Failed to seed rejected product: %v", err)
	}
	if rejected != nil {
		if _, err := productService.Submit(ctx, vendor, rejected.ID); err != nil {
			log.Fatalf("Failed to submit product: %v", err)
		}
		if _, err := productService.Review(ctx, distributor, rejected.ID, service.ReviewReject, "missing hazard analysis for the brining step"); err != nil {
			log.Fatalf("Failed to reject product: %v", err)
		}
		log.Printf("Product %s rejected", rejected.SKUNumber)
	}

	if _, err := seedProduct(ctx, productService, vendor, service.ProductCreateInput{
		SKUNumber:       "SKU-COD-003",
		ProductName:     "Dried Cod",
		Category:        "Seafood",
		Description:     "Air dried cod, whole",
		Manufacturer:    "Atlantic Seafood Co",
		CountryOfOrigin: "Norway",
		IngredientsList: "Cod, salt",
		AllergenInfo:    "Fish",
	}); err != nil {
		log.Fatalf("Failed to seed draft product: %v", err)
	}

	log.Println("Seed completed")
}

// seedProduct creates a product, returning nil without error when the SKU
// already exists from a previous run.
func seedProduct(ctx context.Context, products service.ProductService, vendor *model.User, input service.ProductCreateInput) (*model.Product, error) {
	product, err := products.Create(ctx, vendor, input)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Product %s already exists, skipping", input.SKUNumber)
			return nil, nil
		}
		return nil, err
	}
	log.Printf("Product created: %s (%s)", product.ProductName, product.SKUNumber)
	return product, nil
}
