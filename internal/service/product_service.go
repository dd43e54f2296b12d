package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fsvp/internal/authz"
	"fsvp/internal/cache"
	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

const (
	productCacheKeyPrefix = "product:"
	productCacheTTL       = 2 * time.Minute
)

// ReviewAction is the verdict a reviewer passes on a pending product.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ProductCreateInput carries the fields accepted when registering a SKU.
type ProductCreateInput struct {
	SKUNumber       string
	ProductName     string
	Category        string
	Description     string
	Manufacturer    string
	CountryOfOrigin string
	IngredientsList string
	AllergenInfo    string
}

// ProductUpdateInput is a partial patch; nil fields are left untouched.
// Status and review fields are deliberately absent: they move only through
// Submit and Review.
type ProductUpdateInput struct {
	SKUNumber       *string
	ProductName     *string
	Category        *string
	Description     *string
	Manufacturer    *string
	CountryOfOrigin *string
	IngredientsList *string
	AllergenInfo    *string
}

// ProductService is the compliance lifecycle engine. Every mutation writes
// its audit entry in the same transaction; transitions are guarded by
// conditional updates so concurrent writers serialize on current state.
type ProductService interface {
	Create(ctx context.Context, actor *model.User, input ProductCreateInput) (*model.Product, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, input ProductUpdateInput) (*model.Product, error)
	Submit(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Product, error)
	Review(ctx context.Context, actor *model.User, id uuid.UUID, action ReviewAction, notes string) (*model.Product, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Product, error)
	ListMine(ctx context.Context, actor *model.User) ([]model.Product, error)
	List(ctx context.Context, actor *model.User, status model.ProductStatus) ([]model.Product, error)
	ListPending(ctx context.Context, actor *model.User) ([]model.Product, error)
	ReviewHistory(ctx context.Context, actor *model.User, id uuid.UUID) ([]AuditEntry, error)
}

type productService struct {
	productRepo repository.ProductRepository
	vendorRepo  repository.VendorRepository
	auditSvc    AuditService
	cache       *cache.Client
	logger      *zap.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	vendorRepo repository.VendorRepository,
	auditSvc AuditService,
	cache *cache.Client,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		auditSvc:    auditSvc,
		cache:       cache,
		logger:      logger,
	}
}

// Create registers a new SKU in draft status for the actor's vendor.
func (s *productService) Create(ctx context.Context, actor *model.User, input ProductCreateInput) (*model.Product, error) {
	if !authz.Allowed(actor.Role, authz.CapProductCreate) {
		return nil, apperrors.Forbidden("only vendors can create products")
	}

	vendor, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("vendor profile required before creating products")
		}
		return nil, err
	}

	if existing, err := s.productRepo.FindBySKU(ctx, input.SKUNumber); err == nil && existing != nil {
		return nil, apperrors.Conflict("a product with this SKU number already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check sku uniqueness: %w", err)
	}

	product := &model.Product{
		VendorID:        vendor.ID,
		SKUNumber:       input.SKUNumber,
		ProductName:     input.ProductName,
		Category:        input.Category,
		Description:     input.Description,
		Manufacturer:    input.Manufacturer,
		CountryOfOrigin: input.CountryOfOrigin,
		IngredientsList: input.IngredientsList,
		AllergenInfo:    input.AllergenInfo,
		Status:          model.ProductStatusDraft,
		Version:         model.InitialVersion,
	}

	now := time.Now()
	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.productRepo.CreateTx(ctx, tx, product); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.vendorRepo.TouchSubmissionTx(ctx, tx, vendor.ID, now); err != nil {
			return fmt.Errorf("touch vendor: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionCreate,
			EntityType:  model.EntityTypeProduct,
			EntityID:    product.ID,
			Description: fmt.Sprintf("product %s (%s) created", product.ProductName, product.SKUNumber),
			Version:     product.Version,
		})
	})
	if err != nil {
		// Unique index backstops the pre-check under concurrency.
		if isDuplicateKeyError(err) {
			return nil, apperrors.Conflict("a product with this SKU number already exists")
		}
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("productId", product.ID.String()),
		zap.String("sku", product.SKUNumber),
		zap.String("vendorId", vendor.ID.String()))
	return product, nil
}

// Update applies a partial edit and bumps the minor version. Vendors may
// only edit their own drafts; reviewer roles may edit in any status.
func (s *productService) Update(ctx context.Context, actor *model.User, id uuid.UUID, input ProductUpdateInput) (*model.Product, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	switch authz.Check(actor.Role, authz.CapProductEdit) {
	case authz.Allow:
	case authz.AllowOwnerDraft:
		owned, err := s.ownsProduct(ctx, actor, product)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, apperrors.Forbidden("you do not own this product")
		}
		if product.Status != model.ProductStatusDraft {
			return nil, apperrors.Forbidden("only draft products can be edited")
		}
	default:
		return nil, apperrors.Forbidden("insufficient role to edit products")
	}

	before := *product
	fields := map[string]interface{}{}
	apply := func(column string, val *string, dst *string) {
		if val != nil {
			fields[column] = *val
			*dst = *val
		}
	}
	apply("product_name", input.ProductName, &product.ProductName)
	apply("category", input.Category, &product.Category)
	apply("description", input.Description, &product.Description)
	apply("manufacturer", input.Manufacturer, &product.Manufacturer)
	apply("country_of_origin", input.CountryOfOrigin, &product.CountryOfOrigin)
	apply("ingredients_list", input.IngredientsList, &product.IngredientsList)
	apply("allergen_info", input.AllergenInfo, &product.AllergenInfo)

	if input.SKUNumber != nil && *input.SKUNumber != product.SKUNumber {
		if existing, err := s.productRepo.FindBySKU(ctx, *input.SKUNumber); err == nil && existing != nil {
			return nil, apperrors.Conflict("a product with this SKU number already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check sku uniqueness: %w", err)
		}
		fields["sku_number"] = *input.SKUNumber
		product.SKUNumber = *input.SKUNumber
	}

	if len(fields) == 0 {
		return product, nil
	}

	newVersion := nextMinorVersion(before.Version)
	now := time.Now()
	fields["version"] = newVersion
	fields["updated_at"] = now
	product.Version = newVersion

	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		affected, err := s.productRepo.UpdateVersionGuardedTx(ctx, tx, product.ID, before.Version, fields)
		if err != nil {
			if isDuplicateKeyError(err) {
				return apperrors.Conflict("a product with this SKU number already exists")
			}
			return fmt.Errorf("update product: %w", err)
		}
		if affected == 0 {
			return apperrors.Conflict("product was modified concurrently, retry the update")
		}
		if err := s.vendorRepo.TouchSubmissionTx(ctx, tx, product.VendorID, now); err != nil {
			return fmt.Errorf("touch vendor: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionUpdate,
			EntityType:  model.EntityTypeProduct,
			EntityID:    product.ID,
			Description: fmt.Sprintf("product %s updated to %s", product.SKUNumber, newVersion),
			Changes:     marshalChanges(before, product),
			Version:     newVersion,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProduct(ctx, product.ID)
	s.logger.Info("product updated",
		zap.String("productId", product.ID.String()),
		zap.String("version", newVersion))
	return product, nil
}

// Submit moves an owned draft to pending review.
func (s *productService) Submit(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Product, error) {
	if !authz.Allowed(actor.Role, authz.CapProductSubmit) {
		return nil, apperrors.Forbidden("only vendors can submit products for review")
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	owned, err := s.ownsProduct(ctx, actor, product)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperrors.Forbidden("you do not own this product")
	}
	if product.Status != model.ProductStatusDraft {
		return nil, apperrors.Validation("only draft products can be submitted for review")
	}

	now := time.Now()
	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		affected, err := s.productRepo.UpdateStatusGuardedTx(ctx, tx, product.ID, model.ProductStatusDraft, map[string]interface{}{
			"status":       model.ProductStatusPending,
			"submitted_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return fmt.Errorf("submit product: %w", err)
		}
		if affected == 0 {
			// A concurrent submit won; the precondition no longer holds.
			return apperrors.Validation("only draft products can be submitted for review")
		}
		if err := s.vendorRepo.TouchSubmissionTx(ctx, tx, product.VendorID, now); err != nil {
			return fmt.Errorf("touch vendor: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionUpdate,
			EntityType:  model.EntityTypeProduct,
			EntityID:    product.ID,
			Description: fmt.Sprintf("product %s submitted for review", product.SKUNumber),
			Changes:     marshalChanges(map[string]interface{}{"status": model.ProductStatusDraft}, map[string]interface{}{"status": model.ProductStatusPending}),
			Version:     product.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	product.Status = model.ProductStatusPending
	product.SubmittedAt = &now
	product.UpdatedAt = now
	s.invalidateProduct(ctx, product.ID)
	s.logger.Info("product submitted",
		zap.String("productId", product.ID.String()),
		zap.String("sku", product.SKUNumber))
	return product, nil
}

// Review resolves a pending product to approved or rejected. The role gate
// comes first: a vendor gets 403 no matter what state the product is in.
func (s *productService) Review(ctx context.Context, actor *model.User, id uuid.UUID, action ReviewAction, notes string) (*model.Product, error) {
	if !authz.Allowed(actor.Role, authz.CapProductReview) {
		return nil, apperrors.Forbidden("insufficient role to review products")
	}
	if action != ReviewApprove && action != ReviewReject {
		return nil, apperrors.Validation("action must be approve or reject")
	}
	if action == ReviewReject && notes == "" {
		return nil, apperrors.Validation("review notes are required when rejecting")
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status != model.ProductStatusPending {
		return nil, apperrors.Conflict("only pending products can be reviewed")
	}

	newStatus := model.ProductStatusApproved
	auditAction := model.AuditActionApprove
	if action == ReviewReject {
		newStatus = model.ProductStatusRejected
		auditAction = model.AuditActionReject
	}

	now := time.Now()
	reviewerID := actor.ID
	err = s.productRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		affected, err := s.productRepo.UpdateStatusGuardedTx(ctx, tx, product.ID, model.ProductStatusPending, map[string]interface{}{
			"status":       newStatus,
			"reviewed_at":  now,
			"reviewed_by":  reviewerID,
			"review_notes": notes,
			"updated_at":   now,
		})
		if err != nil {
			return fmt.Errorf("review product: %w", err)
		}
		if affected == 0 {
			return apperrors.Conflict("product was already reviewed")
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      auditAction,
			EntityType:  model.EntityTypeProduct,
			EntityID:    product.ID,
			Description: fmt.Sprintf("product %s %s", product.SKUNumber, newStatus),
			Changes:     marshalChanges(map[string]interface{}{"status": model.ProductStatusPending}, map[string]interface{}{"status": newStatus, "reviewNotes": notes}),
			Version:     product.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	product.Status = newStatus
	product.ReviewedAt = &now
	product.ReviewedBy = &reviewerID
	product.ReviewNotes = notes
	product.UpdatedAt = now
	s.invalidateProduct(ctx, product.ID)
	s.logger.Info("product reviewed",
		zap.String("productId", product.ID.String()),
		zap.String("verdict", string(newStatus)),
		zap.String("reviewerId", reviewerID.String()))
	return product, nil
}

// Get returns one product, cached. Vendors see only their own.
func (s *productService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Product, error) {
	cacheKey := productCacheKeyPrefix + id.String()
	if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return s.authorizeRead(ctx, actor, &cached)
		}
	}

	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, cacheKey, data, productCacheTTL)
	}
	return s.authorizeRead(ctx, actor, product)
}

func (s *productService) ListMine(ctx context.Context, actor *model.User) ([]model.Product, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor profile not found")
		}
		return nil, err
	}
	return s.productRepo.FindByVendor(ctx, vendor.ID)
}

func (s *productService) List(ctx context.Context, actor *model.User, status model.ProductStatus) ([]model.Product, error) {
	if !authz.Allowed(actor.Role, authz.CapProductViewAll) {
		return nil, apperrors.Forbidden("insufficient role to list all products")
	}
	if status != "" {
		return s.productRepo.FindByStatus(ctx, status)
	}
	return s.productRepo.List(ctx)
}

func (s *productService) ListPending(ctx context.Context, actor *model.User) ([]model.Product, error) {
	if !authz.Allowed(actor.Role, authz.CapProductReview) {
		return nil, apperrors.Forbidden("insufficient role to view the review queue")
	}
	return s.productRepo.FindByStatus(ctx, model.ProductStatusPending)
}

// ReviewHistory returns the approve/reject entries for a product.
func (s *productService) ReviewHistory(ctx context.Context, actor *model.User, id uuid.UUID) ([]AuditEntry, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeRead(ctx, actor, product); err != nil {
		return nil, err
	}

	entries, err := s.auditSvc.ByEntityUnchecked(ctx, model.EntityTypeProduct, id)
	if err != nil {
		return nil, err
	}

	history := make([]AuditEntry, 0, len(entries))
	for _, e := range entries {
		if e.Action == model.AuditActionApprove || e.Action == model.AuditActionReject {
			history = append(history, e)
		}
	}
	return history, nil
}

func (s *productService) loadProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, err
	}
	return product, nil
}

// ownsProduct reports whether the actor's vendor profile owns the product.
func (s *productService) ownsProduct(ctx context.Context, actor *model.User, product *model.Product) (bool, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return vendor.ID == product.VendorID, nil
}

func (s *productService) authorizeRead(ctx context.Context, actor *model.User, product *model.Product) (*model.Product, error) {
	if authz.Allowed(actor.Role, authz.CapProductViewAll) {
		return product, nil
	}
	owned, err := s.ownsProduct(ctx, actor, product)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperrors.Forbidden("you do not own this product")
	}
	return product, nil
}

func (s *productService) invalidateProduct(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, productCacheKeyPrefix+id.String())
}

// isDuplicateKeyError detects a unique index violation from the driver.
func isDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
