package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
)

func newProductFixture() (*productService, *MockProductRepository, *MockVendorRepository, *MockAuditLogRepository) {
	productRepo := new(MockProductRepository)
	vendorRepo := new(MockVendorRepository)
	auditRepo := new(MockAuditLogRepository)
	userRepo := new(MockUserRepository)

	auditSvc := NewAuditService(auditRepo, userRepo, nil, zap.NewNop())
	svc := NewProductService(productRepo, vendorRepo, auditSvc, nil, zap.NewNop()).(*productService)
	return svc, productRepo, vendorRepo, auditRepo
}

func vendorUser() (*model.User, *model.Vendor) {
	user := &model.User{ID: uuid.New(), Email: "vendor@example.com", Name: "Vendor", Role: model.RoleVendor}
	vendor := &model.Vendor{ID: uuid.New(), UserID: user.ID, CompanyName: "Vendor Co"}
	return user, vendor
}

func roleUser(role model.Role) *model.User {
	return &model.User{ID: uuid.New(), Email: string(role) + "@example.com", Name: string(role), Role: role}
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("vendor creates draft with initial version and audit entry", func(t *testing.T) {
		svc, productRepo, vendorRepo, auditRepo := newProductFixture()
		user, vendor := vendorUser()

		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("FindBySKU", ctx, "SKU-1").Return(nil, gorm.ErrRecordNotFound)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)
		vendorRepo.On("TouchSubmissionTx", ctx, mock.Anything, vendor.ID, mock.Anything).Return(nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionCreate &&
				l.EntityType == model.EntityTypeProduct &&
				l.UserID == user.ID &&
				l.Version == model.InitialVersion
		})).Return(nil)

		product, err := svc.Create(ctx, user, ProductCreateInput{
			SKUNumber:   "SKU-1",
			ProductName: "Smoked Salmon",
			Category:    "Seafood",
		})

		assert.NoError(t, err)
		assert.Equal(t, model.ProductStatusDraft, product.Status)
		assert.Equal(t, model.InitialVersion, product.Version)
		assert.Equal(t, vendor.ID, product.VendorID)
		auditRepo.AssertExpectations(t)
	})

	t.Run("duplicate sku is a conflict", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()

		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("FindBySKU", ctx, "SKU-1").Return(&model.Product{ID: uuid.New()}, nil)

		_, err := svc.Create(ctx, user, ProductCreateInput{SKUNumber: "SKU-1"})

		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("distributor cannot create", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.Create(ctx, roleUser(model.RoleDistributor), ProductCreateInput{SKUNumber: "SKU-1"})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("vendor without profile gets validation error", func(t *testing.T) {
		svc, _, vendorRepo, _ := newProductFixture()
		user, _ := vendorUser()

		vendorRepo.On("FindByUserID", ctx, user.ID).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Create(ctx, user, ProductCreateInput{SKUNumber: "SKU-1"})

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	name := "Renamed Product"

	t.Run("vendor edit of own draft bumps the minor version", func(t *testing.T) {
		svc, productRepo, vendorRepo, auditRepo := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID, SKUNumber: "SKU-1",
			Status: model.ProductStatusDraft, Version: "v1.0.0"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateVersionGuardedTx", ctx, mock.Anything, product.ID, "v1.0.0",
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["version"] == "v1.1.0" && fields["product_name"] == name
			})).Return(int64(1), nil)
		vendorRepo.On("TouchSubmissionTx", ctx, mock.Anything, vendor.ID, mock.Anything).Return(nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionUpdate && l.Version == "v1.1.0" && l.Changes != ""
		})).Return(nil)

		updated, err := svc.Update(ctx, user, product.ID, ProductUpdateInput{ProductName: &name})

		assert.NoError(t, err)
		assert.Equal(t, "v1.1.0", updated.Version)
		assert.Equal(t, name, updated.ProductName)
		vendorRepo.AssertCalled(t, "TouchSubmissionTx", ctx, mock.Anything, vendor.ID, mock.Anything)
		auditRepo.AssertExpectations(t)
	})

	t.Run("update preserves a nonzero patch component", func(t *testing.T) {
		svc, productRepo, vendorRepo, auditRepo := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID, SKUNumber: "SKU-1",
			Status: model.ProductStatusDraft, Version: "v2.4.9"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateVersionGuardedTx", ctx, mock.Anything, product.ID, "v2.4.9",
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["version"] == "v2.5.9"
			})).Return(int64(1), nil)
		vendorRepo.On("TouchSubmissionTx", ctx, mock.Anything, vendor.ID, mock.Anything).Return(nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := svc.Update(ctx, user, product.ID, ProductUpdateInput{ProductName: &name})

		assert.NoError(t, err)
		assert.Equal(t, "v2.5.9", updated.Version)
	})

	t.Run("vendor cannot edit once submitted", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID,
			Status: model.ProductStatusPending, Version: "v1.2.0"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)

		_, err := svc.Update(ctx, user, product.ID, ProductUpdateInput{ProductName: &name})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("auditor can edit a pending product", func(t *testing.T) {
		svc, productRepo, vendorRepo, auditRepo := newProductFixture()
		user := roleUser(model.RoleAuditor)
		product := &model.Product{ID: uuid.New(), VendorID: uuid.New(), SKUNumber: "SKU-2",
			Status: model.ProductStatusPending, Version: "v1.2.0"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateVersionGuardedTx", ctx, mock.Anything, product.ID, "v1.2.0", mock.Anything).
			Return(int64(1), nil)
		vendorRepo.On("TouchSubmissionTx", ctx, mock.Anything, product.VendorID, mock.Anything).Return(nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

		updated, err := svc.Update(ctx, user, product.ID, ProductUpdateInput{ProductName: &name})

		assert.NoError(t, err)
		assert.Equal(t, "v1.3.0", updated.Version)
	})

	t.Run("concurrent edit loses with conflict", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID,
			Status: model.ProductStatusDraft, Version: "v1.0.0"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateVersionGuardedTx", ctx, mock.Anything, product.ID, "v1.0.0", mock.Anything).
			Return(int64(0), nil)

		_, err := svc.Update(ctx, user, product.ID, ProductUpdateInput{ProductName: &name})

		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}

func TestProductService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("owner submits draft", func(t *testing.T) {
		svc, productRepo, vendorRepo, auditRepo := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID, SKUNumber: "SKU-1",
			Status: model.ProductStatusDraft, Version: "v1.0.0"}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateStatusGuardedTx", ctx, mock.Anything, product.ID, model.ProductStatusDraft,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["status"] == model.ProductStatusPending
			})).Return(int64(1), nil)
		vendorRepo.On("TouchSubmissionTx", ctx, mock.Anything, vendor.ID, mock.Anything).Return(nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionUpdate && l.EntityID == product.ID
		})).Return(nil)

		submitted, err := svc.Submit(ctx, user, product.ID)

		assert.NoError(t, err)
		assert.Equal(t, model.ProductStatusPending, submitted.Status)
		assert.NotNil(t, submitted.SubmittedAt)
		auditRepo.AssertExpectations(t)
	})

	t.Run("non-draft cannot be submitted", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID, Status: model.ProductStatusApproved}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)

		_, err := svc.Submit(ctx, user, product.ID)

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("non-owner vendor is forbidden", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: uuid.New(), Status: model.ProductStatusDraft}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)

		_, err := svc.Submit(ctx, user, product.ID)

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("losing a concurrent submit reads as non-draft", func(t *testing.T) {
		svc, productRepo, vendorRepo, _ := newProductFixture()
		user, vendor := vendorUser()
		product := &model.Product{ID: uuid.New(), VendorID: vendor.ID, Status: model.ProductStatusDraft}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		vendorRepo.On("FindByUserID", ctx, user.ID).Return(vendor, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateStatusGuardedTx", ctx, mock.Anything, product.ID, model.ProductStatusDraft, mock.Anything).
			Return(int64(0), nil)

		_, err := svc.Submit(ctx, user, product.ID)

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})
}

func TestProductService_Review(t *testing.T) {
	ctx := context.Background()

	pendingProduct := func() *model.Product {
		return &model.Product{ID: uuid.New(), VendorID: uuid.New(), SKUNumber: "SKU-1",
			Status: model.ProductStatusPending, Version: "v1.2.0"}
	}

	t.Run("distributor approves pending product", func(t *testing.T) {
		svc, productRepo, _, auditRepo := newProductFixture()
		user := roleUser(model.RoleDistributor)
		product := pendingProduct()

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateStatusGuardedTx", ctx, mock.Anything, product.ID, model.ProductStatusPending,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["status"] == model.ProductStatusApproved
			})).Return(int64(1), nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionApprove
		})).Return(nil)

		reviewed, err := svc.Review(ctx, user, product.ID, ReviewApprove, "all documents in order")

		assert.NoError(t, err)
		assert.Equal(t, model.ProductStatusApproved, reviewed.Status)
		assert.Equal(t, user.ID, *reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)
		auditRepo.AssertExpectations(t)
	})

	t.Run("rejection requires notes", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.Review(ctx, roleUser(model.RoleAuditor), uuid.New(), ReviewReject, "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("auditor rejects with notes", func(t *testing.T) {
		svc, productRepo, _, auditRepo := newProductFixture()
		user := roleUser(model.RoleAuditor)
		product := pendingProduct()

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateStatusGuardedTx", ctx, mock.Anything, product.ID, model.ProductStatusPending,
			mock.MatchedBy(func(fields map[string]interface{}) bool {
				return fields["status"] == model.ProductStatusRejected && fields["review_notes"] == "missing allergen data"
			})).Return(int64(1), nil)
		auditRepo.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
			return l.Action == model.AuditActionReject
		})).Return(nil)

		reviewed, err := svc.Review(ctx, user, product.ID, ReviewReject, "missing allergen data")

		assert.NoError(t, err)
		assert.Equal(t, model.ProductStatusRejected, reviewed.Status)
		assert.Equal(t, "missing allergen data", reviewed.ReviewNotes)
	})

	t.Run("vendor is forbidden regardless of product state", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.Review(ctx, roleUser(model.RoleVendor), uuid.New(), ReviewApprove, "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("admin is not granted review", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.Review(ctx, roleUser(model.RoleAdmin), uuid.New(), ReviewApprove, "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("reviewing a draft is a conflict", func(t *testing.T) {
		svc, productRepo, _, _ := newProductFixture()
		product := &model.Product{ID: uuid.New(), Status: model.ProductStatusDraft}

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := svc.Review(ctx, roleUser(model.RoleDistributor), product.ID, ReviewApprove, "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("losing a concurrent review is a conflict", func(t *testing.T) {
		svc, productRepo, _, _ := newProductFixture()
		product := pendingProduct()

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("WithTransaction", ctx, mock.Anything).Return(nil)
		productRepo.On("UpdateStatusGuardedTx", ctx, mock.Anything, product.ID, model.ProductStatusPending, mock.Anything).
			Return(int64(0), nil)

		_, err := svc.Review(ctx, roleUser(model.RoleDistributor), product.ID, ReviewApprove, "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})
}

func TestProductService_Listing(t *testing.T) {
	ctx := context.Background()

	t.Run("vendor cannot list all products", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.List(ctx, roleUser(model.RoleVendor), "")

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("admin cannot see the review queue", func(t *testing.T) {
		svc, _, _, _ := newProductFixture()

		_, err := svc.ListPending(ctx, roleUser(model.RoleAdmin))

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("distributor lists by status", func(t *testing.T) {
		svc, productRepo, _, _ := newProductFixture()
		productRepo.On("FindByStatus", ctx, model.ProductStatusApproved).
			Return([]model.Product{{SKUNumber: "SKU-1"}}, nil)

		products, err := svc.List(ctx, roleUser(model.RoleDistributor), model.ProductStatusApproved)

		assert.NoError(t, err)
		assert.Len(t, products, 1)
	})
}
