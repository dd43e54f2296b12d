package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fsvp/internal/authz"
	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

// VendorProfileInput carries the writable vendor fields. Verification status
// is a separate field because only reviewer roles may set it.
type VendorProfileInput struct {
	CompanyName        string
	Country            string
	Address            string
	Phone              string
	VerificationStatus model.VerificationStatus
}

// VendorService manages supplier profiles.
type VendorService interface {
	CreateProfile(ctx context.Context, actor *model.User, input VendorProfileInput) (*model.Vendor, error)
	GetMine(ctx context.Context, actor *model.User) (*model.Vendor, error)
	GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, actor *model.User) ([]model.Vendor, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, input VendorProfileInput) (*model.Vendor, error)
}

type vendorService struct {
	vendorRepo repository.VendorRepository
	userRepo   repository.UserRepository
	auditSvc   AuditService
	logger     *zap.Logger
}

// NewVendorService creates a new vendor service.
func NewVendorService(
	vendorRepo repository.VendorRepository,
	userRepo repository.UserRepository,
	auditSvc AuditService,
	logger *zap.Logger,
) VendorService {
	return &vendorService{
		vendorRepo: vendorRepo,
		userRepo:   userRepo,
		auditSvc:   auditSvc,
		logger:     logger,
	}
}

// CreateProfile creates the supplier profile for a vendor user. Most vendors
// get one at registration; this covers accounts created before that flow.
func (s *vendorService) CreateProfile(ctx context.Context, actor *model.User, input VendorProfileInput) (*model.Vendor, error) {
	if actor.Role != model.RoleVendor {
		return nil, apperrors.Forbidden("only vendors can create a supplier profile")
	}
	if input.CompanyName == "" {
		return nil, apperrors.Validation("companyName is required")
	}

	existing, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("vendor profile already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check vendor existence: %w", err)
	}

	vendor := &model.Vendor{
		UserID:      actor.ID,
		CompanyName: input.CompanyName,
		Country:     input.Country,
		Address:     input.Address,
		Phone:       input.Phone,
	}

	err = s.userRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.vendorRepo.CreateTx(ctx, tx, vendor); err != nil {
			return fmt.Errorf("create vendor: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionCreate,
			EntityType:  model.EntityTypeVendor,
			EntityID:    vendor.ID,
			Description: fmt.Sprintf("vendor profile created for %s", vendor.CompanyName),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor profile created",
		zap.String("vendorId", vendor.ID.String()),
		zap.String("userId", actor.ID.String()))
	return vendor, nil
}

func (s *vendorService) GetMine(ctx context.Context, actor *model.User) (*model.Vendor, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor profile not found")
		}
		return nil, err
	}
	return vendor, nil
}

func (s *vendorService) GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Vendor, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor not found")
		}
		return nil, err
	}

	if vendor.UserID != actor.ID && !authz.Allowed(actor.Role, authz.CapVendorViewAll) {
		return nil, apperrors.Forbidden("insufficient role to view this vendor")
	}
	return vendor, nil
}

func (s *vendorService) List(ctx context.Context, actor *model.User) ([]model.Vendor, error) {
	if !authz.Allowed(actor.Role, authz.CapVendorViewAll) {
		return nil, apperrors.Forbidden("insufficient role to list vendors")
	}
	return s.vendorRepo.List(ctx)
}

// Update edits a vendor profile. Owners may change contact fields only;
// verification status changes require a reviewer role.
func (s *vendorService) Update(ctx context.Context, actor *model.User, id uuid.UUID, input VendorProfileInput) (*model.Vendor, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor not found")
		}
		return nil, err
	}

	isOwner := vendor.UserID == actor.ID
	canVerify := authz.Allowed(actor.Role, authz.CapVendorVerify)
	if !isOwner && !canVerify {
		return nil, apperrors.Forbidden("insufficient role to update this vendor")
	}

	before := *vendor
	fields := map[string]interface{}{}
	if input.CompanyName != "" {
		fields["company_name"] = input.CompanyName
		vendor.CompanyName = input.CompanyName
	}
	if input.Country != "" {
		fields["country"] = input.Country
		vendor.Country = input.Country
	}
	if input.Address != "" {
		fields["address"] = input.Address
		vendor.Address = input.Address
	}
	if input.Phone != "" {
		fields["phone"] = input.Phone
		vendor.Phone = input.Phone
	}
	if input.VerificationStatus != "" {
		// Owners cannot verify themselves; the field is silently dropped
		// unless the caller holds the verify capability.
		if canVerify {
			fields["verification_status"] = input.VerificationStatus
			vendor.VerificationStatus = input.VerificationStatus
		}
	}

	if len(fields) == 0 {
		return vendor, nil
	}

	err = s.userRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.vendorRepo.UpdateFieldsTx(ctx, tx, vendor.ID, fields); err != nil {
			return fmt.Errorf("update vendor: %w", err)
		}
		return s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      actor.ID,
			Action:      model.AuditActionUpdate,
			EntityType:  model.EntityTypeVendor,
			EntityID:    vendor.ID,
			Description: fmt.Sprintf("vendor profile %s updated", vendor.CompanyName),
			Changes:     marshalChanges(before, vendor),
		})
	})
	if err != nil {
		return nil, err
	}

	return vendor, nil
}
