package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fsvp/internal/auth"
	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the fields accepted at registration. Role defaults
// to vendor when empty; vendor registrations get a supplier profile in the
// same transaction.
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Role        model.Role
	CompanyName string
	Country     string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	vendorRepo repository.VendorRepository
	auditSvc   AuditService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	vendorRepo repository.VendorRepository,
	auditSvc AuditService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		vendorRepo: vendorRepo,
		auditSvc:   auditSvc,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with hashed password. Vendor registrations
// also create the supplier profile; both rows and their audit entries commit
// together or not at all.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	role := input.Role
	if role == "" {
		role = model.RoleVendor
	}
	if !model.ValidRole(role) {
		return nil, apperrors.Validation("invalid role")
	}

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("user already exists")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Role:         role,
	}

	err = s.userRepo.WithTransaction(ctx, func(ctx context.Context, tx interface{}) error {
		if err := s.userRepo.CreateTx(ctx, tx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if err := s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      user.ID,
			Action:      model.AuditActionCreate,
			EntityType:  model.EntityTypeUser,
			EntityID:    user.ID,
			Description: fmt.Sprintf("registered with role %s", role),
		}); err != nil {
			return fmt.Errorf("record registration: %w", err)
		}

		if role != model.RoleVendor {
			return nil
		}

		companyName := input.CompanyName
		if companyName == "" {
			companyName = input.Name
		}
		vendor := &model.Vendor{
			UserID:      user.ID,
			CompanyName: companyName,
			Country:     input.Country,
		}
		if err := s.vendorRepo.CreateTx(ctx, tx, vendor); err != nil {
			return fmt.Errorf("create vendor profile: %w", err)
		}

		if err := s.auditSvc.RecordTx(ctx, tx, &model.AuditLog{
			UserID:      user.ID,
			Action:      model.AuditActionCreate,
			EntityType:  model.EntityTypeVendor,
			EntityID:    vendor.ID,
			Description: fmt.Sprintf("vendor profile created for %s", companyName),
		}); err != nil {
			return fmt.Errorf("record vendor creation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, apperrors.Unauthenticated("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.Unauthenticated("invalid email or password")
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID.String(), user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	// Logins land on the trail too; a failed append must not block sign-in.
	_ = s.auditSvc.Record(ctx, &model.AuditLog{
		UserID:      user.ID,
		Action:      model.AuditActionUpdate,
		EntityType:  model.EntityTypeUser,
		EntityID:    user.ID,
		Description: "logged in",
	})

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", apperrors.Unauthenticated("invalid or expired refresh token")
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", apperrors.Unauthenticated("invalid or expired refresh token")
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", apperrors.Unauthenticated("invalid or expired refresh token")
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", apperrors.Unauthenticated("invalid or expired refresh token")
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return "", apperrors.Unauthenticated("invalid or expired refresh token")
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates the refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.Unauthenticated("invalid or expired refresh token")
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}
