package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

func newAuditFixture() (AuditService, *MockAuditLogRepository, *MockUserRepository) {
	auditRepo := new(MockAuditLogRepository)
	userRepo := new(MockUserRepository)
	svc := NewAuditService(auditRepo, userRepo, nil, zap.NewNop())
	return svc, auditRepo, userRepo
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("vendor is refused the global trail", func(t *testing.T) {
		svc, _, _ := newAuditFixture()

		_, err := svc.List(ctx, roleUser(model.RoleVendor), repository.AuditLogFilter{})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("limit defaults to 100 and caps at 500", func(t *testing.T) {
		svc, auditRepo, _ := newAuditFixture()
		auditRepo.On("List", ctx, mock.MatchedBy(func(f repository.AuditLogFilter) bool {
			return f.Limit == repository.DefaultAuditPageSize
		})).Return([]model.AuditLog{}, int64(0), nil).Once()

		page, err := svc.List(ctx, roleUser(model.RoleAuditor), repository.AuditLogFilter{})
		assert.NoError(t, err)
		assert.Equal(t, repository.DefaultAuditPageSize, page.Limit)

		auditRepo.On("List", ctx, mock.MatchedBy(func(f repository.AuditLogFilter) bool {
			return f.Limit == repository.MaxAuditPageSize
		})).Return([]model.AuditLog{}, int64(0), nil).Once()

		page, err = svc.List(ctx, roleUser(model.RoleAuditor), repository.AuditLogFilter{Limit: 9999})
		assert.NoError(t, err)
		assert.Equal(t, repository.MaxAuditPageSize, page.Limit)
	})

	t.Run("total reflects the unpaginated count and logs carry the actor", func(t *testing.T) {
		svc, auditRepo, userRepo := newAuditFixture()
		actorID := uuid.New()
		logs := []model.AuditLog{
			{ID: uuid.New(), UserID: actorID, Action: model.AuditActionApprove, Timestamp: time.Now()},
			{ID: uuid.New(), UserID: actorID, Action: model.AuditActionCreate, Timestamp: time.Now()},
		}

		auditRepo.On("List", ctx, mock.Anything).Return(logs, int64(42), nil)
		userRepo.On("FindByID", ctx, actorID).Return(&model.User{
			ID: actorID, Name: "Reviewer", Email: "rev@example.com", Role: model.RoleDistributor,
		}, nil).Once()

		page, err := svc.List(ctx, roleUser(model.RoleAdmin), repository.AuditLogFilter{Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, int64(42), page.Total)
		assert.Len(t, page.Logs, 2)
		assert.Equal(t, "Reviewer", page.Logs[0].User.Name)
		assert.Equal(t, "distributor", page.Logs[1].User.Role)
		// Both entries share one lookup.
		userRepo.AssertNumberOfCalls(t, "FindByID", 1)
	})

	t.Run("purged actor yields a nil user snapshot", func(t *testing.T) {
		svc, auditRepo, userRepo := newAuditFixture()
		ghostID := uuid.New()

		auditRepo.On("List", ctx, mock.Anything).Return([]model.AuditLog{
			{ID: uuid.New(), UserID: ghostID},
		}, int64(1), nil)
		userRepo.On("FindByID", ctx, ghostID).Return(nil, gorm.ErrRecordNotFound)

		page, err := svc.List(ctx, roleUser(model.RoleAuditor), repository.AuditLogFilter{})

		assert.NoError(t, err)
		assert.Nil(t, page.Logs[0].User)
	})
}

func TestAuditService_ByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("vendor may read their own activity", func(t *testing.T) {
		svc, auditRepo, userRepo := newAuditFixture()
		vendor := roleUser(model.RoleVendor)

		auditRepo.On("FindByUser", ctx, vendor.ID).Return([]model.AuditLog{
			{ID: uuid.New(), UserID: vendor.ID},
		}, nil)
		userRepo.On("FindByID", ctx, vendor.ID).Return(vendor, nil)

		logs, err := svc.ByUser(ctx, vendor, vendor.ID)

		assert.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("vendor may not read another user's activity", func(t *testing.T) {
		svc, _, _ := newAuditFixture()

		_, err := svc.ByUser(ctx, roleUser(model.RoleVendor), uuid.New())

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}

func TestAuditService_ForProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles the combined trail newest first", func(t *testing.T) {
		svc, auditRepo, userRepo := newAuditFixture()
		productID := uuid.New()
		actorID := uuid.New()

		auditRepo.On("FindForProduct", ctx, productID).Return([]model.AuditLog{
			{ID: uuid.New(), UserID: actorID, EntityType: model.EntityTypeDocument, Action: model.AuditActionSign},
			{ID: uuid.New(), UserID: actorID, EntityType: model.EntityTypeProduct, Action: model.AuditActionCreate},
		}, nil)
		userRepo.On("FindByID", ctx, actorID).Return(&model.User{ID: actorID, Name: "V"}, nil)

		logs, err := svc.ForProduct(ctx, roleUser(model.RoleAuditor), productID)

		assert.NoError(t, err)
		assert.Len(t, logs, 2)
		assert.Equal(t, model.EntityTypeDocument, logs[0].EntityType)
	})

	t.Run("vendor is refused", func(t *testing.T) {
		svc, _, _ := newAuditFixture()

		_, err := svc.ForProduct(ctx, roleUser(model.RoleVendor), uuid.New())

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}
