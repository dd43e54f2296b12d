package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fsvp/internal/authz"
	"fsvp/internal/cache"
	"fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
)

const (
	auditActorCacheKeyPrefix = "audit_actor:"
	auditActorCacheTTL       = 5 * time.Minute
)

// AuditActor is the user snapshot attached to returned log entries.
type AuditActor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuditEntry is an audit log enriched with its actor. User is nil when the
// actor no longer exists.
type AuditEntry struct {
	model.AuditLog
	User *AuditActor `json:"user"`
}

// AuditPage is one page of the global trail plus the unpaginated total.
type AuditPage struct {
	Logs   []AuditEntry `json:"logs"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// AuditService reads the trail and appends entries inside mutating
// transactions. It never updates or deletes rows.
type AuditService interface {
	// RecordTx appends one entry within the caller's transaction. Mutating
	// services call this so that a failed append rolls the mutation back.
	RecordTx(ctx context.Context, tx interface{}, log *model.AuditLog) error
	// Record appends one entry outside any transaction (login events).
	Record(ctx context.Context, log *model.AuditLog) error
	ByEntity(ctx context.Context, actor *model.User, entityType string, entityID uuid.UUID) ([]AuditEntry, error)
	// ByEntityUnchecked skips the role gate; callers resolve access
	// themselves (review history checks product ownership instead).
	ByEntityUnchecked(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditEntry, error)
	ByUser(ctx context.Context, actor *model.User, userID uuid.UUID) ([]AuditEntry, error)
	List(ctx context.Context, actor *model.User, filter repository.AuditLogFilter) (*AuditPage, error)
	ForProduct(ctx context.Context, actor *model.User, productID uuid.UUID) ([]AuditEntry, error)
}

type auditService struct {
	auditRepo repository.AuditLogRepository
	userRepo  repository.UserRepository
	cache     *cache.Client
	logger    *zap.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(
	auditRepo repository.AuditLogRepository,
	userRepo repository.UserRepository,
	cache *cache.Client,
	logger *zap.Logger,
) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		userRepo:  userRepo,
		cache:     cache,
		logger:    logger,
	}
}

func (s *auditService) RecordTx(ctx context.Context, tx interface{}, log *model.AuditLog) error {
	return s.auditRepo.CreateTx(ctx, tx, log)
}

func (s *auditService) Record(ctx context.Context, log *model.AuditLog) error {
	return s.auditRepo.Create(ctx, log)
}

func (s *auditService) ByEntity(ctx context.Context, actor *model.User, entityType string, entityID uuid.UUID) ([]AuditEntry, error) {
	if !authz.Allowed(actor.Role, authz.CapAuditViewGlobal) {
		return nil, errors.Forbidden("insufficient role to view audit logs")
	}

	return s.ByEntityUnchecked(ctx, entityType, entityID)
}

func (s *auditService) ByEntityUnchecked(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditEntry, error) {
	logs, err := s.auditRepo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, logs), nil
}

func (s *auditService) ByUser(ctx context.Context, actor *model.User, userID uuid.UUID) ([]AuditEntry, error) {
	// Vendors may only read their own activity.
	if !authz.Allowed(actor.Role, authz.CapAuditViewGlobal) && actor.ID != userID {
		return nil, errors.Forbidden("insufficient role to view other users' audit logs")
	}

	logs, err := s.auditRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, logs), nil
}

func (s *auditService) List(ctx context.Context, actor *model.User, filter repository.AuditLogFilter) (*AuditPage, error) {
	if !authz.Allowed(actor.Role, authz.CapAuditViewGlobal) {
		return nil, errors.Forbidden("insufficient role to view audit logs")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultAuditPageSize
	}
	if limit > repository.MaxAuditPageSize {
		limit = repository.MaxAuditPageSize
	}
	filter.Limit = limit

	logs, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &AuditPage{
		Logs:   s.enrich(ctx, logs),
		Total:  total,
		Limit:  limit,
		Offset: filter.Offset,
	}, nil
}

func (s *auditService) ForProduct(ctx context.Context, actor *model.User, productID uuid.UUID) ([]AuditEntry, error) {
	if !authz.Allowed(actor.Role, authz.CapAuditViewGlobal) {
		return nil, errors.Forbidden("insufficient role to view audit logs")
	}

	logs, err := s.auditRepo.FindForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, logs), nil
}

// enrich attaches actor snapshots, deduplicating lookups through the cache.
func (s *auditService) enrich(ctx context.Context, logs []model.AuditLog) []AuditEntry {
	entries := make([]AuditEntry, 0, len(logs))
	seen := make(map[uuid.UUID]*AuditActor)

	for _, log := range logs {
		actor, ok := seen[log.UserID]
		if !ok {
			actor = s.lookupActor(ctx, log.UserID)
			seen[log.UserID] = actor
		}
		entries = append(entries, AuditEntry{AuditLog: log, User: actor})
	}
	return entries
}

func (s *auditService) lookupActor(ctx context.Context, userID uuid.UUID) *AuditActor {
	cacheKey := auditActorCacheKeyPrefix + userID.String()
	if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
		var actor AuditActor
		if err := json.Unmarshal(data, &actor); err == nil {
			return &actor
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		// Actor may have been purged; the entry survives without it.
		return nil
	}

	actor := &AuditActor{Name: user.Name, Email: user.Email, Role: string(user.Role)}
	if data, err := json.Marshal(actor); err == nil {
		_ = s.cache.Set(ctx, cacheKey, data, auditActorCacheTTL)
	}
	return actor
}

// marshalChanges serializes a before/after pair for the changes column.
func marshalChanges(before, after interface{}) string {
	payload, err := json.Marshal(map[string]interface{}{
		"before": before,
		"after":  after,
	})
	if err != nil {
		return ""
	}
	return string(payload)
}
