package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fsvp/internal/errors"
	"fsvp/internal/model"
	"fsvp/internal/repository"
	"fsvp/internal/service"
)

// AuditHandler exposes the audit trail read endpoints.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List godoc
// @Summary List audit logs with filters and pagination
// @Tags audit
// @Produce json
// @Param limit query int false "Page size (max 500, default 100)"
// @Param offset query int false "Offset"
// @Param action query string false "Filter by action"
// @Param entityType query string false "Filter by entity type"
// @Param startDate query string false "RFC3339 lower bound"
// @Param endDate query string false "RFC3339 upper bound"
// @Success 200 {object} service.AuditPage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /audit/logs [get]
func (h *AuditHandler) List(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	filter := repository.AuditLogFilter{
		Action:     model.AuditAction(c.QueryParam("action")),
		EntityType: c.QueryParam("entityType"),
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return badQueryParam(c, "limit")
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return badQueryParam(c, "offset")
		}
		filter.Offset = offset
	}
	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badQueryParam(c, "startDate")
		}
		filter.StartDate = &t
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badQueryParam(c, "endDate")
		}
		filter.EndDate = &t
	}

	page, err := h.auditService.List(c.Request().Context(), user, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// ByEntity godoc
// @Summary List audit logs for one entity
// @Tags audit
// @Produce json
// @Param entityType path string true "Entity type"
// @Param entityId path string true "Entity ID"
// @Success 200 {array} service.AuditEntry
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /audit/logs/entity/{entityType}/{entityId} [get]
func (h *AuditHandler) ByEntity(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	entityID, err := pathUUID(c, "entityId")
	if err != nil {
		return err
	}

	logs, err := h.auditService.ByEntity(c.Request().Context(), user, c.Param("entityType"), entityID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// ByUser godoc
// @Summary List audit logs written by one user
// @Tags audit
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} service.AuditEntry
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /audit/logs/user/{userId} [get]
func (h *AuditHandler) ByUser(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}

	logs, err := h.auditService.ByUser(c.Request().Context(), user, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// ForProduct godoc
// @Summary Full audit trail for a product, its documents and signatures
// @Tags audit
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {array} service.AuditEntry
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /audit/product/{productId} [get]
func (h *AuditHandler) ForProduct(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}

	logs, err := h.auditService.ForProduct(c.Request().Context(), user, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func badQueryParam(c echo.Context, name string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid " + name,
		Code:  "VALIDATION_ERROR",
	})
}
