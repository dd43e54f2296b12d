package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fsvp/internal/model"
	"fsvp/internal/service"
)

// VendorHandler handles supplier profile endpoints.
type VendorHandler struct {
	vendorService service.VendorService
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// VendorRequest represents a create or update request for a supplier profile.
type VendorRequest struct {
	CompanyName        string `json:"companyName"`
	Country            string `json:"country"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	VerificationStatus string `json:"verificationStatus" validate:"omitempty,oneof=unverified pending verified"`
}

// Create godoc
// @Summary Create the caller's supplier profile
// @Tags vendors
// @Accept json
// @Produce json
// @Param request body VendorRequest true "Vendor profile"
// @Success 201 {object} model.Vendor
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /vendors [post]
func (h *VendorHandler) Create(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	var req VendorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vendor, err := h.vendorService.CreateProfile(c.Request().Context(), user, service.VendorProfileInput{
		CompanyName: req.CompanyName,
		Country:     req.Country,
		Address:     req.Address,
		Phone:       req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, vendor)
}

// GetMine godoc
// @Summary Get the caller's supplier profile
// @Tags vendors
// @Produce json
// @Success 200 {object} model.Vendor
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /vendors/me [get]
func (h *VendorHandler) GetMine(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	vendor, err := h.vendorService.GetMine(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendor)
}

// List godoc
// @Summary List all vendors
// @Tags vendors
// @Produce json
// @Success 200 {array} model.Vendor
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /vendors [get]
func (h *VendorHandler) List(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	vendors, err := h.vendorService.List(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendors)
}

// Get godoc
// @Summary Get one vendor
// @Tags vendors
// @Produce json
// @Param id path string true "Vendor ID"
// @Success 200 {object} model.Vendor
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /vendors/{id} [get]
func (h *VendorHandler) Get(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	vendor, err := h.vendorService.GetByID(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendor)
}

// Update godoc
// @Summary Update a vendor profile
// @Tags vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID"
// @Param request body VendorRequest true "Fields to update"
// @Success 200 {object} model.Vendor
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /vendors/{id} [put]
func (h *VendorHandler) Update(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req VendorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vendor, err := h.vendorService.Update(c.Request().Context(), user, id, service.VendorProfileInput{
		CompanyName:        req.CompanyName,
		Country:            req.Country,
		Address:            req.Address,
		Phone:              req.Phone,
		VerificationStatus: model.VerificationStatus(req.VerificationStatus),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vendor)
}
