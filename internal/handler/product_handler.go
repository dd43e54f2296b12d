package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fsvp/internal/model"
	"fsvp/internal/service"
)

// ProductHandler handles SKU lifecycle endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest represents a new SKU registration.
type CreateProductRequest struct {
	SKUNumber       string `json:"skuNumber" validate:"required"`
	ProductName     string `json:"productName" validate:"required"`
	Category        string `json:"category" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Manufacturer    string `json:"manufacturer" validate:"required"`
	CountryOfOrigin string `json:"countryOfOrigin" validate:"required"`
	IngredientsList string `json:"ingredientsList"`
	AllergenInfo    string `json:"allergenInfo"`
}

// UpdateProductRequest is a partial patch; omitted fields stay unchanged.
type UpdateProductRequest struct {
	SKUNumber       *string `json:"skuNumber"`
	ProductName     *string `json:"productName"`
	Category        *string `json:"category"`
	Description     *string `json:"description"`
	Manufacturer    *string `json:"manufacturer"`
	CountryOfOrigin *string `json:"countryOfOrigin"`
	IngredientsList *string `json:"ingredientsList"`
	AllergenInfo    *string `json:"allergenInfo"`
}

// ReviewRequest carries the reviewer's verdict.
type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Notes  string `json:"notes"`
}

// Create godoc
// @Summary Register a new product SKU
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product data"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productService.Create(c.Request().Context(), user, service.ProductCreateInput{
		SKUNumber:       req.SKUNumber,
		ProductName:     req.ProductName,
		Category:        req.Category,
		Description:     req.Description,
		Manufacturer:    req.Manufacturer,
		CountryOfOrigin: req.CountryOfOrigin,
		IngredientsList: req.IngredientsList,
		AllergenInfo:    req.AllergenInfo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// List godoc
// @Summary List products, optionally filtered by status
// @Tags products
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, pending, approved, rejected)
// @Success 200 {array} model.Product
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	products, err := h.productService.List(c.Request().Context(), user, model.ProductStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// ListMine godoc
// @Summary List the caller's own products
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/my [get]
func (h *ProductHandler) ListMine(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListMine(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// ListPending godoc
// @Summary List the review queue
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/pending [get]
func (h *ProductHandler) ListPending(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	products, err := h.productService.ListPending(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// Get godoc
// @Summary Get one product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Update godoc
// @Summary Update product fields and bump the version
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body UpdateProductRequest true "Fields to update"
// @Success 200 {object} model.Product
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	product, err := h.productService.Update(c.Request().Context(), user, id, service.ProductUpdateInput{
		SKUNumber:       req.SKUNumber,
		ProductName:     req.ProductName,
		Category:        req.Category,
		Description:     req.Description,
		Manufacturer:    req.Manufacturer,
		CountryOfOrigin: req.CountryOfOrigin,
		IngredientsList: req.IngredientsList,
		AllergenInfo:    req.AllergenInfo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Submit godoc
// @Summary Submit a draft product for review
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/submit [post]
func (h *ProductHandler) Submit(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Submit(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Review godoc
// @Summary Approve or reject a pending product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body ReviewRequest true "Verdict"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/review [post]
func (h *ProductHandler) Review(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productService.Review(c.Request().Context(), user, id, service.ReviewAction(req.Action), req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// ReviewHistory godoc
// @Summary List approve/reject decisions for a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {array} service.AuditEntry
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/review-history [get]
func (h *ProductHandler) ReviewHistory(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	history, err := h.productService.ReviewHistory(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}
