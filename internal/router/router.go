package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fsvp/internal/auth"
	"fsvp/internal/config"
	"fsvp/internal/errors"
	"fsvp/internal/handler"
	"fsvp/internal/service"
)

// CustomValidator wraps go-playground validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the given struct.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userService service.UserService,
	authHandler *handler.AuthHandler,
	vendorHandler *handler.VendorHandler,
	productHandler *handler.ProductHandler,
	documentHandler *handler.DocumentHandler,
	auditHandler *handler.AuditHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), loadActor(userService))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", authHandler.Me)

	// Vendor routes
	secured.POST("/vendors", vendorHandler.Create)
	secured.GET("/vendors", vendorHandler.List)
	secured.GET("/vendors/me", vendorHandler.GetMine)
	secured.GET("/vendors/:id", vendorHandler.Get)
	secured.PUT("/vendors/:id", vendorHandler.Update)

	// Product lifecycle routes
	secured.POST("/products", productHandler.Create)
	secured.GET("/products", productHandler.List)
	secured.GET("/products/my", productHandler.ListMine)
	secured.GET("/products/pending", productHandler.ListPending)
	secured.GET("/products/:id", productHandler.Get)
	secured.PUT("/products/:id", productHandler.Update)
	secured.POST("/products/:id/submit", productHandler.Submit)
	secured.POST("/products/:id/review", productHandler.Review)
	secured.GET("/products/:id/review-history", productHandler.ReviewHistory)

	// Document routes
	secured.POST("/products/:productId/documents", documentHandler.Upload)
	secured.GET("/products/:productId/documents", documentHandler.ListByProduct)
	secured.GET("/documents/:id/download", documentHandler.Download)
	secured.POST("/documents/:id/sign", documentHandler.Sign)

	// Audit trail routes
	secured.GET("/audit/logs", auditHandler.List)
	secured.GET("/audit/logs/entity/:entityType/:entityId", auditHandler.ByEntity)
	secured.GET("/audit/logs/user/:userId", auditHandler.ByUser)
	secured.GET("/audit/product/:productId", auditHandler.ForProduct)
}

// loadActor resolves the JWT claims into a full user record so handlers and
// services work with the current role, not the one minted into the token.
func loadActor(userService service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthenticated(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return unauthenticated(c)
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return unauthenticated(c)
			}

			user, err := userService.GetByID(c.Request().Context(), userID)
			if err != nil {
				return unauthenticated(c)
			}

			c.Set(handler.ActorContextKey, user)
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "authentication required",
		Code:  "UNAUTHENTICATED",
	})
}
