package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fsvp/internal/errors"
	"fsvp/internal/model"
)

// ActorContextKey is where the load-user middleware stores the caller.
const ActorContextKey = "actor"

// actor returns the authenticated user loaded by the router middleware.
func actor(c echo.Context) (*model.User, error) {
	user, ok := c.Get(ActorContextKey).(*model.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "authentication required",
			Code:  "UNAUTHENTICATED",
		})
	}
	return user, nil
}

// respondError maps a service error onto the response taxonomy.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// pathUUID parses a uuid path parameter.
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "VALIDATION_ERROR",
		})
	}
	return id, nil
}
