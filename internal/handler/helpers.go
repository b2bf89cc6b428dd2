package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/tkamphefner/Inventory/internal/apierror"
	"github.com/tkamphefner/Inventory/internal/middleware"
	"github.com/tkamphefner/Inventory/internal/service"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeError maps sentinel service errors onto HTTP statuses. Anything
// unrecognised becomes a context error handled by the ErrorHandler middleware.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, serviceerr.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, serviceerr.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, serviceerr.ErrInvalidState),
		errors.Is(err, serviceerr.ErrDuplicateKey):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, serviceerr.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, serviceerr.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, serviceerr.ErrInactiveAccount):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

// actorFrom extracts the authenticated identity and its origin address
// for the service layer and the audit trail.
func actorFrom(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	actor := service.Actor{Origin: c.ClientIP()}
	if claims != nil {
		actor.ID = claims.UserID
	}
	return actor
}
