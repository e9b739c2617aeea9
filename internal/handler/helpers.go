package handler

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/middleware"
	"github.com/MILO-debug/POS/internal/service"
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

// respondError maps the service error taxonomy onto status codes. Anything
// unclassified becomes an opaque 500; the detail is logged, not exposed.
func respondError(c *gin.Context, err error) {
	switch {
	case apierror.IsValidation(err):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case apierror.IsNotFound(err):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case apierror.IsInvariant(err):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case apierror.IsOffline(err):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

// sessionFrom builds the service session from the verified token claims.
func sessionFrom(c *gin.Context) service.Session {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Session{}
	}
	return service.Session{
		UserID:       claims.UserID,
		Username:     claims.Username,
		Role:         claims.Role,
		EmployeeName: claims.EmployeeName,
	}
}
