package handler

import (
	"errors"
	"net/http"
	"reflect"

	"jewelpos/internal/apierror"
	"jewelpos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// gt=0 work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Set(middleware.ErrorCodeKey, "INVALID_JSON")
		c.JSON(http.StatusBadRequest, &apierror.APIError{Detail: "invalid JSON: " + err.Error(), Code: "INVALID_JSON"})
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.Set(middleware.ErrorCodeKey, "VALIDATION_FAILED")
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes the envelope for a service error. Errors that are not
// domain errors are attached to the context (ErrorHandler logs them) and
// answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var ae *apierror.Error
	if !errors.As(err, &ae) || ae.Kind == apierror.KindInternal {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}
	c.Set(middleware.ErrorCodeKey, ae.Code)
	if ae.Kind == apierror.KindUnavailable {
		log.Warn().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("code", ae.Code).
			Err(ae.Err).
			Msg("storage unavailable")
	}
	c.JSON(ae.Kind.HTTPStatus(), apierror.FromError(ae))
}
