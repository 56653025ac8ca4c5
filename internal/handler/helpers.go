package handler

import (
	"errors"
	"net/http"
	"reflect"

	"contalink/internal/apierror"
	"contalink/internal/middleware"
	"contalink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
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
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("JSON invalido: "+err.Error(), "validation_error"))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("Parametros invalidos: "+err.Error(), "validation_error"))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, writing a 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("ID invalido", "validation_error"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps a ledger error kind to its HTTP status. Internal and
// integrity failures never expose their message.
func respondError(c *gin.Context, err error) {
	var e *service.Error
	if !errors.As(err, &e) {
		e = &service.Error{Kind: service.KindInterno, Code: "internal", Message: err.Error()}
	}

	switch e.Kind {
	case service.KindValidacion, service.KindNegocio:
		c.JSON(http.StatusUnprocessableEntity, &apierror.APIError{Detail: e.Message, Code: e.Code, Fields: e.Fields})
	case service.KindNoEncontro:
		c.JSON(http.StatusNotFound, apierror.NewCode(e.Message, e.Code))
	case service.KindConflicto:
		c.JSON(http.StatusConflict, apierror.NewCode(e.Message, e.Code))
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.NewCode("Error interno del servidor", string(service.KindInterno)))
	}
}
