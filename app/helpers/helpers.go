package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type contextKey string

const requestContextKey contextKey = "requestContext"

// RequestContext is the caller identity resolved once per request from the
// session cookie.
type RequestContext struct {
	UserID string
	Role   models.Role
}

func (rc RequestContext) IsAdmin() bool {
	return rc.Role == models.RoleAdmin
}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFrom reports false for anonymous requests.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey).(RequestContext)
	if !ok || rc.UserID == "" {
		return RequestContext{}, false
	}
	return rc, true
}

// NewValidator reports field errors under their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must contain only digits", field)
		case "url":
			errorMessages[field] = fmt.Sprintf("%s must be a valid URL", field)
		case "len":
			errorMessages[field] = fmt.Sprintf("%s must be exactly %s characters", field, err.Param())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check", field, err.Tag())
		}
	}
	return errorMessages
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("request body is not valid JSON")
	}
	return nil
}

// Bind decodes and validates a JSON request body.
func Bind(r *http.Request, v *validator.Validate, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// WriteError answers with the status of err's kind and a client-safe message.
// Failures the client cannot fix are logged with their cause.
func WriteError(rnd *render.Render, w http.ResponseWriter, log *logrus.Entry, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		rnd.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": FormatValidationErrors(verrs),
		})
		return
	}

	kind := apperr.KindOf(err)
	status := kind.Status()
	if status >= http.StatusInternalServerError && log != nil {
		log.WithField("kind", kind.String()).Error(err)
	}
	rnd.JSON(w, status, map[string]string{"error": apperr.PublicMessage(err)})
}

func QueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
