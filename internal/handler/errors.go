// Package handler holds the Echo handlers. Handlers translate between HTTP
// and the service layer; statusFor is the single place that maps domain
// errors to status codes.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/repository"
	"github.com/iliyamo/inventory-api/internal/service"
)

// requestTimeout bounds the storage work done for one request.
const requestTimeout = 5 * time.Second

var (
	errCategoryNotFound = fmt.Errorf("category %w", repository.ErrNotFound)
	errProductNotFound  = fmt.Errorf("product %w", repository.ErrNotFound)
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrReusedOrInvalidToken),
		errors.Is(err, service.ErrExpiredToken),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the JSON error body for err. The text of internal errors is
// logged, never returned. A token whose subject no longer exists is
// reported like any other rejected token.
func fail(c echo.Context, err error) error {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		return c.JSON(status, echo.Map{"message": "internal server error"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(status, echo.Map{"message": service.ErrReusedOrInvalidToken.Error()})
	}
	return c.JSON(status, echo.Map{"message": err.Error()})
}

func invalidData(c echo.Context, errs []string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid data", "errors": errs})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// bind decodes the body into req and validates it. A non-nil result is
// the list of problems to report with invalidData.
func bind(c echo.Context, req interface{}) []string {
	if err := c.Bind(req); err != nil {
		return []string{"body must be valid JSON"}
	}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// pageParam reads ?page. Missing, unparsable and zero values mean the
// first page; negative values are passed through and rejected downstream.
func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n == 0 {
		return 1
	}
	return n
}
