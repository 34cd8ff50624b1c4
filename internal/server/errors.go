package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// fromValidator converts struct tag failures into field errors. Field names
// follow the json tags registered on the validator.
func fromValidator(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Code:    fe.Tag(),
			Message: validatorMessage(fe),
		})
	}
	return &ValidationErrors{Errors: out}
}

// fieldPath drops the root struct name: "CreateRequest.lines[0].quantity"
// becomes "lines[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validatorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "invalid value"
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if vErr := fromValidator(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  asValidationErrors(vErr).Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the type and code logged with each failed request.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return payload.Type, target.Error()
		}
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationErrs = []error{
	ErrInvalidRequest,
	pagination.ErrInvalidPageToken,

	masterdomain.ErrInvalidID,
	masterdomain.ErrInvalidName,
	masterdomain.ErrInvalidPrice,
	masterdomain.ErrInvalidDisplayOrder,

	discountdomain.ErrInvalidID,
	discountdomain.ErrInvalidAudience,
	discountdomain.ErrInvalidRate,
	discountdomain.ErrInvalidThreshold,
	discountdomain.ErrInvalidAmount,
	discountdomain.ErrInvalidTierReference,

	taxdomain.ErrInvalidID,
	taxdomain.ErrInvalidName,
	taxdomain.ErrInvalidTaxRate,

	notedomain.ErrInvalidID,
	notedomain.ErrInvalidDate,
	notedomain.ErrInvalidQuantity,
	notedomain.ErrInvalidUnitPrice,
	notedomain.ErrInvalidRecognition,
	notedomain.ErrEmptyLines,
	notedomain.ErrUnknownSalesPerson,
	notedomain.ErrUnknownProduct,
	notedomain.ErrUnknownTaxRate,

	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidDate,
	invoicedomain.ErrInvalidPeriod,
	invoicedomain.ErrInvalidNote,
	invoicedomain.ErrNegativeAmount,
	invoicedomain.ErrInvalidDiscountRate,
	invoicedomain.ErrInvalidTaxRate,
	invoicedomain.ErrEmptyPatch,
}

var notFoundErrs = []error{
	ErrNotFound,
	masterdomain.ErrNotFound,
	discountdomain.ErrNotFound,
	taxdomain.ErrNotFound,
	notedomain.ErrNotFound,
	invoicedomain.ErrInvoiceNotFound,
	invoicedomain.ErrSalesPersonNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrs = []error{
	discountdomain.ErrDuplicateThreshold,
	discountdomain.ErrFloorTierRequired,
	notedomain.ErrDuplicateNoteNumber,
	invoicedomain.ErrGenerationInProgress,
	gorm.ErrDuplicatedKey,
}

// unprocessableErrs are well formed requests the current data cannot satisfy.
var unprocessableErrs = []error{
	invoicedomain.ErrNoDeliveryNotes,
	invoicedomain.ErrNoSalesPersons,
	invoicedomain.ErrNonUniformUnitPrice,
	discountdomain.ErrMissingFloorTier,
	taxdomain.ErrMissingTaxRate,
}

var domainErrors = concatErrs(validationErrs, notFoundErrs, conflictErrs, unprocessableErrs)

func concatErrs(groups ...[]error) []error {
	var out []error
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isValidationError(err error) bool    { return isAny(err, validationErrs) }
func isNotFoundError(err error) bool      { return isAny(err, notFoundErrs) }
func isConflictError(err error) bool      { return isAny(err, conflictErrs) }
func isUnprocessableError(err error) bool { return isAny(err, unprocessableErrs) }

func validationErrorCode(err error) string {
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "invalid_page_token":
		return "page_token"
	case "empty_patch", "empty_lines":
		return "request"
	case "unknown_sales_person":
		return "sales_person_id"
	case "unknown_product":
		return "product_id"
	case "unknown_tax_rate":
		return "tax_rate_id"
	case "invalid_tier_reference":
		return "discount_rate_id"
	case "negative_amount":
		return "amount"
	}
	return strings.TrimPrefix(code, "invalid_")
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		return "invoice not found"
	case errors.Is(err, invoicedomain.ErrSalesPersonNotFound):
		return "sales person not found"
	default:
		return "not found"
	}
}
