package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	catalogdomain "github.com/iitsoft/asovec/internal/catalog/domain"
	customerdomain "github.com/iitsoft/asovec/internal/customer/domain"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	journaldomain "github.com/iitsoft/asovec/internal/journal/domain"
	meterdomain "github.com/iitsoft/asovec/internal/meter/domain"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
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
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, billingrundomain.ErrDuplicatePeriod):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isOperationalError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "operational_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidID),
		errors.Is(err, projectdomain.ErrNegativeTariff),
		errors.Is(err, projectdomain.ErrDuplicateName),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, residencedomain.ErrInvalidCode),
		errors.Is(err, residencedomain.ErrInvalidID),
		errors.Is(err, residencedomain.ErrInvalidProjectID),
		errors.Is(err, residencedomain.ErrInvalidCustomerID),
		errors.Is(err, residencedomain.ErrInvalidCatalogItemID),
		errors.Is(err, residencedomain.ErrNegativePrice),
		errors.Is(err, residencedomain.ErrDuplicateCode),
		errors.Is(err, residencedomain.ErrDuplicateOverride),
		errors.Is(err, meterdomain.ErrInvalidName),
		errors.Is(err, meterdomain.ErrInvalidID),
		errors.Is(err, meterdomain.ErrInvalidResidenceID),
		errors.Is(err, readingdomain.ErrInvalidID),
		errors.Is(err, readingdomain.ErrInvalidMeterID),
		errors.Is(err, readingdomain.ErrDuplicateInitial),
		errors.Is(err, readingdomain.ErrMissingPeriod),
		errors.Is(err, readingdomain.ErrDuplicatePeriod),
		errors.Is(err, readingdomain.ErrPeriodGap),
		errors.Is(err, readingdomain.ErrReadingBelowPrevious),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidKind),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrNegativeListPrice),
		errors.Is(err, catalogdomain.ErrDuplicateName),
		errors.Is(err, catalogdomain.ErrDuplicateTag),
		errors.Is(err, catalogdomain.ErrItemNotService),
		errors.Is(err, journaldomain.ErrInvalidCode),
		errors.Is(err, journaldomain.ErrInvalidName),
		errors.Is(err, journaldomain.ErrInvalidID),
		errors.Is(err, journaldomain.ErrDuplicateCode),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, billingrundomain.ErrInvalidID),
		errors.Is(err, billingrundomain.ErrInvalidProjectID),
		errors.Is(err, billingrundomain.ErrInvalidPeriod):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, residencedomain.ErrNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrMeterNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, journaldomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, billingrundomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isOperationalError(err error) bool {
	switch {
	case errors.Is(err, billingrundomain.ErrNotDraft),
		errors.Is(err, billingrundomain.ErrNotPosted),
		errors.Is(err, billingrundomain.ErrResidenceMissingCustomer),
		errors.Is(err, billingrundomain.ErrMissingJournal),
		errors.Is(err, billingrundomain.ErrNoAutoBilledItems),
		errors.Is(err, billingrundomain.ErrNoResidences),
		errors.Is(err, billingrundomain.ErrNothingToBill),
		errors.Is(err, billingrundomain.ErrResidenceNotInProject),
		errors.Is(err, billingrundomain.ErrGenerationFailed),
		errors.Is(err, invoicedomain.ErrInvoiceNotDraft),
		errors.Is(err, invoicedomain.ErrInvoiceNotPosted),
		errors.Is(err, invoicedomain.ErrPaymentExceedsResidual),
		errors.Is(err, residencedomain.ErrPendingBalance),
		errors.Is(err, residencedomain.ErrNoMeter):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation_error", errorCode(err)
	case errors.Is(err, billingrundomain.ErrDuplicatePeriod):
		return "conflict", errorCode(err)
	case isNotFoundError(err):
		return "not_found", errorCode(err)
	case isOperationalError(err):
		return "operational_error", errorCode(err)
	default:
		return "internal_error", "internal_error"
	}
}

func errorCode(err error) string {
	if vErr := asValidationErrors(err); vErr != nil && len(vErr.Errors) > 0 {
		return vErr.Errors[0].Code
	}
	return err.Error()
}
