package server

import (
	"errors"
	"net/http"
	"testing"

	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
	invoicedomain "github.com/iitsoft/asovec/internal/invoice/domain"
	projectdomain "github.com/iitsoft/asovec/internal/project/domain"
	readingdomain "github.com/iitsoft/asovec/internal/reading/domain"
	residencedomain "github.com/iitsoft/asovec/internal/residence/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"Validation", projectdomain.ErrInvalidName, http.StatusBadRequest},
		{"SequenceRule", readingdomain.ErrPeriodGap, http.StatusBadRequest},
		{"DuplicateRun", billingrundomain.ErrDuplicatePeriod, http.StatusConflict},
		{"NotFound", readingdomain.ErrMeterNotFound, http.StatusNotFound},
		{"Operational", billingrundomain.ErrMissingJournal, http.StatusUnprocessableEntity},
		{"PaymentGuard", invoicedomain.ErrPaymentExceedsResidual, http.StatusUnprocessableEntity},
		{"PendingBalance", residencedomain.ErrPendingBalance, http.StatusUnprocessableEntity},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestMapErrorPayloads(t *testing.T) {
	status, payload := mapError(readingdomain.ErrReadingBelowPrevious)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	assert.Equal(t, "reading_below_previous", payload.Errors[0].Code)

	status, payload = mapError(billingrundomain.ErrNothingToBill)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "nothing_to_bill", payload.Message)

	status, payload = mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", payload.Message)
}

func TestMapErrorValidationErrors(t *testing.T) {
	status, payload := mapError(newValidationError("request", "invalid_request", "invalid request"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "request", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	errorType, code := classifyErrorForLog(readingdomain.ErrPeriodGap)
	assert.Equal(t, "validation_error", errorType)
	assert.Equal(t, "period_gap", code)

	errorType, code = classifyErrorForLog(billingrundomain.ErrDuplicatePeriod)
	assert.Equal(t, "conflict", errorType)
	assert.Equal(t, "duplicate_billing_period", code)

	errorType, _ = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", errorType)
}
