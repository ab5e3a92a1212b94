package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	customerdomain "github.com/whizlyai/whizly/internal/customer/domain"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	paymentdomain "github.com/whizlyai/whizly/internal/payment/domain"
	"github.com/whizlyai/whizly/pkg/money"
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
	Type             string            `json:"type"`
	Message          string            `json:"message"`
	Errors           []ValidationError `json:"errors,omitempty"`
	RemainingBalance string            `json:"remaining_balance,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
	ErrOrgRequired        = errors.New("invalid_org_id")
	ErrRateLimited        = errors.New("rate_limited")
)

// fieldRule turns a domain sentinel into a single-field 400.
type fieldRule struct {
	err     error
	field   string
	message string
}

var fieldRules = []fieldRule{
	{ErrInvalidRequest, "request", "invalid request"},
	{ErrOrgRequired, "org_id", "X-Org-Id header must be a valid organization id"},

	{invoicedomain.ErrInvalidOrganization, "organization", "organization is required"},
	{invoicedomain.ErrInvalidAmount, "amount", "amount must be greater than zero with at most two decimal places"},
	{invoicedomain.ErrInvalidID, "id", "invalid id"},

	{customerdomain.ErrInvalidOrganization, "organization", "organization is required"},
	{customerdomain.ErrInvalidName, "name", "name is required"},
	{customerdomain.ErrInvalidEmail, "email", "email is not valid"},
	{customerdomain.ErrInvalidTaxID, "tax_id", "tax id is not a valid GSTIN"},
	{customerdomain.ErrInvalidID, "id", "invalid id"},
	{customerdomain.ErrInvalidPageToken, "page_token", "invalid page token"},

	{auditdomain.ErrInvalidOrganization, "organization", "organization is required"},
	{auditdomain.ErrInvalidPageToken, "page_token", "invalid page token"},
	{auditdomain.ErrInvalidTimeRange, "time_range", "start_at must not be after end_at"},
	{auditdomain.ErrInvalidAction, "action", "invalid action"},

	{paymentdomain.ErrInvalidPayload, "payload", "webhook payload is not valid JSON"},
	{paymentdomain.ErrInvalidEvent, "payload", "webhook event is malformed"},
}

// statusRule maps a group of sentinels onto one response.
type statusRule struct {
	errs    []error
	status  int
	typ     string
	message string
}

var statusRules = []statusRule{
	{
		errs:   []error{ErrUnauthorized, paymentdomain.ErrInvalidSignature},
		status: http.StatusUnauthorized, typ: "unauthorized", message: "unauthorized",
	},
	{
		errs:   []error{ErrConflict, invoicedomain.ErrConcurrencyConflict, paymentdomain.ErrEventInProgress},
		status: http.StatusConflict, typ: "conflict", message: "conflict",
	},
	{
		errs:   []error{ErrNotFound, invoicedomain.ErrInvoiceNotFound, customerdomain.ErrNotFound, paymentdomain.ErrProviderNotFound},
		status: http.StatusNotFound, typ: "not_found", message: "not found",
	},
	{
		errs:   []error{ErrRateLimited},
		status: http.StatusTooManyRequests, typ: "rate_limited", message: "too many requests",
	},
	{
		errs:   []error{ErrServiceUnavailable, invoicedomain.ErrPersistence, paymentdomain.ErrInvalidConfig},
		status: http.StatusServiceUnavailable, typ: "service_unavailable", message: "service unavailable",
	},
}

// ErrorHandlingMiddleware renders the last handler error unless the handler
// already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Written() {
			return
		}
		if last := c.Errors.Last(); last != nil {
			status, payload := mapError(last.Err)
			c.AbortWithStatusJSON(status, errorResponse{Error: payload})
		}
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
	return &ValidationErrors{Errors: []ValidationError{{Field: field, Code: code, Message: message}}}
}

func validationPayload(errs []ValidationError) errorPayload {
	return errorPayload{Type: "validation_error", Message: "validation error", Errors: errs}
}

var internalPayload = errorPayload{Type: "internal_error", Message: "internal server error"}

// mapError is the only place domain errors become HTTP responses.
func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalPayload
	}

	var verrs *ValidationErrors
	if errors.As(err, &verrs) && verrs != nil {
		return http.StatusBadRequest, validationPayload(verrs.Errors)
	}

	var invoiceErr *invoicedomain.ValidationError
	if errors.As(err, &invoiceErr) && invoiceErr != nil {
		fields := make([]ValidationError, 0, len(invoiceErr.Fields))
		for _, f := range invoiceErr.Fields {
			fields = append(fields, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		return http.StatusBadRequest, validationPayload(fields)
	}

	var overErr *invoicedomain.OverpaymentError
	if errors.As(err, &overErr) && overErr != nil {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:             "overpayment",
			Message:          "payment exceeds remaining balance",
			RemainingBalance: money.Format(overErr.Remaining),
		}
	}

	for _, rule := range fieldRules {
		if errors.Is(err, rule.err) {
			return http.StatusBadRequest, validationPayload([]ValidationError{{
				Field:   rule.field,
				Code:    rule.err.Error(),
				Message: rule.message,
			}})
		}
	}

	for _, rule := range statusRules {
		for _, target := range rule.errs {
			if errors.Is(err, target) {
				return rule.status, errorPayload{Type: rule.typ, Message: rule.message}
			}
		}
	}

	return http.StatusInternalServerError, internalPayload
}

// classifyErrorForLog returns the (type, code) pair logged per request.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
