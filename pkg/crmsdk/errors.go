package crmsdk

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes returned by the API in the "error" (or "code") field.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeValidation     = "validation_failed"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeInvalidGrant   = "invalid_grant"
	ErrorCodeMFARequired    = "mfa_required"
	ErrorCodeInvalidOTP     = "invalid_otp"
	ErrorCodeForbidden      = "forbidden"
	ErrorCodeNoCompany      = "no_company"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeSlugTaken      = "slug_taken"
	ErrorCodeEmailTaken     = "email_taken"
	ErrorCodeStageNotEmpty  = "stage_not_empty"
	ErrorCodeLastOwner      = "last_owner"
	ErrorCodeRateLimited    = "rate_limit_exceeded"
	ErrorCodeServerError    = "server_error"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	// Details holds per-field messages of validation failures.
	Details map[string]string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("crm api: %d %s", e.StatusCode, e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Details[k]
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// errorBody accepts both the plain and the validation error shapes.
type errorBody struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Code             string            `json:"code"`
	Message          string            `json:"message"`
	Details          map[string]string `json:"details"`
}

func (b errorBody) apiError(status int) *APIError {
	e := &APIError{StatusCode: status, Code: b.Error, Description: b.ErrorDescription, Details: b.Details}
	if e.Code == "" {
		e.Code = b.Code
	}
	if e.Description == "" {
		e.Description = b.Message
	}
	return e
}
