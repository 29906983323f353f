// Package transport provides HTTP request/response types for the accounts domain.
package transport

import (
	"time"

	"github.com/pendergraft/kontocheck/internal/accounts/domain"
)

// ValidateRequest is the HTTP request body for one validation.
type ValidateRequest struct {
	Method  string `json:"method"`
	Account string `json:"account"`
	Bank    string `json:"bank,omitempty"`
}

// ToDomain converts ValidateRequest to domain.ValidateRequest.
func (r ValidateRequest) ToDomain() domain.ValidateRequest {
	return domain.ValidateRequest{
		Method:  r.Method,
		Account: r.Account,
		Bank:    r.Bank,
	}
}

// ValidateResponse is the HTTP response body for one validation.
type ValidateResponse struct {
	Method      string `json:"method"`
	Account     string `json:"account"`
	Bank        string `json:"bank,omitempty"`
	Valid       bool   `json:"valid"`
	Outcome     string `json:"outcome"`
	Alternative *int   `json:"alternative,omitempty"`
	Exception   bool   `json:"exception"`
}

// BatchRequest is the HTTP request body for a batch validation.
type BatchRequest struct {
	Items []ValidateRequest `json:"items"`
}

// BatchResponse is the HTTP response body for a batch validation.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult carries either the result fields or an error.
type BatchResult struct {
	*ValidateResponse
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the payload of an error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope of every error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MethodResponse describes a registered method.
type MethodResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// MethodListResponse wraps the method list.
type MethodListResponse struct {
	Data []MethodResponse `json:"data"`
}

// CheckResponse is one validation log entry.
type CheckResponse struct {
	ID          string    `json:"id"`
	Method      string    `json:"method"`
	Account     string    `json:"account"`
	Valid       bool      `json:"valid"`
	Outcome     string    `json:"outcome"`
	Alternative *int      `json:"alternative,omitempty"`
	KeyID       string    `json:"keyId,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Pagination describes a page of results.
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CheckListResponse wraps a page of validation log entries.
type CheckListResponse struct {
	Data       []CheckResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

func alternative(i int) *int {
	if i < 0 {
		return nil
	}
	return &i
}

// FromDomainResult converts a domain result.
func FromDomainResult(r *domain.ValidateResult) *ValidateResponse {
	return &ValidateResponse{
		Method:      r.Method,
		Account:     r.Account,
		Bank:        r.Bank,
		Valid:       r.Valid,
		Outcome:     r.Outcome,
		Alternative: alternative(r.Alternative),
		Exception:   r.Exception,
	}
}

// FromDomainMethod converts a domain method description.
func FromDomainMethod(m domain.MethodInfo) MethodResponse {
	return MethodResponse{
		Code:        m.Code,
		Description: m.Description,
		Kind:        m.Kind,
	}
}

// FromDomainCheck converts a validation log entry.
func FromDomainCheck(c domain.Check) CheckResponse {
	return CheckResponse{
		ID:          c.ID,
		Method:      c.Method,
		Account:     c.Account,
		Valid:       c.Valid,
		Outcome:     c.Outcome,
		Alternative: alternative(c.Alternative),
		KeyID:       c.KeyID,
		RequestID:   c.RequestID,
		CreatedAt:   c.CreatedAt,
	}
}
