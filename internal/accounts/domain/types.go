// Package domain contains the business logic for account number validation.
package domain

import "time"

// NoAlternative is reported when no chain entry decided a result.
const NoAlternative = -1

// ValidateRequest asks for one account number to be checked.
type ValidateRequest struct {
	Method  string `json:"method"`
	Account string `json:"account"`
	Bank    string `json:"bank,omitempty"`
}

// ValidateResult is the outcome of one validation.
type ValidateResult struct {
	Method      string
	Account     string // ten digits, zero padded
	Bank        string
	Valid       bool
	Outcome     string
	Alternative int
	Exception   bool
}

// BatchItem holds either a result or the error for one batch entry.
type BatchItem struct {
	Result *ValidateResult
	Err    error
}

// Caller identifies who asked for a validation.
type Caller struct {
	KeyID     string
	RequestID string
}

// MethodInfo describes a registered check-digit method.
type MethodInfo struct {
	Code        string
	Description string
	Kind        string
}

// Check is an entry of the validation log.
type Check struct {
	ID          string
	Method      string
	Account     string // masked
	Valid       bool
	Outcome     string
	Alternative int
	KeyID       string
	RequestID   string
	CreatedAt   time.Time
}

// CheckFilter contains filter options for listing checks.
type CheckFilter struct {
	Method string
}

// PaginationParams contains pagination options.
type PaginationParams struct {
	Limit  int
	Cursor string
}

// CheckList contains paginated validation log entries.
type CheckList struct {
	Checks     []Check
	HasMore    bool
	NextCursor string
}
