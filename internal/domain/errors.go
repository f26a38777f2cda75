package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPersistence marks failures raised at the persistence port boundary.
// Callers own retry policy; the operation leaves state at its last committed point.
var ErrPersistence = errors.New("persistence error")

// ValidationCode machine-readable kind of a validation error
type ValidationCode string

const (
	CodeBusinessClosed     ValidationCode = "business_closed"
	CodeStartsOutsideHours ValidationCode = "starts_outside_business_hours"
	CodeEndsOutsideHours   ValidationCode = "ends_outside_business_hours"
	CodeInvalidShift       ValidationCode = "invalid_shift"
	CodeInvalidBreak       ValidationCode = "invalid_break"
	CodeBreakOutsideShift  ValidationCode = "break_outside_shift"
	CodeBreakDuration      ValidationCode = "break_duration"
	CodeBranchOverlap      ValidationCode = "branch_overlap"
	CodeSameBranchOverlap  ValidationCode = "same_branch_overlap"
	CodeInvalidTimeFormat  ValidationCode = "invalid_time_format"
	CodeGuardDenied        ValidationCode = "guard_denied"
	CodeInvalidPayment     ValidationCode = "invalid_payment"
	CodeEmptySelection     ValidationCode = "empty_selection"
)

// ValidationError is an expected, non-fatal business validation failure.
// It is returned as data so that a caller can surface every issue at once.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
	// Optional location of the problem inside a weekly schedule
	Weekday    *string `json:"weekday,omitempty"`
	ShiftIndex *int    `json:"shiftIndex,omitempty"`
	BranchID   *int64  `json:"branchId,omitempty"`
}

// Error implements error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationErrors is a list of validation errors that can travel as a single error
type ValidationErrors []ValidationError

// Error implements error
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// Codes returns the code of every error, in order
func (e ValidationErrors) Codes() []string {
	codes := make([]string, len(e))
	for i, v := range e {
		codes[i] = string(v.Code)
	}
	return codes
}
