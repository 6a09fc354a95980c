// Package validate performs structural and referential validation of the
// six policy module document kinds, and implements the publish gate that
// decides whether a baseline may go live.
//
// Validators never return Go errors: every input, including a completely
// malformed payload, yields a ValidationResult. Error codes are a stable
// public contract; callers branch on them.
package validate

import (
	"fmt"

	"github.com/meridian-grc/keel/pkg/canonical"
)

// Severity splits issues into blocking errors and advisory warnings.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// ValidationError is one structural issue found in a module document.
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
}

// ValidationResult is the outcome of validating one module document.
// IsValid and IsComplete are independent axes: a document can be
// structurally sound yet declare nothing, or neither.
type ValidationResult struct {
	IsValid    bool              `json:"isValid"`
	IsComplete bool              `json:"isComplete"`
	Errors     []ValidationError `json:"errors"`
	Warnings   []ValidationError `json:"warnings"`
}

func newResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}
}

func (r *ValidationResult) addError(field, code, format string, args ...any) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Severity: SeverityError,
	})
}

func (r *ValidationResult) addWarning(field, code, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Severity: SeverityWarning,
	})
}

// HasCode reports whether any error or warning carries the given code.
func (r *ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ResultHash is the canonical digest of a result. Identical (kind, payload)
// inputs always produce identical hashes.
func ResultHash(r *ValidationResult) (string, error) {
	return canonical.Hash(r)
}

func invalidPayload(detail string) *ValidationResult {
	r := newResult()
	r.addError("", CodeInvalidPayload, "payload is not a well-formed module document: %s", detail)
	return r
}
