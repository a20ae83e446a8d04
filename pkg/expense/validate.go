package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount constraints: at most 10 significant digits total, of which at most
// 2 are fractional. NUMERIC(10,2) in the schema enforces the same bound.
const (
	amountMaxIntegerDigits = 8
	amountScale            = 2
)

var amountLimit = decimal.New(1, amountMaxIntegerDigits) // 10^8

// FieldError describes a single invalid field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors is a non-empty list of field-level failures.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validateAmount(a decimal.Decimal) *FieldError {
	if !a.Round(amountScale).Equal(a) {
		return &FieldError{Field: "amount", Reason: "no more than 2 decimal places"}
	}
	if a.Abs().GreaterThanOrEqual(amountLimit) {
		return &FieldError{
			Field:  "amount",
			Reason: fmt.Sprintf("no more than %d digits in total", amountMaxIntegerDigits+amountScale),
		}
	}
	return nil
}

func validateCategory(c Category) *FieldError {
	if !c.Valid() {
		return &FieldError{Field: "category", Reason: fmt.Sprintf("%q is not a valid choice", string(c))}
	}
	return nil
}

func validateDate(d time.Time) *FieldError {
	if d.IsZero() {
		return &FieldError{Field: "date", Reason: "this field is required"}
	}
	return nil
}
