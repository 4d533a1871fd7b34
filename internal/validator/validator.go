// Package validator checks form input before it reaches the ledger and
// reports every problem per field.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"finboard/internal/core"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := core.ParseYearMonth(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := core.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := core.ParseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
	})
	return v
}

// TransactionInput is the raw transaction form as received from a client.
type TransactionInput struct {
	Amount      string `json:"amount" validate:"required,amount"`
	Date        string `json:"date" validate:"required,isodate"`
	Description string `json:"description" validate:"required,notblank,max=500"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Category    string `json:"category" validate:"required,notblank,max=100"`
}

// BudgetInput is the raw budget form as received from a client.
type BudgetInput struct {
	Category string `json:"category" validate:"required,notblank,max=100"`
	Amount   string `json:"amount" validate:"required,amount"`
	Month    string `json:"month" validate:"required,yearmonth"`
}

// Error lists the problems found in one input, keyed by field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Transaction validates in and converts it to the ledger's form type.
func Transaction(in TransactionInput) (core.TransactionForm, error) {
	if err := check(in); err != nil {
		return core.TransactionForm{}, err
	}
	return core.TransactionForm{
		Amount:      in.Amount,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Type:        core.TransactionType(in.Type),
		Category:    in.Category,
	}, nil
}

// Budget validates in and converts it to the ledger's form type.
func Budget(in BudgetInput) (core.BudgetForm, error) {
	if err := check(in); err != nil {
		return core.BudgetForm{}, err
	}
	return core.BudgetForm{
		Category: in.Category,
		Amount:   in.Amount,
		Month:    in.Month,
	}, nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		if _, seen := out.Fields[e.Field()]; !seen {
			out.Fields[e.Field()] = fieldErrorToString(e)
		}
	}
	return out
}

func fieldErrorToString(e validator.FieldError) string {
	label := strings.ToUpper(e.Field()[:1]) + e.Field()[1:]
	switch e.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "amount":
		return fmt.Sprintf("%s must be a number greater than 0", label)
	case "yearmonth":
		return fmt.Sprintf("%s must be in YYYY-MM format", label)
	case "isodate":
		return fmt.Sprintf("%s must be in YYYY-MM-DD format", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
