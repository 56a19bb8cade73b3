package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var vpaPattern = regexp.MustCompile(`^[A-Za-z0-9._\-]+@[A-Za-z0-9.\-]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func transactionValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("vpa", func(fl validator.FieldLevel) bool {
			return IsVPA(fl.Field().String())
		})
		_ = v.RegisterValidation("txn_status", func(fl validator.FieldLevel) bool {
			s := Status(fl.Field().String())
			return s.Is(StatusSuccess) || s.Is(StatusFailed) || s.Is(StatusPending)
		})
		validate = v
	})
	return validate
}

// IsVPA reports whether s has the user@provider shape of a virtual payment address.
func IsVPA(s string) bool {
	return vpaPattern.MatchString(s)
}

// Validate checks the invariants a displayable transaction must hold.
func (t Transaction) Validate() error {
	if err := transactionValidator().Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			parts := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid transaction %q: %s", t.ID, strings.Join(parts, ", "))
		}
		return fmt.Errorf("invalid transaction %q: %w", t.ID, err)
	}
	return nil
}

// ValidTransactions returns the transactions that pass Validate, preserving
// order, along with the validation errors for the ones dropped.
func ValidTransactions(transactions []Transaction) ([]Transaction, []error) {
	valid := make([]Transaction, 0, len(transactions))
	var errs []error
	for _, txn := range transactions {
		if err := txn.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, txn)
	}
	return valid, errs
}
