package rule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Base errors of the automation engine
var (
	// ErrValidation marks malformed rule input at create/update time.
	ErrValidation = errors.New("validation error")

	// ErrStorage marks failures of the persistence medium.
	ErrStorage = errors.New("storage error")

	// ErrResourceFetch marks a triggering issue or pull request that could not be fetched.
	ErrResourceFetch = errors.New("resource fetch error")

	// ErrActionExecution marks a failed action. It is captured in results, never returned.
	ErrActionExecution = errors.New("action execution error")
)

// FieldValidationError maps a field name to what is wrong with it
type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e[k]))
	}
	return strings.Join(parts, "; ")
}

// NewValidationError returns a FieldValidationError marked as ErrValidation.
func NewValidationError(fields map[string]string) error {
	return errors.Mark(FieldValidationError(fields), ErrValidation)
}

// StorageError wraps err and marks it as ErrStorage.
func StorageError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrStorage)
}

// ResourceFetchError wraps err and marks it as ErrResourceFetch.
func ResourceFetchError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrResourceFetch)
}

// ActionError wraps err and marks it as ErrActionExecution.
func ActionError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrActionExecution)
}
