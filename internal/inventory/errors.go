package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is the root of every "record does not exist" error
	ErrNotFound         = errors.New("not found")
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	ErrCategoryExists = errors.New("category name already exists")
	ErrCategoryInUse  = errors.New("category is referenced by products")
)

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field; the first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// CategoryInUseError is returned when deleting a category that products still reference.
type CategoryInUseError struct {
	CategoryID int64
	Products   int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category %d is referenced by %d product(s)", e.CategoryID, e.Products)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}
