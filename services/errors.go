package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrConflict           = errors.New("record already exists")
	ErrDispatch           = errors.New("message dispatch failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldViolation names one invalid input field and the rule it broke.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError lists every violation found in an input, not just the first.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" ("+v.Rule+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Add(field, rule string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Rule: rule})
}

// Err returns nil when no violation was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

func invalid(field, rule string) error {
	ve := &ValidationError{}
	ve.Add(field, rule)
	return ve
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DeletionError reports a cascade delete that failed and was rolled back.
type DeletionError struct {
	Entity string
	ID     string
	Err    error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s %s rolled back: %v", e.Entity, e.ID, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure such as lost connectivity.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeError passes typed service errors through and classifies the rest.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	switch {
	case errors.As(err, &ve), errors.As(err, &nf):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return &StoreError{Op: op, Err: err}
}

func notFound(entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &StoreError{Op: "find " + entity, Err: err}
}
