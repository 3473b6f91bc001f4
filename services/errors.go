package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service layer. Controllers map these to
// HTTP status codes and error envelope codes.
var (
	// ErrNotFound means the referenced order, user or notification does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden means the caller lacks ownership or the role the operation requires.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrInvalidTransition means the status change is not legal from the current status.
	ErrInvalidTransition = errors.New("status transition not allowed from current status")
	// ErrInvalidStatus means the supplied status is not a member of the fixed state set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrConflict means the order was modified concurrently and the caller should retry.
	ErrConflict = errors.New("order was modified concurrently")
)

// ValidationError reports a missing or malformed field. Detected before any
// mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PartialFanoutError reports that the primary mutation committed but the
// message/notification fan-out failed afterwards. The mutation is not
// rolled back; callers must surface the partial outcome instead of
// retrying the whole operation.
type PartialFanoutError struct {
	Op  string
	Err error
}

func (e *PartialFanoutError) Error() string {
	return fmt.Sprintf("%s succeeded but customer notification failed: %v", e.Op, e.Err)
}

func (e *PartialFanoutError) Unwrap() error {
	return e.Err
}

// isUniqueViolation detects a unique-constraint failure across the
// PostgreSQL and SQLite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
