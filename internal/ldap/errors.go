package ldap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ErrorCategory names the taxonomy bucket of an error for logs and diagnostics.
type ErrorCategory string

const (
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryConnection ErrorCategory = "connection"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryConflict   ErrorCategory = "conflict"
	ErrorCategoryDirectory  ErrorCategory = "directory"
	ErrorCategoryCodec      ErrorCategory = "codec"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConnectionError reports a dial or bind failure.
type ConnectionError struct {
	Server      string
	Identity    string
	ResultCode  uint16
	Description string
	Cause       error
}

func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("failed to connect to %s", e.Server)
	if e.Identity != "" {
		msg += " as " + e.Identity
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

func newConnectionError(server, identity string, err error) *ConnectionError {
	ce := &ConnectionError{Server: server, Identity: identity, Cause: err}
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		ce.ResultCode = ldapErr.ResultCode
		ce.Description = serverDescription(ldapErr)
	} else if err != nil {
		ce.Description = err.Error()
	}
	return ce
}

// NotFoundError reports a name that does not resolve to a directory object.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ConflictError reports an object that already exists at the target DN.
type ConflictError struct {
	DN    string
	Cause error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("object already exists: %s", e.DN)
}

func (e *ConflictError) Unwrap() error { return e.Cause }

// DirectoryError is a server-reported failure. The result code and the
// server's description are kept as structured fields.
type DirectoryError struct {
	Operation   string
	DN          string
	ResultCode  uint16
	Description string
	Cause       error
}

func (e *DirectoryError) Error() string {
	var parts []string

	if e.ResultCode > 0 {
		parts = append(parts, fmt.Sprintf("LDAP %s failed (code %d)", e.Operation, e.ResultCode))
	} else {
		parts = append(parts, fmt.Sprintf("LDAP %s failed", e.Operation))
	}

	if e.Description != "" {
		parts = append(parts, e.Description)
	}

	if e.DN != "" {
		parts = append(parts, fmt.Sprintf("DN: %s", e.DN))
	}

	return strings.Join(parts, " - ")
}

func (e *DirectoryError) Unwrap() error { return e.Cause }

// CodecError reports malformed record input or an undecodable blob.
type CodecError struct {
	Reason string
	Cause  error
}

func (e *CodecError) Error() string {
	return "dnsRecord codec: " + e.Reason
}

func (e *CodecError) Unwrap() error { return e.Cause }

// ClassifyError converts a raw transport error into the taxonomy.
// Errors that already belong to the taxonomy are returned unchanged.
func ClassifyError(operation, dn string, err error) error {
	if err == nil {
		return nil
	}

	switch CategoryOf(err) {
	case ErrorCategoryValidation, ErrorCategoryConnection, ErrorCategoryNotFound,
		ErrorCategoryConflict, ErrorCategoryDirectory, ErrorCategoryCodec:
		return err
	}

	var ldapErr *ldap.Error
	if !errors.As(err, &ldapErr) {
		return &DirectoryError{Operation: operation, DN: dn, Description: err.Error(), Cause: err}
	}

	switch ldapErr.ResultCode {
	case ldap.LDAPResultEntryAlreadyExists:
		return &ConflictError{DN: dn, Cause: err}
	case ldap.LDAPResultNoSuchObject:
		return &NotFoundError{Kind: "object", Name: dn}
	case ldap.ErrorNetwork, ldap.LDAPResultServerDown, ldap.LDAPResultConnectError, ldap.LDAPResultUnavailable:
		return &ConnectionError{
			ResultCode:  ldapErr.ResultCode,
			Description: serverDescription(ldapErr),
			Cause:       err,
		}
	}

	return &DirectoryError{
		Operation:   operation,
		DN:          dn,
		ResultCode:  ldapErr.ResultCode,
		Description: serverDescription(ldapErr),
		Cause:       err,
	}
}

// serverDescription prefers the server's diagnostic message and falls back to
// the standard text for the result code.
func serverDescription(err *ldap.Error) string {
	if err.Err != nil && err.Err.Error() != "" {
		return err.Err.Error()
	}
	if text, ok := ldap.LDAPResultCodeMap[err.ResultCode]; ok {
		return text
	}
	return fmt.Sprintf("unknown LDAP error (code %d)", err.ResultCode)
}

// CategoryOf returns the taxonomy bucket of an error.
func CategoryOf(err error) ErrorCategory {
	var (
		validationErr *ValidationError
		connectionErr *ConnectionError
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
		directoryErr  *DirectoryError
		codecErr      *CodecError
	)

	switch {
	case err == nil:
		return ErrorCategoryUnknown
	case errors.As(err, &validationErr):
		return ErrorCategoryValidation
	case errors.As(err, &codecErr):
		return ErrorCategoryCodec
	case errors.As(err, &connectionErr):
		return ErrorCategoryConnection
	case errors.As(err, &notFoundErr):
		return ErrorCategoryNotFound
	case errors.As(err, &conflictErr):
		return ErrorCategoryConflict
	case errors.As(err, &directoryErr):
		return ErrorCategoryDirectory
	default:
		return ErrorCategoryUnknown
	}
}

// IsNotFoundError checks if an error indicates a "not found" condition.
func IsNotFoundError(err error) bool {
	return CategoryOf(err) == ErrorCategoryNotFound
}

// IsConflictError checks if an error indicates a conflict (already exists).
func IsConflictError(err error) bool {
	return CategoryOf(err) == ErrorCategoryConflict
}

// IsValidationError checks if an error was raised before any network call.
func IsValidationError(err error) bool {
	return CategoryOf(err) == ErrorCategoryValidation
}

// IsConnectionError checks if an error is a dial or bind failure.
func IsConnectionError(err error) bool {
	return CategoryOf(err) == ErrorCategoryConnection
}
