package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidReference matches every ReferenceError via errors.Is.
var ErrInvalidReference = errors.New("invalid reference")

// Code-specific sentinels, also matched by errors.Is.
var (
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidSessionID  = errors.New("invalid session id")
	ErrInvalidDocumentID = errors.New("invalid document id")
)

// ReferenceError reports an id that does not resolve to any edges.
type ReferenceError struct {
	// Code identifies which kind of reference failed.
	Code ReferenceErrorCode

	// ID is the vertex string that did not resolve.
	ID string
}

// ReferenceErrorCode categorizes reference errors.
type ReferenceErrorCode string

const (
	// ErrCodeInvalidUserID indicates a user id with no usr_* edges.
	ErrCodeInvalidUserID ReferenceErrorCode = "INVALID_USER_ID"

	// ErrCodeInvalidSessionID indicates a session id with no session_* edges.
	ErrCodeInvalidSessionID ReferenceErrorCode = "INVALID_SESSION_ID"

	// ErrCodeInvalidDocumentID indicates a document id with no incident edges.
	ErrCodeInvalidDocumentID ReferenceErrorCode = "INVALID_DOCUMENT_ID"
)

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %q does not resolve", e.Code, e.ID)
}

// Is reports whether target is ErrInvalidReference or the sentinel for e.Code.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrInvalidReference:
		return true
	case ErrInvalidUserID:
		return e.Code == ErrCodeInvalidUserID
	case ErrInvalidSessionID:
		return e.Code == ErrCodeInvalidSessionID
	case ErrInvalidDocumentID:
		return e.Code == ErrCodeInvalidDocumentID
	}
	return false
}

// IsInvalidReference returns true if err is any ReferenceError.
// Uses errors.As to handle wrapped errors.
func IsInvalidReference(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}

func invalidUser(id string) error {
	return &ReferenceError{Code: ErrCodeInvalidUserID, ID: id}
}

func invalidSession(id string) error {
	return &ReferenceError{Code: ErrCodeInvalidSessionID, ID: id}
}

func invalidDocument(id string) error {
	return &ReferenceError{Code: ErrCodeInvalidDocumentID, ID: id}
}
