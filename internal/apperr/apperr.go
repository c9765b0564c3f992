// Package apperr defines the single error type surfaced by services. Each
// error carries a Kind; the HTTP layer is the only place that maps a Kind to a
// status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindInvalidToken
	KindUserNotFound
	KindInactiveUser
	KindIncorrectCredentials
	KindUserAlreadyExists
	KindWorkspaceAlreadyExists
	KindTagAlreadyExists
	KindProjectAlreadyExists
	KindNotFound
	KindValidation
)

var kindNames = map[Kind]string{
	KindInternal:               "internal",
	KindUnauthorized:           "unauthorized",
	KindInvalidToken:           "invalid_token",
	KindUserNotFound:           "user_not_found",
	KindInactiveUser:           "inactive_user",
	KindIncorrectCredentials:   "incorrect_credentials",
	KindUserAlreadyExists:      "user_already_exists",
	KindWorkspaceAlreadyExists: "workspace_already_exists",
	KindTagAlreadyExists:       "tag_already_exists",
	KindProjectAlreadyExists:   "project_already_exists",
	KindNotFound:               "not_found",
	KindValidation:             "validation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsConflict reports whether k belongs to the AlreadyExists class.
func (k Kind) IsConflict() bool {
	switch k {
	case KindUserAlreadyExists, KindWorkspaceAlreadyExists, KindTagAlreadyExists, KindProjectAlreadyExists:
		return true
	}
	return false
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Kind, so sentinel values below can
// be used with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal when err is not an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

var (
	ErrUnauthorized           = New(KindUnauthorized, "not authenticated")
	ErrInvalidToken           = New(KindInvalidToken, "invalid or expired token")
	ErrUserNotFound           = New(KindUserNotFound, "user not found")
	ErrInactiveUser           = New(KindInactiveUser, "inactive user")
	ErrIncorrectCredentials   = New(KindIncorrectCredentials, "incorrect email or password")
	ErrUserAlreadyExists      = New(KindUserAlreadyExists, "user with this email already exists")
	ErrWorkspaceAlreadyExists = New(KindWorkspaceAlreadyExists, "workspace with this name already exists for this user")
	ErrTagAlreadyExists       = New(KindTagAlreadyExists, "tag with this name already exists")
	ErrProjectAlreadyExists   = New(KindProjectAlreadyExists, "project with this name already exists in the workspace")
	ErrNotFound               = New(KindNotFound, "not found")
)
