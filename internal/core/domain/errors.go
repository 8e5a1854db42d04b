package domain

import "errors"

// Error kinds. Every failure surfaced to a client wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrGeneration   = errors.New("content generation failed")
)

// Error carries a user-facing message on top of an error kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func NewValidationError(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }

func NewForbiddenError(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

func NewNotFoundError(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

func NewConflictError(msg string) error { return &Error{Kind: ErrConflict, Msg: msg} }

func NewGenerationError(msg string) error { return &Error{Kind: ErrGeneration, Msg: msg} }

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthorized, Msg: "invalid credentials"}
	ErrInvalidToken       = &Error{Kind: ErrUnauthorized, Msg: "invalid or expired token"}
	ErrUserExists         = &Error{Kind: ErrConflict, Msg: "username or email already exists"}
	ErrUserNotFound       = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrExperimentNotFound = &Error{Kind: ErrNotFound, Msg: "experiment not found"}
	ErrSessionNotFound    = &Error{Kind: ErrNotFound, Msg: "session not found"}
	ErrNotOwner           = &Error{Kind: ErrForbidden, Msg: "you can only modify your own experiments"}
	ErrConcurrentUpdate   = &Error{Kind: ErrConflict, Msg: "experiment was modified concurrently, retry the request"}
	ErrNoTargetWords      = &Error{Kind: ErrValidation, Msg: "experiment must have target words before generating content"}
	ErrStoryRequirements  = &Error{Kind: ErrGeneration, Msg: "generated content did not meet requirements"}
	ErrMissingParameter   = &Error{Kind: ErrValidation, Msg: "missing experiment id or condition"}
	ErrConsentRequired    = &Error{Kind: ErrValidation, Msg: "you must agree to the terms to participate"}
	ErrSessionForbidden   = &Error{Kind: ErrForbidden, Msg: "session belongs to another participant"}
)
