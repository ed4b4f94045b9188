package trainlog

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies engine errors.
type Kind string

const (
	// KindNotFoundOrForbidden covers both a missing page and a page owned by
	// someone else; callers cannot tell the two apart.
	KindNotFoundOrForbidden Kind = "NOT_FOUND_OR_FORBIDDEN"
	KindValidation          Kind = "VALIDATION"
	KindConflict            Kind = "CONFLICT"
	KindPageWrite           Kind = "PAGE_WRITE"
	KindTagResolution       Kind = "TAG_RESOLUTION"
	KindAssociationWrite    Kind = "ASSOCIATION_WRITE"
	KindStore               Kind = "STORE"
)

// HTTPStatus returns the status a route layer should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFoundOrForbidden:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Partial reports whether an error of this kind means page or tag rows were
// written but their associations were not. Writes run in a unit of work, so
// the store rolls them back; the flag tells callers a retry is safe.
func (k Kind) Partial() bool {
	return k == KindAssociationWrite
}

// TagPair is a tag name within a category.
type TagPair struct {
	Name     string
	Category Category
}

func (p TagPair) String() string {
	return string(p.Category) + "/" + p.Name
}

// Error is returned by every Service operation that fails.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Pair    *TagPair // set for KindTagResolution
	Details any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Pair != nil {
		msg = fmt.Sprintf("%s (tag %s)", msg, e.Pair)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFoundOrForbidden = &Error{Kind: KindNotFoundOrForbidden, Message: "training page not found"}
	ErrValidation          = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrConflict            = &Error{Kind: KindConflict, Message: "already exists"}
	ErrPageWrite           = &Error{Kind: KindPageWrite, Message: "failed to write training page"}
	ErrTagResolution       = &Error{Kind: KindTagResolution, Message: "failed to resolve tag"}
	ErrAssociationWrite    = &Error{Kind: KindAssociationWrite, Message: "failed to link tags to training page"}
	ErrStore               = &Error{Kind: KindStore, Message: "store failure"}
)

// KindOf returns the Kind of err, or KindStore for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

func notFoundOrForbidden(op string) *Error {
	return &Error{Kind: KindNotFoundOrForbidden, Op: op, Message: ErrNotFoundOrForbidden.Message}
}

func validationError(op, msg string, details any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg, Details: details}
}

func storeError(op string, err error) *Error {
	return &Error{Kind: KindStore, Op: op, Message: ErrStore.Message, Err: err}
}

func pageWriteError(op string, err error) *Error {
	return &Error{Kind: KindPageWrite, Op: op, Message: ErrPageWrite.Message, Err: err}
}

func tagResolutionError(op string, pair TagPair, err error) *Error {
	return &Error{Kind: KindTagResolution, Op: op, Message: ErrTagResolution.Message, Pair: &pair, Err: err}
}

func associationWriteError(op string, err error) *Error {
	return &Error{Kind: KindAssociationWrite, Op: op, Message: ErrAssociationWrite.Message, Err: err}
}

// asEngineError passes *Error values through and wraps anything else as a
// store failure.
func asEngineError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return storeError(op, err)
}
