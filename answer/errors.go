package answer

import (
	"errors"

	"github.com/a-h/docqa/categories"
	"github.com/a-h/docqa/generate"
)

type Kind string

const (
	KindCategoryNotFound         Kind = "CategoryNotFound"
	KindNoRelevantFiles          Kind = "NoRelevantFiles"
	KindDocumentReadFailure      Kind = "DocumentReadFailure"
	KindPromptFailure            Kind = "PromptFailure"
	KindBackendUnreachable       Kind = "BackendUnreachable"
	KindBackendError             Kind = "BackendError"
	KindMalformedBackendResponse Kind = "MalformedBackendResponse"
	KindBackendTimeout           Kind = "BackendTimeout"
)

// Class is who caused an error.
type Class int

const (
	ClassServer Class = iota
	ClassClient
	ClassUpstream
)

func (k Kind) Class() Class {
	switch k {
	case KindCategoryNotFound, KindNoRelevantFiles:
		return ClassClient
	case KindBackendUnreachable, KindBackendError, KindMalformedBackendResponse, KindBackendTimeout:
		return ClassUpstream
	}
	return ClassServer
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func categoryError(err error) *Error {
	if errors.Is(err, categories.ErrNotFound) {
		return &Error{Kind: KindCategoryNotFound, Err: err}
	}
	return &Error{Kind: KindDocumentReadFailure, Err: err}
}

func generateError(err error) *Error {
	var (
		ue generate.UnreachableError
		se generate.StatusError
		me generate.MalformedResponseError
		te generate.TimeoutError
	)
	switch {
	case errors.As(err, &te):
		return &Error{Kind: KindBackendTimeout, Err: err}
	case errors.As(err, &ue):
		return &Error{Kind: KindBackendUnreachable, Err: err}
	case errors.As(err, &se):
		return &Error{Kind: KindBackendError, Err: err}
	case errors.As(err, &me):
		return &Error{Kind: KindMalformedBackendResponse, Err: err}
	}
	return &Error{Kind: KindBackendUnreachable, Err: err}
}
