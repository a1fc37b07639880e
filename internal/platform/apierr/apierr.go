package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind buckets an error into the failure classes the workflow cares
// about. Validation and NotFound reject before any write; Provider and
// Parse become soft outcomes recorded on the persisted record;
// Persistence is the only hard server failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindProvider
	KindParse
	KindPersistence
	KindNotFound
)

// Machine-readable diagnostic codes recorded on a composition outcome.
const (
	CodeEmptyResponse     = "EMPTY_RESPONSE"
	CodeInvalidJSON       = "INVALID_JSON"
	CodeMissingBody       = "MISSING_BODY"
	CodeMissingSEOBlock   = "MISSING_SEO_BLOCK"
	CodeLanguageMismatch  = "LANGUAGE_MISMATCH"
	CodeDailyLimitReached = "DAILY_LIMIT_REACHED"
)

type Error struct {
	Kind   Kind
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Code != "" {
		return e.Code
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, status int, code string, err error) *Error {
	return &Error{Kind: kind, Status: status, Code: code, Err: err}
}

func Validation(code string, err error) *Error {
	return New(KindValidation, http.StatusUnprocessableEntity, code, err)
}

func Provider(code string, err error) *Error {
	return New(KindProvider, http.StatusBadGateway, code, err)
}

func Parse(code string, err error) *Error {
	return New(KindParse, http.StatusUnprocessableEntity, code, err)
}

func Persistence(err error) *Error {
	return New(KindPersistence, http.StatusInternalServerError, "persistence_failed", err)
}

// NotFound covers both true absence and out-of-scope access so tenants
// cannot probe for each other's records.
func NotFound(code string) *Error {
	return New(KindNotFound, http.StatusNotFound, code, nil)
}

// As unwraps err to an *Error when one is present anywhere in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}
