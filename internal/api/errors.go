package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed collaborator call
type Kind int

const (
	// KindUnexpected covers transport errors and any status without a dedicated kind
	KindUnexpected Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad request"
	default:
		return "unexpected"
	}
}

// Classify maps an HTTP status to a Kind
func Classify(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindUnexpected
	}
}

// Failure is returned by every Client call that did not succeed
type Failure struct {
	Kind    Kind
	Status  int    // 0 for transport errors
	Op      string // e.g. "DELETE /locations/location/7"
	Message string // server supplied message, if any
	Err     error
}

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	if msg == "" {
		msg = f.Kind.String()
	}
	if f.Status != 0 {
		return fmt.Sprintf("%s: %d %s", f.Op, f.Status, msg)
	}
	return fmt.Sprintf("%s: %s", f.Op, msg)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the Kind of err, KindUnexpected when err is not a Failure
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnexpected
}

func IsNotFound(err error) bool     { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return err != nil && KindOf(err) == KindConflict }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == KindUnauthorized }
func IsBadRequest(err error) bool   { return err != nil && KindOf(err) == KindBadRequest }
