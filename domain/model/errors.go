package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTrigger     = errors.New("invalid trigger")
	ErrSecretNotFound     = errors.New("secret not found")
	ErrSecretMalformed    = errors.New("secret malformed")
	ErrClusterUnavailable = errors.New("cluster api unavailable")
	ErrPushRejected       = errors.New("push rejected")
	ErrPushExhausted      = errors.New("push retries exhausted")
)

// FetchErrorKind classifies Secret fetch failures.
type FetchErrorKind string

const (
	FetchNotFound    FetchErrorKind = "NotFound"
	FetchMalformed   FetchErrorKind = "Malformed"
	FetchUnavailable FetchErrorKind = "Unavailable"
)

// FetchError is returned by a SecretFetcher.
type FetchError struct {
	Kind      FetchErrorKind
	Namespace string
	Name      string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch secret %s/%s: %s", e.Namespace, e.Name, e.Kind)
	}
	return fmt.Sprintf("fetch secret %s/%s: %s: %v", e.Namespace, e.Name, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel corresponding to Kind.
func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case FetchNotFound:
		return target == ErrSecretNotFound
	case FetchMalformed:
		return target == ErrSecretMalformed
	case FetchUnavailable:
		return target == ErrClusterUnavailable
	}
	return false
}

// PushErrorKind classifies terminal push failures.
type PushErrorKind string

const (
	PushRejected  PushErrorKind = "Rejected"
	PushExhausted PushErrorKind = "Exhausted"
)

// PushError is returned by a CertificatePusher once it gives up.
type PushError struct {
	Kind       PushErrorKind
	StatusCode int // last HTTP status observed, 0 for transport errors
	Reason     string
	Attempts   int
	Err        error
}

func (e *PushError) Error() string {
	msg := fmt.Sprintf("push %s", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempt(s)", e.Attempts)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PushError) Unwrap() error { return e.Err }

// Is matches the sentinel corresponding to Kind.
func (e *PushError) Is(target error) bool {
	switch e.Kind {
	case PushRejected:
		return target == ErrPushRejected
	case PushExhausted:
		return target == ErrPushExhausted
	}
	return false
}
