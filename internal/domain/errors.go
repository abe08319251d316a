package domain

import (
	"errors"
	"fmt"
	"time"
)

// ConfigurationError reports a programming or deployment mistake, such as a
// filter declared against a column outside its route's allow-list.
type ConfigurationError struct {
	Component string
	Msg       string
}

func (e ConfigurationError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("%s: configuration error: %s", e.Component, e.Msg)
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// AuthenticationError is returned when a mandatory credential is missing,
// unknown, or could not be checked. Err carries the store failure, if any;
// it is logged but never shown to the client.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e AuthenticationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication required"
}

func (e AuthenticationError) Unwrap() error { return e.Err }

type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e RateLimitError) Error() string {
	return "Too many requests. Please try again later."
}

// StoreError wraps a failure from the relational or credential store.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("store: %v", e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsAuthentication(err error) bool {
	var target AuthenticationError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsRateLimit(err error) bool {
	var target RateLimitError
	return errors.As(err, &target)
}

func IsStore(err error) bool {
	var target StoreError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target ConfigurationError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
