// Package errors provides error types and handling for storage sweep operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a storage operation error with context about the
// operation that failed. It wraps the underlying vendor SDK error with
// additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "listBuckets", "batchDelete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the vendor SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("sweep.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("sweep.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("sweep.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("sweep.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// Sentinel errors for the sweep error taxonomy.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates malformed caller input (bad regex or
	// glob, zero cutoff, oversized batch). Raised before any network
	// call is made.
	ErrInvalidInput = errors.New("sweep: invalid input")

	// ErrAuthentication indicates the vendor rejected the credentials
	// or denied access.
	ErrAuthentication = errors.New("sweep: authentication failed")

	// ErrBucketNotFound indicates the requested bucket does not exist.
	ErrBucketNotFound = errors.New("sweep: bucket not found")

	// ErrRateLimit indicates the vendor signaled throttling despite
	// local pacing.
	ErrRateLimit = errors.New("sweep: rate limit exceeded")

	// ErrStorage is the catch-all for transport and service failures.
	ErrStorage = errors.New("sweep: storage error")
)

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAuthentication checks if an error indicates an authentication failure.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsRateLimit checks if an error indicates vendor-side throttling.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimit)
}
