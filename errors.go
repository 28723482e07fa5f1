package artidx

import (
	"errors"
	"fmt"

	"github.com/hupe1980/artidx/internal/art"
	"github.com/hupe1980/artidx/internal/resource"
)

var (
	// ErrKeyExists is returned by inserts into a unique index when the key is
	// already present. The stored TIDs are left untouched.
	ErrKeyExists = errors.New("key already exists")

	// ErrDuplicateEntry is returned when the exact key/TID pair is already
	// stored.
	ErrDuplicateEntry = errors.New("duplicate key/tid pair")

	// ErrPrefixConflict is returned when a key is a strict prefix of a stored
	// key or the other way round. Use the keys package to build prefix-free
	// keys.
	ErrPrefixConflict = errors.New("key is a prefix of another key")

	// ErrEmptyKey is returned for zero-length keys.
	ErrEmptyKey = errors.New("empty key")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("index closed")

	// ErrMemoryLimitExceeded is returned when an insert would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrNotFound is returned by RemoveValue when the key/TID pair is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOption is returned by New for out-of-range options.
	ErrInvalidOption = errors.New("invalid option")
)

// ErrInvariant reports a structural violation found by Check.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvariant struct {
	// Kind is the variant of the offending node (N4, N16, N48, N256).
	Kind string
	// Detail describes the violation and where it was found.
	Detail string
	cause  error
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("invariant violated in %s node: %s", e.Kind, e.Detail)
}

func (e *ErrInvariant) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, art.ErrKeyExists):
		return fmt.Errorf("%w: %w", ErrKeyExists, err)
	case errors.Is(err, art.ErrDuplicateEntry):
		return fmt.Errorf("%w: %w", ErrDuplicateEntry, err)
	case errors.Is(err, art.ErrPrefixConflict):
		return fmt.Errorf("%w: %w", ErrPrefixConflict, err)
	case errors.Is(err, art.ErrEmptyKey):
		return fmt.Errorf("%w: %w", ErrEmptyKey, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	var ie *art.InvariantError
	if errors.As(err, &ie) {
		return &ErrInvariant{
			Kind:   ie.Kind.String(),
			Detail: fmt.Sprintf("%s (path %x)", ie.Reason, ie.Path),
			cause:  err,
		}
	}

	return err
}
