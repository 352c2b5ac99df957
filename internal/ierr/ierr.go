// Package ierr defines the tagged error kind used across the indexer instead
// of scattered sentinel error values, per the variant-enum re-architecture
// note in SPEC_FULL.md §9.
package ierr

import (
	"errors"
	"fmt"
)

// Kind is a closed set of error categories the Controller surfaces to its caller.
type Kind string

const (
	KindConfig  Kind = "config"
	KindStore   Kind = "store"
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
	KindNotFound Kind = "not_found"
)

// IndexError wraps a cause with a Kind so callers can switch on category
// without string-matching messages.
type IndexError struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *IndexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *IndexError) Unwrap() error { return e.Cause }

func New(kind Kind, msg string) *IndexError {
	return &IndexError{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, cause error) *IndexError {
	return &IndexError{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err is an *IndexError of the given kind.
func Is(err error, kind Kind) bool {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}

func ConfigError(msg string, cause error) error  { return Wrap(KindConfig, msg, cause) }
func StoreError(msg string, cause error) error   { return Wrap(KindStore, msg, cause) }
func NetworkError(msg string, cause error) error { return Wrap(KindNetwork, msg, cause) }
func ParseError(msg string, cause error) error   { return Wrap(KindParse, msg, cause) }
func NotFoundError(msg string) error             { return New(KindNotFound, msg) }
