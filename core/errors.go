package core

import (
	"errors"
	"fmt"
)

// Sentinel errors, match with errors.Is
var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrComponentMissing = errors.New("component missing")
	ErrConfiguration    = errors.New("invalid configuration")
	ErrFetch            = errors.New("tile fetch failed")
	ErrStopped          = errors.New("engine stopped")
)

// ConfigurationError reports an invalid projection, viewport or runtime parameter at setup
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError is a shorthand used by validators
func NewConfigurationError(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// FetchError reports a failed tile load, recovered locally by retry on revisit
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// LookupMiss reports a component or entity lookup that the caller expected to succeed
type LookupMiss struct {
	Entity    Entity
	Component string
	Err       error // ErrEntityNotFound or ErrComponentMissing
}

func (e *LookupMiss) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%v: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Entity, e.Component, e.Err)
}

func (e *LookupMiss) Unwrap() error { return e.Err }

// RenderFault is a panic raised while systems mutated components
// Surfaced once through the error hook, after which the engine stops ticking
type RenderFault struct {
	System string
	Tick   uint64
	Cause  any
	Stack  []byte
}

func (e *RenderFault) Error() string {
	return fmt.Sprintf("render fault in %s at tick %d: %v", e.System, e.Tick, e.Cause)
}

// Unwrap exposes the panic value when it was an error (e.g. *LookupMiss)
func (e *RenderFault) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
