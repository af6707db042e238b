// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package trace

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	"github.com/mia-platform/oauthdemo/internal/logger"
)

const (
	// LoggerPrefix is the parent of every logger used by traced functions.
	LoggerPrefix = "app"

	anonymousName = "anonymous"
)

type options struct {
	name     string
	registry *logger.Registry
}

// Option customizes a traced function.
type Option func(*options)

// WithName sets the name used in the records and in the logger name instead of the one
// derived from the function.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRegistry emits the records through registry instead of the process-wide one.
func WithRegistry(registry *logger.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// tracer holds what a wrapper closes over: the name of the wrapped function and where to log.
type tracer struct {
	name     string
	registry *logger.Registry
}

func newTracer(fn any, opts []Option) tracer {
	o := &options{registry: logger.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.name == "" {
		o.name = FuncName(fn)
	}

	return tracer{name: o.name, registry: o.registry}
}

// start resolves the logger of the traced function and records the beginning of the call.
func (t tracer) start() logger.Logger {
	log := t.registry.Get(LoggerPrefix + "." + t.name)
	log.Info("start " + t.name)
	return log
}

// stop records the end of the call. It runs deferred: when the wrapped function panicked
// completed is false and the panic keeps unwinding after the record is written.
func (t tracer) stop(log logger.Logger, completed bool, err error) {
	switch {
	case !completed:
		log.Error("stop "+t.name, "panicked", true)
	case err != nil:
		log.Info("stop "+t.name, "error", err.Error())
	default:
		log.Info("stop " + t.name)
	}
}

// Func wraps fn so that every call is bracketed by a start and a stop record.
func Func(fn func(), opts ...Option) func() {
	t := newTracer(fn, opts)
	return func() {
		log := t.start()
		completed := false
		defer func() { t.stop(log, completed, nil) }()

		fn()
		completed = true
	}
}

// Value wraps fn like Func and returns its result.
func Value[R any](fn func() R, opts ...Option) func() R {
	t := newTracer(fn, opts)
	return func() R {
		log := t.start()
		completed := false
		defer func() { t.stop(log, completed, nil) }()

		result := fn()
		completed = true
		return result
	}
}

// Unary wraps a single argument function like Func and returns its result.
func Unary[A, R any](fn func(A) R, opts ...Option) func(A) R {
	t := newTracer(fn, opts)
	return func(arg A) R {
		log := t.start()
		completed := false
		defer func() { t.stop(log, completed, nil) }()

		result := fn(arg)
		completed = true
		return result
	}
}

// Call wraps a context aware function like Func. The error returned by fn is passed through
// unchanged and added to the stop record.
func Call[A, R any](fn func(context.Context, A) (R, error), opts ...Option) func(context.Context, A) (R, error) {
	t := newTracer(fn, opts)
	return func(ctx context.Context, arg A) (result R, err error) {
		log := t.start()
		completed := false
		defer func() { t.stop(log, completed, err) }()

		result, err = fn(ctx, arg)
		completed = true
		return result, err
	}
}

// FuncName returns the short name of the function fn: no package path, no receiver and
// no closure suffixes. It returns "anonymous" when nothing meaningful is left.
func FuncName(fn any) string {
	value := reflect.ValueOf(fn)
	if value.Kind() != reflect.Func || value.IsNil() {
		return anonymousName
	}

	function := runtime.FuncForPC(value.Pointer())
	if function == nil {
		return anonymousName
	}

	return shortName(function.Name())
}

// shortName turns a fully qualified runtime name like
// github.com/org/repo/pkg.(*Type).method-fm or pkg.outer.func1.2 into method or outer.
// Names of generic functions carry a [...] marker that is dropped.
func shortName(fullName string) string {
	name := fullName
	if index := strings.LastIndex(name, "/"); index >= 0 {
		name = name[index+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	name = strings.ReplaceAll(name, "[...]", "")

	parts := strings.Split(name, ".")
	// the first part is always the package name
	parts = parts[1:]
	for len(parts) > 0 && (parts[len(parts)-1] == "" || isClosureSuffix(parts[len(parts)-1])) {
		parts = parts[:len(parts)-1]
	}
	// literals assigned to package variables live under glob or init
	if len(parts) == 0 || parts[len(parts)-1] == "glob" || parts[len(parts)-1] == "init" {
		return anonymousName
	}

	return parts[len(parts)-1]
}

// isClosureSuffix matches the segments the compiler appends for function literals: func1, 2, ...
func isClosureSuffix(part string) bool {
	digits := strings.TrimPrefix(part, "func")
	if digits == "" {
		return part == "func"
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
