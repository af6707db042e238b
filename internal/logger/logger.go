// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

type Level int

const (
	OFF Level = iota - 1
	ERROR
	WARN
	INFO
	DEBUG
	TRACE
)

// ParseLevel converts a level name into a Level. Names are case insensitive and the
// WARNING, CRITICAL and FATAL aliases are accepted.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR", "CRITICAL", "FATAL":
		return ERROR, nil
	case "OFF":
		return OFF, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelFromString works like ParseLevel but falls back to INFO for unknown names.
func LevelFromString(level string) Level {
	parsed, _ := ParseLevel(level)
	return parsed
}

func (l Level) String() string {
	switch l {
	case OFF:
		return "OFF"
	case ERROR:
		return "ERROR"
	case WARN:
		return "WARN"
	case INFO:
		return "INFO"
	case DEBUG:
		return "DEBUG"
	case TRACE:
		return "TRACE"
	default:
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
}

// valid returns l or INFO when l is not one of the declared levels.
func (l Level) valid() Level {
	if l < OFF || l > TRACE {
		return INFO
	}
	return l
}

// enables reports whether a record at level record passes a threshold of l.
func (l Level) enables(record Level) bool {
	return record != OFF && record <= l
}

func (l Level) convertedLevel() hclog.Level {
	switch l {
	case OFF:
		return hclog.Off
	case TRACE:
		return hclog.Trace
	case DEBUG:
		return hclog.Debug
	case INFO:
		return hclog.Info
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// Logger describes the interface that must be implemented by all loggers
type Logger interface {
	// Name returns the dotted name of the logger, empty for the root logger.
	Name() string

	// WithName returns the child logger named after the current one plus name.
	WithName(name string) Logger

	// With returns a Logger that adds the key/value pairs to every record.
	With(args ...interface{}) Logger

	// SetLevel updates the logger level; descendants without an own level inherit it.
	SetLevel(level Level)

	// Trace emit a message and key/value pairs at the TRACE level.
	Trace(msg string, args ...interface{})

	// Debug emit a message and key/value pairs at the DEBUG level.
	Debug(msg string, args ...interface{})

	// Info emit a message and key/value pairs at the INFO level.
	Info(msg string, args ...interface{})

	// Warn emit a message and key/value pairs at the WARN level.
	Warn(msg string, args ...interface{})

	// Error emit a message and key/value pairs at the ERROR level.
	Error(msg string, args ...interface{})
}

// Make sure that instance is a Logger.
var _ Logger = &instance{}

// instance is a named view on a Registry; records are routed at emission time so a logger
// obtained before a configuration load follows the new configuration.
type instance struct {
	registry *Registry
	name     string
	args     []interface{}
}

// NewLogger creates a standalone root logger writing JSON records to writer at INFO level.
func NewLogger(writer io.Writer) Logger {
	return NewRegistry(writer).Root()
}

func (i *instance) Name() string {
	return i.name
}

func (i *instance) WithName(name string) Logger {
	child := childName(i.name, name)
	if len(i.args) == 0 {
		return i.registry.Get(child)
	}

	return &instance{
		registry: i.registry,
		name:     child,
		args:     i.args,
	}
}

func (i *instance) With(args ...interface{}) Logger {
	return &instance{
		registry: i.registry,
		name:     i.name,
		args:     append(slices.Clip(i.args), args...),
	}
}

func (i *instance) SetLevel(level Level) {
	i.registry.setLevel(i.name, level.valid())
}

func (i *instance) Trace(msg string, args ...interface{}) {
	i.registry.emit(i.name, TRACE, msg, i.withImplied(args))
}

func (i *instance) Debug(msg string, args ...interface{}) {
	i.registry.emit(i.name, DEBUG, msg, i.withImplied(args))
}

func (i *instance) Info(msg string, args ...interface{}) {
	i.registry.emit(i.name, INFO, msg, i.withImplied(args))
}

func (i *instance) Warn(msg string, args ...interface{}) {
	i.registry.emit(i.name, WARN, msg, i.withImplied(args))
}

func (i *instance) Error(msg string, args ...interface{}) {
	i.registry.emit(i.name, ERROR, msg, i.withImplied(args))
}

func (i *instance) withImplied(args []interface{}) []interface{} {
	if len(i.args) == 0 {
		return args
	}
	return append(slices.Clip(i.args), args...)
}

// childName joins two dotted logger names.
func childName(parent, name string) string {
	switch {
	case parent == "":
		return name
	case name == "":
		return parent
	default:
		return parent + "." + name
	}
}

// parentName returns the dotted parent of name, the root logger name for top level names.
func parentName(name string) string {
	if index := strings.LastIndex(name, "."); index >= 0 {
		return name[:index]
	}
	return RootName
}
