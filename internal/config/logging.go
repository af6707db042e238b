// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// SupportedVersion is the only schema version accepted for logging documents.
	SupportedVersion = 1

	HandlerTypeStream  = "stream"
	HandlerTypeFile    = "file"
	HandlerTypeDiscard = "discard"

	FormatText = "text"
	FormatJSON = "json"

	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

var (
	// ErrParsing reports failures that occur while decoding configuration files.
	ErrParsing = errors.New("error parsing")
	// ErrInvalid reports a decoded document that violates the logging schema.
	ErrInvalid = errors.New("invalid logging configuration")

	// knownLevels lists every level name accepted in a logging document, upper cased.
	knownLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "CRITICAL", "FATAL", "OFF", "NOTSET"}

	validate     *validator.Validate
	validateOnce sync.Once
)

// Logging is the dictionary-style logging document: formatters and handlers are declared once
// by name and referenced by the loggers that use them.
type Logging struct {
	Version    int                  `yaml:"version" validate:"required,eq=1"`
	Formatters map[string]Formatter `yaml:"formatters,omitempty" validate:"dive"`
	Handlers   map[string]Handler   `yaml:"handlers,omitempty" validate:"dive"`
	Loggers    map[string]Logger    `yaml:"loggers,omitempty" validate:"dive"`
	Root       *Logger              `yaml:"root,omitempty"`
}

// Formatter describes how a handler renders its records.
type Formatter struct {
	Format          string `yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
	TimeFormat      string `yaml:"time_format,omitempty"`
	DisableTime     bool   `yaml:"disable_time,omitempty"`
	IncludeLocation bool   `yaml:"include_location,omitempty"`
	Color           string `yaml:"color,omitempty" validate:"omitempty,oneof=off auto force"`
}

// Handler describes a destination for log records.
type Handler struct {
	Type       string `yaml:"type" validate:"required,oneof=stream file discard"`
	Level      string `yaml:"level,omitempty" validate:"omitempty,loglevel"`
	Formatter  string `yaml:"formatter,omitempty"`
	Stream     string `yaml:"stream,omitempty"`
	Filename   string `yaml:"filename,omitempty" validate:"required_if=Type file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups,omitempty" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" validate:"gte=0"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// Logger configures a named logger, or the root logger when used as Logging.Root.
type Logger struct {
	Level     string   `yaml:"level,omitempty" validate:"omitempty,loglevel"`
	Handlers  []string `yaml:"handlers,omitempty"`
	Propagate *bool    `yaml:"propagate,omitempty"`
}

// ShouldPropagate reports whether records continue to the ancestors' handlers, true when unset.
func (l Logger) ShouldPropagate() bool {
	return l.Propagate == nil || *l.Propagate
}

// NewLoggingConfigFromPath reads, decodes and validates the logging document stored at path.
// Errors opening the file are returned as they are, so fs.ErrNotExist can be checked by callers.
func NewLoggingConfigFromPath(path string) (*Logging, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return NewLoggingConfig(file, path)
}

// NewLoggingConfig decodes and validates a logging document; name is only used in error messages.
func NewLoggingConfig(reader io.Reader, name string) (*Logging, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	config := new(Logging)
	if err := decoder.Decode(config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w %q: empty document", ErrParsing, name)
		}
		return nil, fmt.Errorf("%w %q: %w", ErrParsing, name, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}

	return config, nil
}

// Validate checks the document against the schema and the references between its sections.
func (l *Logging) Validate() error {
	if err := structValidator().Struct(l); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, validationMessage(err))
	}

	errorsList := []string{}
	for _, name := range sortedKeys(l.Handlers) {
		handler := l.Handlers[name]
		if handler.Formatter != "" {
			if _, ok := l.Formatters[handler.Formatter]; !ok {
				errorsList = append(errorsList, fmt.Sprintf("handler %q references unknown formatter %q", name, handler.Formatter))
			}
		}
	}

	for _, name := range sortedKeys(l.Loggers) {
		if name == "" {
			errorsList = append(errorsList, "logger names cannot be empty")
			continue
		}
		errorsList = append(errorsList, l.missingHandlers("logger "+name, l.Loggers[name].Handlers)...)
	}

	if l.Root != nil {
		if l.Root.Propagate != nil {
			errorsList = append(errorsList, "root logger does not support propagate")
		}
		errorsList = append(errorsList, l.missingHandlers("root logger", l.Root.Handlers)...)
	}

	if len(errorsList) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errorsList, "; "))
	}
	return nil
}

func (l *Logging) missingHandlers(owner string, handlers []string) []string {
	errorsList := []string{}
	for _, handler := range handlers {
		if _, ok := l.Handlers[handler]; !ok {
			errorsList = append(errorsList, fmt.Sprintf("%s references unknown handler %q", owner, handler))
		}
	}
	return errorsList
}

// IsKnownLevel reports whether level is a level name accepted by the schema.
func IsKnownLevel(level string) bool {
	return slices.Contains(knownLevels, strings.ToUpper(level))
}

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
			return IsKnownLevel(fl.Field().String())
		})
	})
	return validate
}

// validationMessage flattens validator errors into a single readable line.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := strings.TrimPrefix(fieldErr.Namespace(), "Logging.")
		switch fieldErr.Tag() {
		case "loglevel":
			messages = append(messages, fmt.Sprintf("%s: unknown level %q", field, fieldErr.Value()))
		case "required_if":
			messages = append(messages, fmt.Sprintf("%s: required when %s", field, fieldErr.Param()))
		default:
			if param := fieldErr.Param(); param != "" {
				messages = append(messages, fmt.Sprintf("%s: failed %s=%s", field, fieldErr.Tag(), param))
				continue
			}
			messages = append(messages, fmt.Sprintf("%s: failed %s", field, fieldErr.Tag()))
		}
	}
	return strings.Join(messages, ", ")
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
