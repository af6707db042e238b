// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mia-platform/oauthdemo/internal/config"
)

const (
	// ConfigDir is the directory, relative to the working directory, holding the logging document.
	ConfigDir = "logs"
	// ConfigFileName is the name of the logging document inside ConfigDir.
	ConfigFileName = "log_config.yaml"
)

// ConfigurationError is returned when the logging document cannot be read, parsed or applied.
// It is meant to abort the process startup.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "logging configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("logging configuration %s: %s", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type loadOptions struct {
	registry *Registry
	streams  map[string]io.Writer
}

// LoadOption customizes LoadConfig and LoadConfigFile.
type LoadOption func(*loadOptions)

// WithRegistry applies the document to registry instead of the process-wide one.
func WithRegistry(registry *Registry) LoadOption {
	return func(o *loadOptions) {
		o.registry = registry
	}
}

// WithStream makes writer available to stream handlers declaring `stream: name`.
func WithStream(name string, writer io.Writer) LoadOption {
	return func(o *loadOptions) {
		o.streams[name] = writer
	}
}

// ConfigPath returns the location of the logging document: logs/log_config.yaml under the
// current working directory.
func ConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ConfigDir, ConfigFileName), nil
}

// LoadConfig reads the logging document from ConfigPath and installs it. Calling it again
// re-applies the document, the last call wins.
func LoadConfig(opts ...LoadOption) error {
	path, err := ConfigPath()
	if err != nil {
		return &ConfigurationError{Err: err}
	}
	return LoadConfigFile(path, opts...)
}

// LoadConfigFile reads the logging document at path and installs it.
func LoadConfigFile(path string, opts ...LoadOption) error {
	options := &loadOptions{
		registry: defaultRegistry,
		streams:  make(map[string]io.Writer),
	}
	for _, opt := range opts {
		opt(options)
	}

	doc, err := config.NewLoggingConfigFromPath(path)
	if err != nil {
		return &ConfigurationError{Path: path, Err: err}
	}

	if err := options.registry.Configure(doc, options.streams); err != nil {
		return &ConfigurationError{Path: path, Err: err}
	}
	return nil
}
