// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mia-platform/oauthdemo/internal/config"
)

// locationOffset skips the instance method and Registry.emit frames when a formatter
// asks for the caller location.
const locationOffset = 2

var (
	// ErrUnknownStream is returned when a stream handler points to a stream that is neither
	// stdout, stderr nor registered by the caller.
	ErrUnknownStream = errors.New("unknown stream")
	// ErrHandlerSetup is returned when the destination of a handler cannot be prepared.
	ErrHandlerSetup = errors.New("handler setup failed")
)

// handler is a configured destination; log is already filtered at the handler level.
type handler struct {
	name string
	log  hclog.Logger
}

// newHandler builds the handler described by definition. The returned closer is not nil
// for handlers that own a file.
func newHandler(name string, definition config.Handler, formatters map[string]config.Formatter, streams map[string]io.Writer) (*handler, io.Closer, error) {
	level := TRACE
	if definition.Level != "" && !isNotSet(definition.Level) {
		parsed, err := ParseLevel(definition.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: handler %q: %w", config.ErrInvalid, name, err)
		}
		level = parsed
	}

	var (
		output io.Writer
		closer io.Closer
	)
	switch definition.Type {
	case config.HandlerTypeStream:
		stream, err := lookupStream(definition.Stream, streams)
		if err != nil {
			return nil, nil, fmt.Errorf("handler %q: %w", name, err)
		}
		output = stream
	case config.HandlerTypeFile:
		file, err := newRollingFile(definition)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: handler %q: %w", ErrHandlerSetup, name, err)
		}
		output = file
		closer = file
	case config.HandlerTypeDiscard:
		output = io.Discard
	default:
		return nil, nil, fmt.Errorf("%w: handler %q: unknown type %q", config.ErrInvalid, name, definition.Type)
	}

	options := &hclog.LoggerOptions{
		Output:                   output,
		Level:                    level.convertedLevel(),
		TimeFn:                   time.Now,
		AdditionalLocationOffset: locationOffset,
	}
	if definition.Formatter != "" {
		applyFormatter(options, formatters[definition.Formatter])
	}

	return &handler{name: name, log: hclog.New(options)}, closer, nil
}

func applyFormatter(options *hclog.LoggerOptions, formatter config.Formatter) {
	options.JSONFormat = formatter.Format == config.FormatJSON
	options.TimeFormat = formatter.TimeFormat
	options.DisableTime = formatter.DisableTime
	options.IncludeLocation = formatter.IncludeLocation

	switch formatter.Color {
	case "force":
		options.Color = hclog.ForceColor
	case "auto":
		options.Color = hclog.AutoColor
	default:
		options.Color = hclog.ColorOff
	}
}

func lookupStream(name string, streams map[string]io.Writer) (io.Writer, error) {
	if name == "" {
		name = config.StreamStderr
	}
	if stream, ok := streams[name]; ok && stream != nil {
		return stream, nil
	}

	switch name {
	case config.StreamStdout:
		return os.Stdout, nil
	case config.StreamStderr:
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownStream, name)
	}
}

// newRollingFile prepares the directory of the log file and returns a size based rotating writer.
func newRollingFile(definition config.Handler) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(definition.Filename), 0o755); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   definition.Filename,
		MaxSize:    definition.MaxSizeMB,
		MaxBackups: definition.MaxBackups,
		MaxAge:     definition.MaxAgeDays,
		Compress:   definition.Compress,
	}, nil
}

func isNotSet(level string) bool {
	return strings.EqualFold(level, "NOTSET")
}
