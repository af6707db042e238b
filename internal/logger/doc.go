// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind a consistent interface of named loggers.
//
// Loggers are identified by dotted names and kept in a Registry: asking twice for the same
// name returns the same logger. A logger inherits the level of its nearest configured
// ancestor and writes to its own handlers and to the handlers of its ancestors until one of
// them stops propagation. The topology comes from a dictionary-style YAML document loaded
// with LoadConfig, by default from logs/log_config.yaml in the working directory:
//
//	version: 1
//	formatters:
//	  plain:
//	    format: text
//	handlers:
//	  console:
//	    type: stream
//	    stream: stdout
//	    formatter: plain
//	loggers:
//	  app:
//	    level: DEBUG
//	    handlers: [console]
//	    propagate: false
//	root:
//	  level: WARNING
//	  handlers: [console]
//
// Loggers are also made available through context helpers and a fiber request middleware.
package logger
