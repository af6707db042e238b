// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/mia-platform/oauthdemo/internal/config"
)

// RootName is the name of the root logger of every Registry.
const RootName = ""

var (
	defaultRegistry = NewRegistry(os.Stderr)
)

// Default returns the process-wide registry used by Get, LoadConfig and LoadConfigFile.
func Default() *Registry {
	return defaultRegistry
}

// Get returns the logger called name from the process-wide registry.
func Get(name string) Logger {
	return defaultRegistry.Get(name)
}

// Registry owns a set of named loggers and the handler topology they emit through.
// Loggers are created once per name and stay valid across configuration loads.
type Registry struct {
	mu       sync.RWMutex
	topology *topology
	levels   map[string]Level
	loggers  map[string]*instance
}

// NewRegistry returns a registry whose root logger writes JSON records at INFO level to writer
// until a configuration document is applied.
func NewRegistry(writer io.Writer) *Registry {
	root := &handler{
		name: "default",
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat:               true,
			Output:                   writer,
			Level:                    TRACE.convertedLevel(),
			AdditionalLocationOffset: locationOffset,
		}),
	}

	return &Registry{
		topology: &topology{
			levels: map[string]Level{RootName: INFO},
			nodes:  map[string]node{RootName: {handlers: []*handler{root}}},
			routes: make(map[string][]hclog.Logger),
		},
		levels:  make(map[string]Level),
		loggers: make(map[string]*instance),
	}
}

// Get returns the logger called name, creating it on first use.
func (r *Registry) Get(name string) Logger {
	r.mu.RLock()
	log, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return log
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if log, ok := r.loggers[name]; ok {
		return log
	}
	log = &instance{registry: r, name: name}
	r.loggers[name] = log
	return log
}

// Root returns the root logger.
func (r *Registry) Root() Logger {
	return r.Get(RootName)
}

// Configure replaces the handler topology with the one described by doc. The new topology is
// built before anything is swapped, so on error the current configuration stays in place.
// Levels set with SetLevel are dropped in favour of the document.
func (r *Registry) Configure(doc *config.Logging, streams map[string]io.Writer) error {
	if doc == nil {
		return fmt.Errorf("%w: missing document", config.ErrInvalid)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	next, err := newTopology(doc, streams)
	if err != nil {
		return err
	}

	r.mu.Lock()
	previous := r.topology
	r.topology = next
	clear(r.levels)
	r.mu.Unlock()

	// the new topology is already active, a failing close only leaks the old file descriptor
	_ = previous.close()
	return nil
}

// Close releases the file handlers of the active configuration. Loggers keep working and
// file handlers reopen their file on the next write.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topology.close()
}

func (r *Registry) setLevel(name string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[name] = level
}

// effectiveLevel walks name and its ancestors and returns the first level found.
// Levels set at runtime win over the configured ones on the same logger.
func (r *Registry) effectiveLevel(name string) Level {
	for current := name; ; current = parentName(current) {
		if level, ok := r.levels[current]; ok {
			return level
		}
		if level, ok := r.topology.levels[current]; ok {
			return level
		}
		if current == RootName {
			return WARN
		}
	}
}

func (r *Registry) emit(name string, level Level, msg string, args []interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.effectiveLevel(name).enables(level) {
		return
	}

	for _, sink := range r.topology.route(name) {
		sink.Log(level.convertedLevel(), msg, args...)
	}
}

// node is a configured logger.
type node struct {
	handlers  []*handler
	propagate bool
}

// topology is an immutable compiled configuration document. Only the route cache mutates.
type topology struct {
	levels  map[string]Level
	nodes   map[string]node
	closers []io.Closer

	routesLock sync.Mutex
	routes     map[string][]hclog.Logger
}

func newTopology(doc *config.Logging, streams map[string]io.Writer) (*topology, error) {
	t := &topology{
		levels: map[string]Level{RootName: WARN},
		nodes:  make(map[string]node),
		routes: make(map[string][]hclog.Logger),
	}

	handlers := make(map[string]*handler, len(doc.Handlers))
	for _, name := range sortedKeys(doc.Handlers) {
		h, closer, err := newHandler(name, doc.Handlers[name], doc.Formatters, streams)
		if err != nil {
			_ = t.close()
			return nil, err
		}
		if closer != nil {
			t.closers = append(t.closers, closer)
		}
		handlers[name] = h
	}

	for _, name := range sortedKeys(doc.Loggers) {
		definition := doc.Loggers[name]
		if err := t.addNode(name, definition, handlers); err != nil {
			_ = t.close()
			return nil, err
		}
	}

	if doc.Root != nil {
		if err := t.addNode(RootName, *doc.Root, handlers); err != nil {
			_ = t.close()
			return nil, err
		}
	}

	return t, nil
}

func (t *topology) addNode(name string, definition config.Logger, handlers map[string]*handler) error {
	level, set, err := configuredLevel(name, definition.Level)
	if err != nil {
		return fmt.Errorf("%w: logger %q: %w", config.ErrInvalid, name, err)
	}
	if set {
		t.levels[name] = level
	}

	nodeHandlers := make([]*handler, 0, len(definition.Handlers))
	for _, handlerName := range definition.Handlers {
		nodeHandlers = append(nodeHandlers, handlers[handlerName])
	}
	t.nodes[name] = node{handlers: nodeHandlers, propagate: definition.ShouldPropagate()}
	return nil
}

// route returns the sinks a record emitted on name is written to: the handlers of name and of
// its ancestors, stopping after the first logger that does not propagate.
func (t *topology) route(name string) []hclog.Logger {
	t.routesLock.Lock()
	defer t.routesLock.Unlock()

	if sinks, ok := t.routes[name]; ok {
		return sinks
	}

	sinks := make([]hclog.Logger, 0)
	for current := name; ; current = parentName(current) {
		if node, ok := t.nodes[current]; ok {
			for _, h := range node.handlers {
				sinks = append(sinks, h.log.ResetNamed(name))
			}
			if !node.propagate {
				break
			}
		}
		if current == RootName {
			break
		}
	}

	t.routes[name] = sinks
	return sinks
}

func (t *topology) close() error {
	var errs []error
	for _, closer := range t.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// configuredLevel parses a level coming from a document. An empty or NOTSET level on a named
// logger means the level is inherited; on the root logger NOTSET lets everything through.
func configuredLevel(name, level string) (Level, bool, error) {
	switch {
	case level == "":
		return INFO, false, nil
	case isNotSet(level) && name == RootName:
		return TRACE, true, nil
	case isNotSet(level):
		return INFO, false, nil
	}

	parsed, err := ParseLevel(level)
	return parsed, err == nil, err
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
