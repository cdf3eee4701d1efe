package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tieubaoca/docproc-be/types"
)

// ProcessorFactory builds a backend from a validated configuration. A factory
// fails fast with types.BackendUnavailableError when a required external
// capability is missing; that check happens once here, not per request.
type ProcessorFactory func(cfg types.ProcessorServiceConfig) (FileProcessor, error)

var (
	registryMu         sync.RWMutex
	processorFactories = map[string]ProcessorFactory{}
)

func init() {
	RegisterProcessor(ProcessorPDFText, func(cfg types.ProcessorServiceConfig) (FileProcessor, error) {
		return NewPDFTextService(cfg), nil
	})
	RegisterProcessor(ProcessorLayout, func(cfg types.ProcessorServiceConfig) (FileProcessor, error) {
		return NewLayoutService(cfg)
	})
}

// RegisterProcessor makes a backend constructible by name. Registering the
// same name twice replaces the previous factory.
func RegisterProcessor(name string, factory ProcessorFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	processorFactories[name] = factory
}

// NewProcessor constructs the named backend.
func NewProcessor(name string, cfg types.ProcessorServiceConfig) (FileProcessor, error) {
	registryMu.RLock()
	factory, ok := processorFactories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown processing backend: %s", name)
	}
	return factory(cfg)
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(processorFactories))
	for name := range processorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
