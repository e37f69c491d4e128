package device

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// OutputRegistration describes an output backend.
type OutputRegistration interface {
	// CreateOutput creates and registers a new virtual device with the host.
	CreateOutput(o *CreateOptions, logger *slog.Logger) (Output, error)
	// Description is a one-line summary shown by the CLI.
	Description() string
}

var (
	outputRegistry   = make(map[string]OutputRegistration)
	outputRegistryMu sync.RWMutex
)

// RegisterOutput registers an output backend under name.
// This should be called from backend package init() functions.
// The name is case-insensitive.
func RegisterOutput(name string, reg OutputRegistration) {
	outputRegistryMu.Lock()
	defer outputRegistryMu.Unlock()
	outputRegistry[strings.ToLower(name)] = reg
}

// GetOutput retrieves a registered backend by name.
// Returns nil if not found. Name lookup is case-insensitive.
func GetOutput(name string) OutputRegistration {
	outputRegistryMu.RLock()
	defer outputRegistryMu.RUnlock()
	return outputRegistry[strings.ToLower(name)]
}

// ListOutputs returns the sorted names of all registered backends.
func ListOutputs() []string {
	outputRegistryMu.RLock()
	defer outputRegistryMu.RUnlock()
	names := make([]string, 0, len(outputRegistry))
	for name := range outputRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
