/*
registry.go - Named constant-set registration and lookup

PURPOSE:
  Provides a process-wide registry of constant sets keyed by id ("ab-2025").
  Built-in presets register on init; the API and CLI register sets loaded
  from files or the database so callers can pick a tax year by name.

HOW IT WORKS:
  1. init() registers the built-in presets
  2. Loaders (factory, store) call RegisterConstantSet for each extra set
  3. LookupConstantSet returns a clone, so callers cannot mutate the
     registered copy

SEE ALSO:
  - constants.go: ConstantSet and presets
  - api/handlers.go: Resolves calculators by constant set id
*/
package payroll

import (
	"fmt"
	"sort"
	"sync"

	"github.com/warp/paycalc/generic"
)

// =============================================================================
// CONSTANT SET REGISTRY
// =============================================================================

var (
	constantSetRegistry = make(map[string]ConstantSet)
	registryMu          sync.RWMutex
)

func init() {
	RegisterConstantSet(Alberta2025())
}

// RegisterConstantSet adds or replaces a set in the registry.
func RegisterConstantSet(cs ConstantSet) {
	registryMu.Lock()
	defer registryMu.Unlock()
	constantSetRegistry[cs.ID] = cs.Clone()
}

// UnregisterConstantSet removes a set. Built-in presets can be removed too;
// tests that do so should re-register them.
func UnregisterConstantSet(id string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(constantSetRegistry, id)
}

// LookupConstantSet finds a registered set by id.
func LookupConstantSet(id string) (ConstantSet, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cs, ok := constantSetRegistry[id]
	if !ok {
		return ConstantSet{}, fmt.Errorf("%w: %q", generic.ErrConstantSetNotFound, id)
	}
	return cs.Clone(), nil
}

// MustLookupConstantSet finds a registered set or panics.
// Use in tests or when you're certain the set exists.
func MustLookupConstantSet(id string) ConstantSet {
	cs, err := LookupConstantSet(id)
	if err != nil {
		panic(err)
	}
	return cs
}

// ConstantSetIDs returns the registered ids in sorted order.
func ConstantSetIDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(constantSetRegistry))
	for id := range constantSetRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
