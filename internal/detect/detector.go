// Package detect holds the heuristics that flag Azure resources as likely
// portal-created. Each heuristic is a pure function of one resource's
// metadata; detectors run in a fixed priority order so indicator output is
// deterministic.
package detect

import (
	"fmt"
	"sort"
	"strings"

	"clickscan/internal/azure"
)

// Options tunes detector evaluation
type Options struct {
	// AutomationMarkers are extra tag markers merged with the built-in set
	AutomationMarkers []string
}

// Detector represents one portal-creation heuristic
type Detector interface {
	// Name returns the human-readable name of the detector
	Name() string

	// ArgumentName returns the command-line argument name for the detector
	ArgumentName() string

	// Label returns a unique label identifying the detector
	Label() string

	// Priority fixes the order detectors run in; lower runs first
	Priority() int

	// Detect returns the indicators this heuristic found for the resource,
	// empty when nothing triggers
	Detect(res azure.Resource, opts Options) []string
}

// Registry maintains a central registry of all available detectors
type Registry struct {
	detectors map[string]Detector
}

// NewRegistry creates a new detector registry
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
	}
}

// Register adds a new detector to the registry
func (r *Registry) Register(d Detector) error {
	argName := d.ArgumentName()
	if _, exists := r.detectors[argName]; exists {
		return fmt.Errorf("detector with argument name '%s' already registered", argName)
	}
	r.detectors[argName] = d
	return nil
}

// Get retrieves a detector by its identifier (argument name, label, or name)
func (r *Registry) Get(identifier string) (Detector, error) {
	// First try by argument name (exact match)
	if d, ok := r.detectors[identifier]; ok {
		return d, nil
	}

	// Try case-insensitive match on argument name, label, or name
	identifier = strings.ToLower(identifier)
	for _, d := range r.detectors {
		if strings.ToLower(d.ArgumentName()) == identifier ||
			strings.ToLower(d.Label()) == identifier ||
			strings.ToLower(d.Name()) == identifier {
			return d, nil
		}
	}

	return nil, fmt.Errorf("no detector found for identifier '%s'", identifier)
}

// Detectors returns all registered detectors in priority order
func (r *Registry) Detectors() []Detector {
	detectors := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		detectors = append(detectors, d)
	}
	sort.Slice(detectors, func(i, j int) bool {
		if detectors[i].Priority() != detectors[j].Priority() {
			return detectors[i].Priority() < detectors[j].Priority()
		}
		return detectors[i].ArgumentName() < detectors[j].ArgumentName()
	})
	return detectors
}

// List returns the argument names of all registered detectors in priority order
func (r *Registry) List() []string {
	var names []string
	for _, d := range r.Detectors() {
		names = append(names, d.ArgumentName())
	}
	return names
}

// DefaultRegistry is the default detector registry instance
var DefaultRegistry = NewRegistry()

// Engine evaluates resources through an ordered detector sequence
type Engine struct {
	detectors []Detector
	opts      Options
}

// NewEngine creates an engine over the given detectors, sorted into
// priority order
func NewEngine(detectors []Detector, opts Options) *Engine {
	sorted := make([]Detector, len(detectors))
	copy(sorted, detectors)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority() != sorted[j].Priority() {
			return sorted[i].Priority() < sorted[j].Priority()
		}
		return sorted[i].ArgumentName() < sorted[j].ArgumentName()
	})
	return &Engine{detectors: sorted, opts: opts}
}

// Evaluate runs every detector against the resource and unions their
// indicators in detector priority order
func (e *Engine) Evaluate(res azure.Resource) []string {
	var indicators []string
	for _, d := range e.detectors {
		indicators = append(indicators, d.Detect(res, e.opts)...)
	}
	return indicators
}
