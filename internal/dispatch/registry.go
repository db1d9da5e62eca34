package dispatch

import (
	"fmt"
	"sort"
	"time"

	"raicompanion/internal/provider"
)

// Settings carries the per-provider dispatch knobs from configuration.
type Settings struct {
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
}

// Alias maps a short model name to a provider and canonical model id.
type Alias struct {
	Provider string
	Model    string
}

type entry struct {
	provider provider.Provider
	settings Settings
}

// Registry is the process-wide provider/alias table. It is populated during
// startup and never mutated afterwards, so concurrent readers need no lock.
type Registry struct {
	providers map[string]entry
	aliases   map[string]Alias
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]entry),
		aliases:   make(map[string]Alias),
	}
}

// Register adds an enabled provider. Disabled providers are simply never
// registered, which makes them unresolvable at dispatch time.
func (r *Registry) Register(p provider.Provider, s Settings) {
	r.providers[p.Name()] = entry{provider: p, settings: s}
}

func (r *Registry) AddAlias(name string, a Alias) {
	r.aliases[name] = a
}

// target is a resolved dispatch destination.
type target struct {
	provider provider.Provider
	settings Settings
	model    string
}

// resolve maps a provider name or model alias to a registered provider.
func (r *Registry) resolve(name string) (target, error) {
	model := ""
	providerName := name
	if a, ok := r.aliases[name]; ok {
		providerName = a.Provider
		model = a.Model
	}
	e, ok := r.providers[providerName]
	if !ok {
		return target{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return target{provider: e.provider, settings: e.settings, model: model}, nil
}

// Available lists the resolvable alias and provider names, sorted.
func (r *Registry) Available() []string {
	var out []string
	for name, a := range r.aliases {
		if _, ok := r.providers[a.Provider]; ok {
			out = append(out, name)
		}
	}
	for name := range r.providers {
		if _, aliased := r.aliases[name]; !aliased {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
