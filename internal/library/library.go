package library

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Premise is one reusable interpretive lens. Keywords drive applicability
// scoring; Weight expresses how central the premise is within its dimension.
type Premise struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Content  string   `yaml:"content"`
	Keywords []string `yaml:"keywords"`
	Contexts []string `yaml:"contexts"`
	Weight   float64  `yaml:"weight"`
}

// Module is one reusable analytical procedure. The ID prefix encodes its
// level: CL (cross-level), FL (fact), NL (narrative), SL (system).
type Module struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Purpose       string   `yaml:"purpose"`
	CoreQuestions []string `yaml:"core_questions"`
	AnchorPremises []string `yaml:"anchor_premises"`
	Keywords      []string `yaml:"keywords"`
	Weight        float64  `yaml:"weight"`
}

// Library is the read-only premise/module registry. Loaded once at startup
// and shared by all requests; never mutated afterwards.
type Library struct {
	premises map[string]Premise
	modules  map[string]Module
}

type premiseFile struct {
	Premises []Premise `yaml:"premises"`
}

type moduleFile struct {
	Modules []Module `yaml:"modules"`
}

// New builds a library from explicit content, bypassing files.
func New(premises []Premise, modules []Module) *Library {
	lib := &Library{
		premises: make(map[string]Premise, len(premises)),
		modules:  make(map[string]Module, len(modules)),
	}
	for _, p := range premises {
		lib.premises[p.ID] = p
	}
	for _, m := range modules {
		lib.modules[m.ID] = m
	}
	return lib
}

// Load builds the library from the optional yaml overlays. Empty paths fall
// back to the built-in content.
func Load(premisePath, modulePath string) (*Library, error) {
	lib := &Library{
		premises: make(map[string]Premise),
		modules:  make(map[string]Module),
	}
	for _, p := range defaultPremises() {
		lib.premises[p.ID] = p
	}
	for _, m := range defaultModules() {
		lib.modules[m.ID] = m
	}

	if premisePath != "" {
		data, err := os.ReadFile(premisePath)
		if err != nil {
			return nil, fmt.Errorf("library: read premises: %w", err)
		}
		var pf premiseFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("library: parse premises: %w", err)
		}
		for _, p := range pf.Premises {
			if p.ID == "" {
				return nil, fmt.Errorf("library: premise without id in %s", premisePath)
			}
			lib.premises[p.ID] = p
		}
	}
	if modulePath != "" {
		data, err := os.ReadFile(modulePath)
		if err != nil {
			return nil, fmt.Errorf("library: read modules: %w", err)
		}
		var mf moduleFile
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return nil, fmt.Errorf("library: parse modules: %w", err)
		}
		for _, m := range mf.Modules {
			if m.ID == "" {
				return nil, fmt.Errorf("library: module without id in %s", modulePath)
			}
			lib.modules[m.ID] = m
		}
	}
	return lib, nil
}

// Premises returns all premises ordered by id.
func (l *Library) Premises() []Premise {
	out := make([]Premise, 0, len(l.premises))
	for _, p := range l.premises {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Modules returns all modules ordered by id.
func (l *Library) Modules() []Module {
	out := make([]Module, 0, len(l.modules))
	for _, m := range l.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *Library) Premise(id string) (Premise, bool) {
	p, ok := l.premises[id]
	return p, ok
}

func (l *Library) Module(id string) (Module, bool) {
	m, ok := l.modules[id]
	return m, ok
}
