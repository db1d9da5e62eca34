// Package companion wires the full analysis pipeline: library, premise and
// module selection, prompt assembly, provider dispatch, parsing, and the
// optional history store and result cache.
package companion

import (
	"context"
	"log"

	"raicompanion/internal/analysis"
	"raicompanion/internal/cache"
	"raicompanion/internal/config"
	"raicompanion/internal/dispatch"
	"raicompanion/internal/library"
	"raicompanion/internal/observability"
	"raicompanion/internal/parse"
	"raicompanion/internal/premise"
	"raicompanion/internal/prompt"
	"raicompanion/internal/provider"
	"raicompanion/internal/scoring"
	"raicompanion/internal/store"
)

type App struct {
	Config   config.Config
	Library  *library.Library
	Engine   *Engine
	Registry *dispatch.Registry
	Observer *observability.DispatchObserver
	Store    *store.Store
	Cache    *cache.Cache
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	lib, err := library.Load(cfg.Library.PremisePath, cfg.Library.ModulePath)
	if err != nil {
		return nil, err
	}

	var st *store.Store
	if cfg.Database.DSN != "" {
		st, err = store.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx, st.DB()); err != nil {
			return nil, err
		}
	} else {
		log.Printf("companion store=disabled reason=no_dsn")
	}

	var ca *cache.Cache
	if cfg.Redis.URL != "" {
		ca, err = cache.New(cfg.Redis.URL, cfg.Redis.CacheTTL)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("companion cache=disabled reason=no_redis_url")
	}

	observer := observability.NewDispatchObserver(nil)
	reg := buildRegistry(cfg)
	dispatcher := dispatch.NewEngine(reg, cfg.Analysis.BackoffBase, cfg.Analysis.Timeout, observer)

	scorer := scoring.KeywordScorer{}
	modes := analysis.Modes{}
	for name, m := range cfg.Modes {
		modes[name] = analysis.Mode{Name: name, MaxModules: m.MaxModules, OutputMode: m.OutputMode, Focus: m.Focus}
	}

	engine := &Engine{
		premises: premise.NewSelector(lib, scorer, premise.Limits{
			MaxPrimary:          cfg.Analysis.MaxPrimaryPremises,
			MaxSecondary:        cfg.Analysis.MaxSecondaryPremises,
			MinRelevance:        cfg.Analysis.MinRelevance,
			PremiseThreshold:    cfg.Analysis.PremiseThreshold,
			EnableWisdomOverlay: cfg.Analysis.EnableWisdomOverlay,
		}),
		modules:      analysis.NewSelector(lib, scorer, modes, cfg.Analysis.MinRelevance, cfg.Analysis.AutoSelectModules),
		assembler:    prompt.NewAssembler(scoring.CharEstimator{}),
		dispatcher:   dispatcher,
		parser:       parse.NewParser(),
		store:        st,
		cache:        ca,
		defaultModel: cfg.Analysis.DefaultModel,
		fallbacks:    cfg.Analysis.FallbackModels,
		maxInput:     cfg.Analysis.MaxInputLength,
		promptBudget: promptBudget(cfg),
	}

	return &App{
		Config:   cfg,
		Library:  lib,
		Engine:   engine,
		Registry: reg,
		Observer: observer,
		Store:    st,
		Cache:    ca,
	}, nil
}

// buildRegistry registers one adapter per enabled provider. Disabled
// providers stay unregistered and therefore unresolvable.
func buildRegistry(cfg config.Config) *dispatch.Registry {
	reg := dispatch.NewRegistry()
	for name, p := range cfg.Providers {
		if !p.Enabled {
			continue
		}
		adapter := buildAdapter(cfg, name, p)
		if adapter == nil {
			log.Printf("companion provider=%s registered=false reason=no_adapter", name)
			continue
		}
		reg.Register(adapter, dispatch.Settings{
			MaxTokens:   p.MaxTokens,
			Temperature: p.Temperature,
			Timeout:     p.Timeout,
			MaxRetries:  p.MaxRetries,
		})
	}
	for name, a := range cfg.Aliases {
		reg.AddAlias(name, dispatch.Alias{Provider: a.Provider, Model: a.Model})
	}
	return reg
}

func buildAdapter(cfg config.Config, name string, p config.Provider) provider.Provider {
	switch name {
	case "openai", "deepseek":
		return provider.NewOpenAI(name, p.APIKey, p.Model, p.BaseURL)
	case "anthropic":
		return provider.NewAnthropic(p.APIKey, p.Model, p.BaseURL)
	case "gemini":
		return provider.NewGemini(p.APIKey, p.Model, p.BaseURL)
	case "ollama":
		return provider.NewOllama(p.BaseURL, p.Model)
	case "mock":
		if !cfg.Dev.MockResponses {
			return nil
		}
		delay := mockDelay
		if !cfg.Dev.SimulateDelays {
			delay = 0
		}
		return provider.NewMock(p.Model, delay)
	}
	return nil
}

// promptBudget sizes the assembled prompt from the default provider's
// completion cap. Chat models give the prompt window several times the
// completion budget.
func promptBudget(cfg config.Config) int {
	name := cfg.Analysis.DefaultModel
	if a, ok := cfg.Aliases[name]; ok {
		name = a.Provider
	}
	if p, ok := cfg.Providers[name]; ok && p.MaxTokens > 0 {
		return p.MaxTokens * 2
	}
	return 8000
}

func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	return err
}
