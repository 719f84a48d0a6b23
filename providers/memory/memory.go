// Package memory provides an in-memory flag provider. It is useful for
// tests, local development and applications whose flag set is defined in
// code or loaded once at startup.
package memory

import (
	"context"
	"sync"

	"github.com/OrlandoBitencourt/pennant"
)

// TargetedVariant routes an evaluation to a named variant when all of its
// rules pass against the evaluation attributes (AND semantics, registration
// order).
type TargetedVariant struct {
	Variant string
	Rules   []pennant.TargetingRule
}

// Flag is an in-memory flag definition: a set of named variant values, an
// ordered list of targeted variants, and the default variant used when no
// targeting matches.
type Flag struct {
	Key            string
	Enabled        bool
	DefaultVariant string
	Variants       map[string]pennant.Value
	Targeting      []TargetedVariant
}

// Provider is an in-memory implementation of pennant.Provider. Flags may be
// managed at runtime; reads and evaluations take a shared lock.
type Provider struct {
	mu    sync.RWMutex
	flags map[string]Flag
	state pennant.ProviderState
}

// New creates a provider holding the given flags. The provider starts in
// NotReady; call Initialize (normally via Client.Start) before evaluating.
func New(flags ...Flag) (*Provider, error) {
	p := &Provider{
		flags: make(map[string]Flag, len(flags)),
		state: pennant.StateNotReady,
	}
	for _, f := range flags {
		if err := validate(f); err != nil {
			return nil, err
		}
		p.flags[f.Key] = cloneFlag(f)
	}
	return p, nil
}

func validate(f Flag) error {
	if f.Key == "" {
		return pennant.NewProviderError(pennant.ErrCodeGeneral, "flag key cannot be empty")
	}
	if f.DefaultVariant != "" {
		if _, ok := f.Variants[f.DefaultVariant]; !ok {
			return pennant.NewProviderError(pennant.ErrCodeGeneral,
				"default variant "+f.DefaultVariant+" not defined for flag "+f.Key)
		}
	}
	for _, tv := range f.Targeting {
		if _, ok := f.Variants[tv.Variant]; !ok {
			return pennant.NewProviderError(pennant.ErrCodeGeneral,
				"targeted variant "+tv.Variant+" not defined for flag "+f.Key)
		}
	}
	return nil
}

func (p *Provider) Metadata() pennant.ProviderMetadata {
	return pennant.ProviderMetadata{Name: "memory"}
}

func (p *Provider) State() pennant.ProviderState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == pennant.StateShutdown {
		return pennant.NewProviderError(pennant.ErrCodeGeneral, "provider already shut down")
	}
	p.state = pennant.StateReady
	return nil
}

func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = pennant.StateShutdown
	return nil
}

// Evaluate resolves flagKey for the given attributes: the first targeted
// variant whose rules all pass wins; otherwise the default variant. Disabled
// flags resolve to the default variant without consulting targeting.
func (p *Provider) Evaluate(ctx context.Context, flagKey string, attrs pennant.Attributes) (pennant.Value, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state != pennant.StateReady {
		return pennant.Null, &pennant.ProviderError{
			Code:    pennant.ErrCodeProviderNotReady,
			Message: "memory provider is " + string(p.state),
		}
	}

	flag, ok := p.flags[flagKey]
	if !ok {
		return pennant.Null, &pennant.ProviderError{
			Code:    pennant.ErrCodeFlagNotFound,
			Message: "flag not found: " + flagKey,
			Details: map[string]any{"flag_key": flagKey},
		}
	}

	if flag.Enabled {
		for _, tv := range flag.Targeting {
			if rulesPass(tv.Rules, attrs) {
				return flag.Variants[tv.Variant], nil
			}
		}
	}

	if flag.DefaultVariant == "" {
		return pennant.Null, &pennant.ProviderError{
			Code:    pennant.ErrCodeGeneral,
			Message: "flag " + flagKey + " has no default variant",
		}
	}
	return flag.Variants[flag.DefaultVariant], nil
}

func rulesPass(rules []pennant.TargetingRule, attrs pennant.Attributes) bool {
	for _, rule := range rules {
		matched, _ := rule.Evaluate(attrs)
		if !matched {
			return false
		}
	}
	return true
}

// SetFlag adds or replaces a flag definition.
func (p *Provider) SetFlag(f Flag) error {
	if err := validate(f); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flags[f.Key] = cloneFlag(f)
	return nil
}

// DeleteFlag removes a flag definition. Deleting an unknown key is a no-op.
func (p *Provider) DeleteFlag(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.flags, key)
}

// ListFlags returns the currently defined flag keys.
func (p *Provider) ListFlags() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.flags))
	for k := range p.flags {
		keys = append(keys, k)
	}
	return keys
}

func cloneFlag(f Flag) Flag {
	cp := f
	cp.Variants = make(map[string]pennant.Value, len(f.Variants))
	for k, v := range f.Variants {
		cp.Variants[k] = v
	}
	cp.Targeting = make([]TargetedVariant, len(f.Targeting))
	copy(cp.Targeting, f.Targeting)
	return cp
}
