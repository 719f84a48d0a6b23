package pennant

// EvaluationContext is an immutable attribute set describing the subject of a
// flag evaluation (user, request, environment), optionally chained to a
// parent context and carrying an ordered list of targeting rules.
//
// Attribute lookup resolves to the nearest ancestor (including self) that
// defines the key; a context's own attributes always shadow its ancestors.
// Contexts are never mutated after construction and are safe to share across
// concurrent evaluations.
type EvaluationContext struct {
	attributes Attributes
	parent     *EvaluationContext
	rules      []TargetingRule
}

// NewEvaluationContext creates a root context with the given attributes and
// rules. Both are copied.
func NewEvaluationContext(attrs Attributes, rules ...TargetingRule) *EvaluationContext {
	return &EvaluationContext{
		attributes: attrs.Clone(),
		rules:      cloneRules(rules),
	}
}

// EmptyContext returns a context with no attributes, rules or parent.
func EmptyContext() *EvaluationContext {
	return &EvaluationContext{attributes: Attributes{}}
}

// GetAttribute returns the value for key, consulting the parent chain when
// the context itself does not define it. The second return is false when no
// ancestor defines the key.
func (c *EvaluationContext) GetAttribute(key string) (Value, bool) {
	if v, ok := c.attributes[key]; ok {
		return v, true
	}
	if c.parent != nil {
		return c.parent.GetAttribute(key)
	}
	return Null, false
}

// Attributes returns a copy of the context's own attribute set, without
// ancestor resolution.
func (c *EvaluationContext) Attributes() Attributes {
	return c.attributes.Clone()
}

// Flatten returns the effective attribute set: the full ancestor chain
// collapsed into one map with descendants shadowing ancestors.
func (c *EvaluationContext) Flatten() Attributes {
	if c.parent == nil {
		return c.attributes.Clone()
	}
	flat := c.parent.Flatten()
	for k, v := range c.attributes {
		flat[k] = v
	}
	return flat
}

// Rules returns a copy of the context's own rule list, in registration order.
func (c *EvaluationContext) Rules() []TargetingRule {
	return cloneRules(c.rules)
}

// Parent returns the parent context, or nil for a root context.
func (c *EvaluationContext) Parent() *EvaluationContext { return c.parent }

// Merge produces a new standalone context. Its attribute set is the
// receiver's flattened ancestor chain overlaid with other's own attributes
// (other wins on conflicts); its rule list is the receiver's rules followed
// by other's rules, duplicates allowed. The result has no parent: merging
// collapses hierarchy rather than preserving it.
func (c *EvaluationContext) Merge(other *EvaluationContext) *EvaluationContext {
	if other == nil {
		return &EvaluationContext{
			attributes: c.Flatten(),
			rules:      cloneRules(c.rules),
		}
	}

	attrs := c.Flatten()
	for k, v := range other.attributes {
		attrs[k] = v
	}

	rules := make([]TargetingRule, 0, len(c.rules)+len(other.rules))
	rules = append(rules, c.rules...)
	rules = append(rules, other.rules...)

	return &EvaluationContext{attributes: attrs, rules: rules}
}

// CreateChild creates a new context whose parent is the receiver. The
// receiver is not modified; parents never reference their children.
func (c *EvaluationContext) CreateChild(attrs Attributes, rules ...TargetingRule) *EvaluationContext {
	return &EvaluationContext{
		attributes: attrs.Clone(),
		parent:     c,
		rules:      cloneRules(rules),
	}
}

// EvaluateRules reports whether the whole ancestor chain passes its
// targeting rules. Ancestor rules are required first (fail-closed: any
// ancestor failure short-circuits without evaluating descendant rules), then
// the context's own rules run in registration order against the flattened
// attribute set, AND-composed with short-circuit on the first non-match.
//
// A context with no rules trivially passes. A rule that cannot be applied
// (type mismatch, missing attribute) counts as a non-match rather than an
// error; callers needing the diagnostic evaluate rules individually.
func (c *EvaluationContext) EvaluateRules() bool {
	if c.parent != nil && !c.parent.EvaluateRules() {
		return false
	}

	if len(c.rules) == 0 {
		return true
	}

	attrs := c.Flatten()
	for _, rule := range c.rules {
		matched, _ := rule.Evaluate(attrs)
		if !matched {
			return false
		}
	}
	return true
}

func cloneRules(rules []TargetingRule) []TargetingRule {
	if len(rules) == 0 {
		return nil
	}
	cp := make([]TargetingRule, len(rules))
	copy(cp, rules)
	return cp
}
