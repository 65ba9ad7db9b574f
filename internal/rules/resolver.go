// internal/rules/resolver.go
package rules

import (
	"fmt"

	"github.com/solatis/renamer/internal/types"
)

/*
 * Two-tier rule resolution.
 *
 * Resolution order for one item within one pack:
 *   1. Exact tier: the pack's ExactTable. A hit returns immediately; exact
 *      rules are never merged with range rules.
 *   2. Range tier: the RangeTable of the item's type, GetEffective on the
 *      item's sub-variant. Ranged when a stored range matched, Fallback when
 *      only OTHER/ALL applied.
 *
 * The tier decides the skip-if-customized flag of the returned rule: exact
 * rules always override an existing custom name or lore (the operator
 * targeted this item), ranged and fallback rules leave such items alone.
 *
 * Resolvers never mutate packs.
 */

// Tier identifies which lookup produced a rule.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierRanged
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierRanged:
		return "ranged"
	case TierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Resolution is a resolved rule tagged with its tier. Rule is nil for TierNone.
type Resolution struct {
	Tier Tier
	Rule *Rule
}

// Resolver looks up effective rules in a registry.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver over reg.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Registry returns the registry the resolver reads.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the effective rule for item in the named pack, or nil.
// Returns ErrUnknownPack when the pack is not registered.
func (r *Resolver) Resolve(pack string, item *types.Item) (*Rule, error) {
	res, err := r.ResolveTier(pack, item)
	if err != nil {
		return nil, err
	}
	return res.Rule, nil
}

// ResolveTier is Resolve plus the tier that produced the rule.
func (r *Resolver) ResolveTier(pack string, item *types.Item) (Resolution, error) {
	p, err := r.registry.Get(pack)
	if err != nil {
		return Resolution{}, err
	}
	return ResolveIn(p, item)
}

// ResolveIn resolves item against an already looked-up pack. Empty slots
// resolve to TierNone.
func ResolveIn(p *Pack, item *types.Item) (Resolution, error) {
	if types.IsEmpty(item) {
		return Resolution{Tier: TierNone}, nil
	}

	exact, err := p.Exact().GetRule(item)
	if err != nil {
		return Resolution{}, fmt.Errorf("pack %q: %w", p.Name(), err)
	}
	if exact != nil {
		return finalize(Resolution{Tier: TierExact, Rule: exact}), nil
	}

	table, ok := p.Ranges(item.TypeID)
	if !ok {
		return Resolution{Tier: TierNone}, nil
	}
	rule, defined := table.lookup(item.Damage)
	switch {
	case rule == nil:
		return Resolution{Tier: TierNone}, nil
	case defined:
		return finalize(Resolution{Tier: TierRanged, Rule: rule}), nil
	default:
		return finalize(Resolution{Tier: TierFallback, Rule: rule}), nil
	}
}

// finalize applies the per-tier skip-if-customized policy.
func finalize(res Resolution) Resolution {
	switch res.Tier {
	case TierExact:
		res.Rule = res.Rule.WithSkip(false)
	case TierRanged, TierFallback:
		res.Rule = res.Rule.WithSkip(true)
	case TierNone:
		res.Rule = nil
	}
	return res
}
