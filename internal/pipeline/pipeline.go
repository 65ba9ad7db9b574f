// internal/pipeline/pipeline.go
package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/solatis/renamer/internal/nbt"
	"github.com/solatis/renamer/internal/rules"
	"github.com/solatis/renamer/internal/types"
)

/*
 * Reversible renaming of item snapshots.
 *
 * Process(pack, snapshot):
 *   1. Clone every slot as its pre-image.
 *   2. Resolve the effective rule of every slot against the pre-images. An
 *      unknown pack fails here, before anything is touched.
 *   3. Dispatch through the listener chain. The rename step applies the
 *      resolved rules at its configured tier.
 *   4. Merge per-slot custom data staged by listeners into the items.
 *   5. If any slot that held an item is now empty, restore every slot and
 *      fail with ErrItemDestroyed.
 *   6. Stash the pre-image into every slot whose state changed.
 *
 * Unprocess(item) restores the stashed pre-image wholesale. Items without a
 * stash are untouched, so unprocessing twice is the same as once.
 *
 * A Pipeline is not safe for concurrent use; the caller serializes access.
 */

// Owner is the owner name reserved for the pipeline's own rename step.
const Owner = "renamer"

// SlotState is the outcome of one slot in a processing pass.
type SlotState int

const (
	StateUnprocessed SlotState = iota
	StateRuleApplied
	StateWritten
	StateSkipped
	StateError
)

func (s SlotState) String() string {
	switch s {
	case StateUnprocessed:
		return "unprocessed"
	case StateRuleApplied:
		return "rule_applied"
	case StateWritten:
		return "written"
	case StateSkipped:
		return "skipped"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

// Result reports what one Process call did.
type Result struct {
	Snapshot types.SnapshotID
	Pack     string
	Items    []*types.Item
	Tiers    []rules.Tier
	States   []SlotState
}

// Count returns how many slots ended in state s.
func (r *Result) Count(s SlotState) int {
	n := 0
	for _, st := range r.States {
		if st == s {
			n++
		}
	}
	return n
}

// Options configures a Pipeline.
type Options struct {
	// RenamePriority is the chain tier of the rename step. Defaults to Normal.
	RenamePriority Priority
	// Reporter receives observer failures. Defaults to a LogReporter on Logger.
	Reporter ErrorReporter
	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns options with the rename step at Normal.
func DefaultOptions() Options {
	return Options{RenamePriority: PriorityNormal}
}

// Pipeline applies rename rules to snapshots and reverses them.
type Pipeline struct {
	resolver *rules.Resolver
	chain    *Chain
	log      logrus.FieldLogger
}

// New creates a pipeline resolving against resolver.
func New(resolver *rules.Resolver, opts Options) (*Pipeline, error) {
	if resolver == nil {
		return nil, fmt.Errorf("nil resolver")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NewLogReporter(log)
	}
	chain, err := NewChain(Owner, opts.RenamePriority, reporter)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		resolver: resolver,
		chain:    chain,
		log:      log.WithField("component", "pipeline"),
	}, nil
}

// Chain returns the listener chain third parties register with.
func (p *Pipeline) Chain() *Chain {
	return p.chain
}

// Resolver returns the resolver rules are looked up in.
func (p *Pipeline) Resolver() *rules.Resolver {
	return p.resolver
}

// Process renames every slot of snap according to pack.
func (p *Pipeline) Process(pack string, snap *Snapshot) (*Result, error) {
	pk, err := p.resolver.Registry().Get(pack)
	if err != nil {
		return nil, err
	}

	n := snap.Len()
	pre := make([]*types.Item, n)
	resolved := make([]rules.Resolution, n)
	for i := 0; i < n; i++ {
		pre[i] = snap.Get(i).Clone()
		res, err := rules.ResolveIn(pk, pre[i])
		if err != nil {
			return nil, fmt.Errorf("resolve slot %d: %w", snap.Offset()+i, err)
		}
		resolved[i] = res
	}

	result := &Result{
		Snapshot: snap.ID(),
		Pack:     pk.Name(),
		Items:    snap.Slots(),
		Tiers:    make([]rules.Tier, n),
		States:   make([]SlotState, n),
	}
	for i, res := range resolved {
		result.Tiers[i] = res.Tier
	}

	rename := func(s *Snapshot) error {
		for i := 0; i < s.Len(); i++ {
			if ApplyRule(s.Get(i), resolved[i].Rule) {
				result.States[i] = StateRuleApplied
			}
		}
		return nil
	}

	if err := p.chain.Dispatch(snap, rename); err != nil {
		p.rollback(snap, pre)
		return nil, err
	}

	for i := 0; i < n; i++ {
		if !types.IsEmpty(pre[i]) && types.IsEmpty(snap.Get(i)) {
			p.rollback(snap, pre)
			return nil, fmt.Errorf("%w: slot %d held %v", types.ErrItemDestroyed, snap.Offset()+i, pre[i])
		}
	}

	for i := 0; i < n; i++ {
		post := snap.Get(i)
		if types.IsEmpty(post) {
			result.States[i] = StateSkipped
			continue
		}
		if custom := snap.custom[i]; !custom.IsEmpty() {
			if post.Extra == nil {
				post.Extra = nbt.New()
			}
			post.Extra.Merge(custom)
		}
		if types.SameState(pre[i], post) {
			result.States[i] = StateSkipped
			continue
		}
		if !types.IsEmpty(pre[i]) {
			keepOriginal(post, pre[i])
		}
		result.States[i] = StateWritten
	}

	p.log.WithFields(logrus.Fields{
		"snapshot": snap.ID(),
		"pack":     pk.Name(),
		"slots":    n,
		"written":  result.Count(StateWritten),
	}).Debug("processed snapshot")

	return result, nil
}

// keepOriginal stashes pre into post. A pre-image that was itself produced by
// an earlier pass keeps its stash, so Unprocess always returns to the state
// before the first pass.
func keepOriginal(post, pre *types.Item) {
	if rec, ok := pre.Extra.GetCompound(StashKey); ok {
		if post.Extra == nil {
			post.Extra = nbt.New()
		}
		post.Extra[StashKey] = rec.Clone()
		return
	}
	stash(post, pre)
}

func (p *Pipeline) rollback(snap *Snapshot, pre []*types.Item) {
	for i := range pre {
		snap.slots[i] = pre[i].Clone()
	}
	snap.custom = make(map[int]nbt.Compound)
}

// Unprocess restores item from its stash. Reports whether it was stashed.
func (p *Pipeline) Unprocess(item *types.Item) (bool, error) {
	return Restore(item)
}

// UnprocessAll restores every stashed item in items and returns how many were
// restored. It stops at the first corrupt stash.
func (p *Pipeline) UnprocessAll(items []*types.Item) (int, error) {
	restored := 0
	for i, it := range items {
		ok, err := Restore(it)
		if err != nil {
			return restored, fmt.Errorf("slot %d: %w", i, err)
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}
