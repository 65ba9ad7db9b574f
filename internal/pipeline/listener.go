// internal/pipeline/listener.go
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/renamer/internal/types"
)

/*
 * Ordered observer chain for snapshot processing.
 *
 * Observers run in ascending priority tier (Lowest..Monitor); within a tier in
 * registration order. The pipeline's own rename step is not a registration:
 * it runs once, at its configured tier, ahead of observers registered at that
 * same tier.
 *
 * Isolation:
 *   - Each non-monitor observer runs against a checkpoint of the snapshot.
 *     If it returns an error or panics, the snapshot is restored to the
 *     checkpoint, the failure goes to the ErrorReporter tagged with the
 *     observer's owner, and dispatch continues with the next observer.
 *   - Monitor observers receive a detached copy. Their writes are discarded.
 *   - A failure of the rename step itself is fatal for the dispatch.
 *
 * Registration changes while Dispatch is running are not supported.
 */

// Priority is a listener tier.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
	// PriorityMonitor observers see the final state and must not modify it.
	PriorityMonitor
)

var priorityNames = [...]string{"lowest", "low", "normal", "high", "highest", "monitor"}

func (p Priority) String() string {
	if p < PriorityLowest || p > PriorityMonitor {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// Valid reports whether p is one of the defined tiers.
func (p Priority) Valid() bool {
	return p >= PriorityLowest && p <= PriorityMonitor
}

// ParsePriority parses a tier name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", types.ErrInvalidPriority, s)
}

// Observer receives every snapshot passing through the chain.
type Observer interface {
	OnSnapshot(snap *Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap *Snapshot) error

func (f ObserverFunc) OnSnapshot(snap *Snapshot) error {
	return f(snap)
}

// ErrorReporter receives observer failures.
type ErrorReporter interface {
	Report(owner, operation string, err error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(owner, operation string, err error)

func (f ReporterFunc) Report(owner, operation string, err error) {
	f(owner, operation, err)
}

// operationSnapshot is the operation name reported for observer failures.
const operationSnapshot = "OnSnapshot"

type registration struct {
	id       types.ListenerID
	owner    string
	priority Priority
	seq      uint64
	observer Observer
}

// Chain is an ordered set of observers plus the slot for the pipeline's own
// rename step.
type Chain struct {
	self       string
	renameTier Priority
	reporter   ErrorReporter
	regs       []registration
	seq        uint64
}

// NewChain creates an empty chain. self is the owner reserved for the
// rename step; renameTier is the tier it runs at.
func NewChain(self string, renameTier Priority, reporter ErrorReporter) (*Chain, error) {
	if !renameTier.Valid() || renameTier == PriorityMonitor {
		return nil, fmt.Errorf("%w: rename step cannot run at %s", types.ErrInvalidPriority, renameTier)
	}
	if reporter == nil {
		reporter = ReporterFunc(func(string, string, error) {})
	}
	return &Chain{
		self:       self,
		renameTier: renameTier,
		reporter:   reporter,
	}, nil
}

// RenameTier returns the tier the rename step runs at.
func (c *Chain) RenameTier() Priority {
	return c.renameTier
}

// Add registers an observer and returns its registration ID.
func (c *Chain) Add(owner string, priority Priority, obs Observer) (types.ListenerID, error) {
	if owner == c.self {
		return "", fmt.Errorf("%w: %q", types.ErrSelfRegistration, owner)
	}
	if !priority.Valid() {
		return "", fmt.Errorf("%w: %d", types.ErrInvalidPriority, int(priority))
	}
	if obs == nil {
		return "", fmt.Errorf("nil observer for owner %q", owner)
	}

	c.seq++
	reg := registration{
		id:       types.NewListenerID(),
		owner:    owner,
		priority: priority,
		seq:      c.seq,
		observer: obs,
	}

	// Insert after every registration at or below this tier.
	i := sort.Search(len(c.regs), func(i int) bool { return c.regs[i].priority > priority })
	c.regs = append(c.regs, registration{})
	copy(c.regs[i+1:], c.regs[i:])
	c.regs[i] = reg
	return reg.id, nil
}

// Remove drops one registration. Reports whether it existed.
func (c *Chain) Remove(id types.ListenerID) bool {
	for i, reg := range c.regs {
		if reg.id == id {
			c.regs = append(c.regs[:i], c.regs[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops every registration of owner and returns how many were removed.
func (c *Chain) RemoveAll(owner string) int {
	kept := c.regs[:0]
	for _, reg := range c.regs {
		if reg.owner != owner {
			kept = append(kept, reg)
		}
	}
	removed := len(c.regs) - len(kept)
	for i := len(kept); i < len(c.regs); i++ {
		c.regs[i] = registration{}
	}
	c.regs = kept
	return removed
}

// Len returns the number of registrations.
func (c *Chain) Len() int {
	return len(c.regs)
}

// Owners returns the distinct registered owners in dispatch order.
func (c *Chain) Owners() []string {
	seen := make(map[string]bool, len(c.regs))
	var out []string
	for _, reg := range c.regs {
		if !seen[reg.owner] {
			seen[reg.owner] = true
			out = append(out, reg.owner)
		}
	}
	return out
}

// Dispatch runs every observer and the rename step over snap. It returns an
// error only when rename fails; observer failures are reported and rolled
// back.
func (c *Chain) Dispatch(snap *Snapshot, rename func(*Snapshot) error) error {
	ran := false
	runRename := func() error {
		ran = true
		if rename == nil {
			return nil
		}
		if err := safeCall(func() error { return rename(snap) }); err != nil {
			return fmt.Errorf("%w: %v", types.ErrRenameFailed, err)
		}
		return nil
	}

	for _, reg := range c.regs {
		if !ran && reg.priority >= c.renameTier {
			if err := runRename(); err != nil {
				return err
			}
		}
		c.invoke(reg, snap)
	}
	if !ran {
		return runRename()
	}
	return nil
}

func (c *Chain) invoke(reg registration, snap *Snapshot) {
	if reg.priority == PriorityMonitor {
		view := snap.clone()
		if err := safeCall(func() error { return reg.observer.OnSnapshot(view) }); err != nil {
			c.reporter.Report(reg.owner, operationSnapshot, err)
		}
		return
	}

	checkpoint := snap.clone()
	if err := safeCall(func() error { return reg.observer.OnSnapshot(snap) }); err != nil {
		snap.restore(checkpoint)
		c.reporter.Report(reg.owner, operationSnapshot, err)
	}
}

// safeCall runs fn, converting a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
