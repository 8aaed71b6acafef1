// Package defaults lets a model save its current attribute values into
// per-user session state as defaults and reload them later. The persister
// mediates between a Model and a session.Store; it owns neither.
package defaults

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-defaults/pkg/activity"
	"github.com/goliatone/go-defaults/pkg/session"
)

// Persister saves and restores default attribute values for one model type.
// It is stateless per call; all persistence goes through the injected store.
//
// Save/Load/Reset perform at most one read and one write against the store.
// The read-modify-write merge is not atomic: two requests racing on the same
// model type interleave with last-writer-wins, which is accepted because the
// host serializes per-session access in practice.
type Persister struct {
	store     session.Store
	whitelist []string
	allowed   map[string]struct{}
	cfg       persisterConfig
}

// New constructs a Persister over store for the given attribute whitelist.
// Only whitelisted attribute names may ever be saved or loaded; the list is
// fixed for the lifetime of the persister.
func New(store session.Store, attributes []string, opts ...Option) (*Persister, error) {
	if store == nil {
		return nil, fmt.Errorf("defaults: store is required")
	}
	if len(attributes) == 0 {
		return nil, fmt.Errorf("defaults: at least one attribute is required")
	}

	allowed := make(map[string]struct{}, len(attributes))
	whitelist := make([]string, 0, len(attributes))
	for _, name := range attributes {
		if name == "" {
			return nil, fmt.Errorf("defaults: attribute names must not be empty")
		}
		if _, dup := allowed[name]; dup {
			continue
		}
		allowed[name] = struct{}{}
		whitelist = append(whitelist, name)
	}

	return &Persister{
		store:     store,
		whitelist: whitelist,
		allowed:   allowed,
		cfg:       applyOptions(opts),
	}, nil
}

// Attributes returns a copy of the configured whitelist.
func (p *Persister) Attributes() []string {
	return append([]string(nil), p.whitelist...)
}

// StateKey derives the session key the model's defaults are stored under:
// the configured prefix plus the lower-cased model type name. Two model
// types never collide; all instances of one type share a single snapshot.
func (p *Persister) StateKey(model Model) string {
	return p.cfg.prefix + strings.ToLower(modelTypeName(model))
}

// Save persists the selected attributes' current model values as defaults.
//
// All() replaces the stored snapshot with the whitelisted attributes' values.
// Attrs(...) merges the named attributes into the existing snapshot: values
// saved now win, previously stored names not in this call are preserved.
// Attr(name) merges that one pair; a name outside the whitelist fails with
// an InvalidAttributeError before anything is written.
func (p *Persister) Save(ctx context.Context, model Model, sel Selector) error {
	start := time.Now()
	key := p.StateKey(model)

	var (
		names      []string
		snapshotID string
		err        error
	)

	switch sel.kind {
	case selectOne:
		if !p.configured(sel.name) {
			err = invalidAttribute(OpSave, sel.name)
		} else {
			names = []string{sel.name}
		}
	case selectMany:
		names = p.intersect(sel.names)
	default:
		names = append([]string(nil), p.whitelist...)
	}

	if err == nil {
		var meta session.Meta
		meta, err = p.writeSnapshot(ctx, key, model, names, sel.kind == selectAll)
		snapshotID = meta.SnapshotID
	}

	p.emit(ctx, OpSave, key, names, snapshotID, false, start, err)
	return err
}

// Load applies stored defaults onto the model.
//
// All() applies the whole snapshot; Attrs(...) applies only the stored keys
// intersecting the list (missing keys are skipped); Attr(name) applies that
// attribute's stored value, or an explicit nil when the snapshot has no
// entry for it. A single name outside the whitelist fails with an
// InvalidAttributeError before the model is touched.
//
// When no snapshot has ever been stored, the model's AttributeDefaults hook
// (or the configured fallback source) supplies the initial values; absent
// both, nothing is applied.
//
// Values go through the model's SetAttributes bulk path with the effective
// safe-only flag: the per-call override when given, else the configured
// default. Safe-only true lets the model silently skip unsafe attributes.
func (p *Persister) Load(ctx context.Context, model Model, sel Selector, opts ...LoadOption) error {
	start := time.Now()
	key := p.StateKey(model)

	var cfg loadConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	safeOnly := p.cfg.safeOnly
	if cfg.safeOnly != nil {
		safeOnly = *cfg.safeOnly
	}

	if sel.kind == selectOne && !p.configured(sel.name) {
		err := invalidAttribute(OpLoad, sel.name)
		p.emit(ctx, OpLoad, key, nil, "", safeOnly, start, err)
		return err
	}

	stored, meta, ok, err := p.store.Get(ctx, key)
	if err != nil {
		err = fmt.Errorf("defaults: load snapshot %q: %w", key, err)
		p.emit(ctx, OpLoad, key, nil, "", safeOnly, start, err)
		return err
	}
	if !ok {
		stored = p.initialDefaults(model)
	}

	selected := map[string]any{}
	var applied []string
	switch sel.kind {
	case selectOne:
		// Absent entries load as an explicit nil, not a no-op.
		selected[sel.name] = stored[sel.name]
		applied = []string{sel.name}
	case selectMany:
		for _, name := range p.intersect(sel.names) {
			if value, present := stored[name]; present {
				selected[name] = value
				applied = append(applied, name)
			}
		}
	default:
		for _, name := range p.whitelist {
			if value, present := stored[name]; present {
				selected[name] = value
				applied = append(applied, name)
			}
		}
	}

	model.SetAttributes(selected, safeOnly)

	p.emit(ctx, OpLoad, key, applied, meta.SnapshotID, safeOnly, start, nil)
	return nil
}

// Reset removes stored defaults.
//
// All() deletes the snapshot entirely, so a later Load falls back to the
// AttributeDefaults hook again. Attrs(...) and Attr(name) remove only the
// named keys and write the reduced snapshot back; the snapshot stays
// present even when emptied, so partial resets never re-trigger the hook.
// Resetting keys that were never stored is a no-op.
func (p *Persister) Reset(ctx context.Context, model Model, sel Selector) error {
	start := time.Now()
	key := p.StateKey(model)

	var (
		removed    []string
		snapshotID string
		err        error
	)

	switch sel.kind {
	case selectAll:
		if derr := p.store.Delete(ctx, key); derr != nil {
			err = fmt.Errorf("defaults: delete snapshot %q: %w", key, derr)
		}
	default:
		names := sel.names
		if sel.kind == selectOne {
			names = []string{sel.name}
		}
		removed, snapshotID, err = p.removeFromSnapshot(ctx, key, names)
	}

	p.emit(ctx, OpReset, key, removed, snapshotID, false, start, err)
	return err
}

func (p *Persister) writeSnapshot(ctx context.Context, key string, model Model, names []string, replace bool) (session.Meta, error) {
	snapshot := session.Values{}
	if !replace {
		stored, _, ok, err := p.store.Get(ctx, key)
		if err != nil {
			return session.Meta{}, fmt.Errorf("defaults: load snapshot %q: %w", key, err)
		}
		if ok {
			snapshot = stored
		}
	}

	values := model.Attributes(names)
	for _, name := range names {
		if value, present := values[name]; present {
			snapshot[name] = value
		}
	}

	meta, err := p.store.Set(ctx, key, snapshot, session.Meta{})
	if err != nil {
		return session.Meta{}, fmt.Errorf("defaults: save snapshot %q: %w", key, err)
	}
	return meta, nil
}

func (p *Persister) removeFromSnapshot(ctx context.Context, key string, names []string) ([]string, string, error) {
	stored, _, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("defaults: load snapshot %q: %w", key, err)
	}
	if !ok {
		return nil, "", nil
	}

	var removed []string
	for _, name := range names {
		if _, present := stored[name]; present {
			delete(stored, name)
			removed = append(removed, name)
		}
	}

	meta, err := p.store.Set(ctx, key, stored, session.Meta{})
	if err != nil {
		return removed, "", fmt.Errorf("defaults: save snapshot %q: %w", key, err)
	}
	return removed, meta.SnapshotID, nil
}

func (p *Persister) initialDefaults(model Model) session.Values {
	if defaulter, ok := model.(AttributeDefaulter); ok {
		return session.Values(defaulter.AttributeDefaults())
	}
	if p.cfg.fallback != nil {
		return session.Values(p.cfg.fallback.AttributeDefaults())
	}
	return session.Values{}
}

func (p *Persister) configured(name string) bool {
	_, ok := p.allowed[name]
	return ok
}

func (p *Persister) intersect(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !p.configured(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (p *Persister) emit(ctx context.Context, op Operation, key string, names []string, snapshotID string, safeOnly bool, start time.Time, opErr error) {
	var hookErr error
	if opErr == nil && p.cfg.hooks.Enabled() {
		input := activity.DefaultsEventInput{
			ActorID:    p.cfg.actorID,
			StateKey:   key,
			Attributes: names,
			SnapshotID: snapshotID,
			SafeOnly:   safeOnly,
		}
		var event activity.Event
		switch op {
		case OpSave:
			event = activity.BuildDefaultsSavedEvent(input)
		case OpLoad:
			event = activity.BuildDefaultsLoadedEvent(input)
		default:
			event = activity.BuildDefaultsResetEvent(input)
		}
		hookErr = p.cfg.hooks.Notify(ctx, event)
	}

	p.logger().LogOperation(OperationLogEvent{
		Op:         op,
		StateKey:   key,
		Attributes: names,
		Duration:   time.Since(start),
		Err:        opErr,
		HookErr:    hookErr,
	})
}

func (p *Persister) logger() OperationLogger {
	if p.cfg.logger != nil {
		return p.cfg.logger
	}
	return noopOperationLogger{}
}

func modelTypeName(model Model) string {
	if named, ok := model.(NamedModel); ok {
		if name := named.ModelName(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "model"
	}
	return t.Name()
}
