package defaults

import (
	"github.com/goliatone/go-defaults/pkg/activity"
)

// DefaultStateKeyPrefix is prepended to the lower-cased model type name when
// deriving the session state key.
const DefaultStateKeyPrefix = "default_"

// Model is the attribute surface the persister reads and writes. The model
// owns its fields; the persister only moves whitelisted name/value pairs in
// and out.
type Model interface {
	// Attributes returns the current values for names. Names the model does
	// not know are omitted from the result, not null-filled.
	Attributes(names []string) map[string]any
	// SetAttributes bulk-assigns values onto the model's fields. When
	// safeOnly is true the model applies its own mass-assignment filter and
	// silently skips attributes it considers unsafe; when false every value
	// is assigned directly.
	SetAttributes(values map[string]any, safeOnly bool)
}

// AttributeDefaulter is an optional capability. When a model implements it,
// Load uses the returned map as the initial defaults whenever the session
// store has no snapshot for the model's state key.
type AttributeDefaulter interface {
	AttributeDefaults() map[string]any
}

// NamedModel is an optional capability letting a model control its state-key
// type name. Without it the reflected struct type name is used.
type NamedModel interface {
	ModelName() string
}

// Option configures a Persister at construction time.
type Option func(*persisterConfig)

type persisterConfig struct {
	prefix   string
	safeOnly bool
	logger   OperationLogger
	hooks    activity.Hooks
	actorID  string
	fallback AttributeDefaulter
}

func applyOptions(opts []Option) persisterConfig {
	cfg := persisterConfig{prefix: DefaultStateKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithStateKeyPrefix overrides the state-key prefix.
func WithStateKeyPrefix(prefix string) Option {
	return func(cfg *persisterConfig) {
		cfg.prefix = prefix
	}
}

// WithSafeOnly sets the default safe-only mode applied by Load when a call
// does not override it.
func WithSafeOnly(safeOnly bool) Option {
	return func(cfg *persisterConfig) {
		cfg.safeOnly = safeOnly
	}
}

// WithActor sets the actor id stamped onto emitted activity events.
func WithActor(actorID string) Option {
	return func(cfg *persisterConfig) {
		cfg.actorID = actorID
	}
}

// WithFallbackDefaults registers a defaults source consulted by Load when the
// store has no snapshot and the model does not implement AttributeDefaulter.
func WithFallbackDefaults(source AttributeDefaulter) Option {
	return func(cfg *persisterConfig) {
		cfg.fallback = source
	}
}

// WithActivityHooks attaches activity hooks notified after each successful
// operation. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *persisterConfig) {
		cfg.hooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	safeOnly *bool
}

// WithSafeOnlyOverride overrides the persister's safe-only default for one
// Load call.
func WithSafeOnlyOverride(safeOnly bool) LoadOption {
	return func(cfg *loadConfig) {
		cfg.safeOnly = &safeOnly
	}
}
