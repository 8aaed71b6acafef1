package activity

import (
	"strings"
	"time"
)

const objectTypeDefaults = "defaults"

// DefaultsEventInput describes the common fields for defaults lifecycle
// events. StateKey identifies the stored snapshot and becomes the event's
// object id.
type DefaultsEventInput struct {
	ActorID    string
	UserID     string
	StateKey   string
	Attributes []string
	SnapshotID string
	SafeOnly   bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDefaultsSavedEvent constructs a normalized activity event for a save.
func BuildDefaultsSavedEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent("defaults.saved", input)
}

// BuildDefaultsLoadedEvent constructs a normalized activity event for a load.
func BuildDefaultsLoadedEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent("defaults.loaded", input)
}

// BuildDefaultsResetEvent constructs a normalized activity event for a reset.
func BuildDefaultsResetEvent(input DefaultsEventInput) Event {
	return buildDefaultsEvent("defaults.reset", input)
}

func buildDefaultsEvent(verb string, input DefaultsEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if len(input.Attributes) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["attributes"] = append([]string{}, input.Attributes...)
	}
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.SnapshotID
	}
	if input.SafeOnly {
		metadata = ensureMetadata(metadata)
		metadata["safe_only"] = true
	}

	objectID := strings.TrimSpace(input.StateKey)
	if objectID == "" {
		objectID = objectTypeDefaults
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: objectTypeDefaults,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
