package activity

import (
	"context"
	"strings"
)

// DefaultChannel is the channel stamped on events that do not name one.
const DefaultChannel = "recolor"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Channel string `toml:"channel" json:"channel"`
	MeshID  string `toml:"mesh_id" json:"mesh_id"`
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	meshID  string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	hooks = CompactHooks(hooks)
	return &Emitter{
		hooks:   hooks,
		enabled: cfg.Enabled && len(hooks) > 0,
		channel: channel,
		meshID:  strings.TrimSpace(cfg.MeshID),
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards the event to all hooks, filling in the default channel and
// mesh when the event leaves them empty.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.MeshID) == "" {
		event.MeshID = e.meshID
	}
	return e.hooks.Notify(ctx, event)
}

// CompactHooks returns a copy of hooks without nil entries, or nil when none
// remain.
func CompactHooks(hooks Hooks) Hooks {
	var out Hooks
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}
