package activity

import "context"

// DefaultChannel tags events emitted by the insight dashboard.
const DefaultChannel = "insight"

// Config controls whether activity emission is active.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter delivers dashboard activity to configured hooks. A nil or hookless
// emitter is inert, so callers never need to guard Emit.
type Emitter struct {
	hooks   Hooks
	config  Config
	channel string
}

// NewEmitter wires hooks with emission config.
func NewEmitter(hooks Hooks, config Config) *Emitter {
	channel := config.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, config: config, channel: channel}
}

// Enabled reports whether events will be delivered.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled && len(e.hooks) > 0
}

// Emit normalizes and delivers an event. Disabled emitters drop silently.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.channel
	}
	return e.hooks.Notify(ctx, evt)
}
