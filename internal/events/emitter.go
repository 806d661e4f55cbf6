package events

import (
	"context"
	"encoding/json"
	"log"
)

var Emit = func(ctx context.Context, name string, evt AgentEvent) {}

// EnableLogEmitter routes events to the standard logger. Used by the CLI
// entrypoint before a transport takes over.
func EnableLogEmitter() {
	Emit = func(ctx context.Context, name string, evt AgentEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		logEvent(name, evt)
	}
}

// SetCustomEmitter lets a transport deliver events to connected clients.
// Passing nil restores the no-op emitter.
func SetCustomEmitter(f func(ctx context.Context, name string, evt AgentEvent)) {
	if f == nil {
		Emit = func(context.Context, string, AgentEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt AgentEvent) {
		if evt.SessionKey == "" {
			if session := SessionFromContext(ctx); session != "" {
				evt.SessionKey = session
			}
		}
		f(ctx, name, evt)
	}
}

func logEvent(name string, evt AgentEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("events: failed to marshal agent event: %v", err)
		return
	}
	log.Printf("%s %s", name, data)
}
