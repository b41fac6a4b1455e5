package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// ErrUnsupportedTrigger and ErrUnsupportedAction mark configuration errors:
// a workflow references an identifier no integration provides. Retrying
// cannot change the outcome, so callers surface these as failed outcomes
// rather than delivery failures.
var (
	ErrUnsupportedTrigger = errors.New("unsupported trigger")
	ErrUnsupportedAction  = errors.New("unsupported action")
)

// TriggerHandler polls an integration for a new event. A nil EventData with
// a nil error means the trigger condition was not met this cycle.
type TriggerHandler interface {
	Poll(ctx context.Context) (flowforge.EventData, error)
}

// ActionHandler performs an integration effect with the event that fired.
type ActionHandler interface {
	Perform(ctx context.Context, event flowforge.EventData) (flowforge.ActionResult, error)
}

// Integration describes one external service: its display name and the
// trigger/action identifiers it supports.
type Integration struct {
	Name     string
	Triggers map[string]TriggerHandler
	Actions  map[string]ActionHandler
}

// Registry is a static catalog mapping namespaced identifiers
// ("<integration>:<event>") to capability handlers. It is built once at
// process start and read-only thereafter, so lookups need no locking.
type Registry struct {
	triggers map[string]TriggerHandler
	actions  map[string]ActionHandler
	names    []string
}

// NewRegistry builds a registry from the given integrations.
func NewRegistry(integrations ...Integration) *Registry {
	r := &Registry{
		triggers: make(map[string]TriggerHandler),
		actions:  make(map[string]ActionHandler),
	}
	for _, in := range integrations {
		r.names = append(r.names, in.Name)
		for event, h := range in.Triggers {
			r.triggers[in.Name+":"+event] = h
		}
		for effect, h := range in.Actions {
			r.actions[in.Name+":"+effect] = h
		}
	}
	return r
}

// ResolveTrigger returns the handler for a namespaced trigger identifier.
func (r *Registry) ResolveTrigger(id string) (TriggerHandler, error) {
	h, ok := r.triggers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTrigger, id)
	}
	return h, nil
}

// ResolveAction returns the handler for a namespaced action identifier.
func (r *Registry) ResolveAction(id string) (ActionHandler, error) {
	h, ok := r.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, id)
	}
	return h, nil
}

// Integrations returns the registered integration names.
func (r *Registry) Integrations() []string {
	return r.names
}

// Default returns the built-in catalog: Gmail, GitHub, and Telegram with
// their simulated handlers.
func Default() *Registry {
	return NewRegistry(Gmail(nil), GitHub(nil), Telegram(nil))
}
