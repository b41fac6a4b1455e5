package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expr-lang/expr"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
	"github.com/Atri9Ghosh/FlowForge/internal/integration"
	"github.com/Atri9Ghosh/FlowForge/internal/repository"
)

// Processor turns a stored workflow into an executed side effect: it polls
// the workflow's trigger and, if an event fired, performs the action.
//
// Execute never returns an error. Every fault (missing or inactive
// workflow, unknown identifiers, handler failures, store failures) is folded
// into a failed Outcome so the caller can always write a terminal run record.
type Processor struct {
	workflows repository.WorkflowRepository
	registry  *integration.Registry
}

// NewProcessor creates a Processor over the given store and catalog.
func NewProcessor(workflows repository.WorkflowRepository, registry *integration.Registry) *Processor {
	return &Processor{workflows: workflows, registry: registry}
}

// Execute processes one workflow by ID.
func (p *Processor) Execute(ctx context.Context, workflowID string) flowforge.Outcome {
	wf, err := p.workflows.Get(ctx, workflowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return failure("Workflow not found")
		}
		return failure(errMessage(err))
	}

	// The API layer gates execution on its own, but the workflow may have
	// been deactivated between enqueue and delivery.
	if !wf.IsActive {
		return failure("Workflow is inactive")
	}

	// An execution was attempted; record it independent of the outcome of
	// the trigger and action below.
	if err := p.workflows.UpdateLastRun(ctx, wf.ID, time.Now()); err != nil {
		return failure(errMessage(err))
	}

	trigger, err := p.registry.ResolveTrigger(wf.Trigger)
	if err != nil {
		if errors.Is(err, integration.ErrUnsupportedTrigger) {
			return failure(fmt.Sprintf("Unsupported trigger: %s", wf.Trigger))
		}
		return failure(errMessage(err))
	}

	event, err := trigger.Poll(ctx)
	if err != nil {
		return failure(errMessage(err))
	}

	// Absence of an event is a successful no-op, not a failure.
	if event == nil {
		return flowforge.Outcome{
			Success: true,
			Logs:    "No trigger data found, skipping action",
		}
	}

	if wf.Condition != "" {
		ok, err := evaluateCondition(wf.Condition, event)
		if err != nil {
			return failure(errMessage(err))
		}
		if !ok {
			return flowforge.Outcome{
				Success: true,
				Logs:    "Trigger condition not met, skipping action",
			}
		}
	}

	action, err := p.registry.ResolveAction(wf.Action)
	if err != nil {
		if errors.Is(err, integration.ErrUnsupportedAction) {
			return failure(fmt.Sprintf("Unsupported action: %s", wf.Action))
		}
		return failure(errMessage(err))
	}

	result, err := action.Perform(ctx, event)
	if err != nil {
		return failure(errMessage(err))
	}

	slog.Info("processor: workflow processed",
		"workflow", wf.ID, "trigger", wf.Trigger, "action", wf.Action)
	return flowforge.Outcome{
		Success: true,
		Logs:    fmt.Sprintf("Successfully processed workflow: %s -> %s", wf.Trigger, wf.Action),
		Data:    result,
	}
}

// evaluateCondition evaluates an expr filter against the trigger event.
// The event's fields are exposed as top-level variables, e.g.
// `from == "boss@example.com"` for a gmail event.
func evaluateCondition(condition string, event flowforge.EventData) (bool, error) {
	env := make(map[string]any, len(event))
	for k, v := range event {
		env[k] = v
	}

	program, err := expr.Compile(condition, expr.Env(env))
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", condition, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", condition, err)
	}
	return isTruthy(result), nil
}

// isTruthy converts a value to a boolean.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

func failure(logs string) flowforge.Outcome {
	return flowforge.Outcome{Success: false, Logs: logs}
}

// errMessage extracts an error's message with a generic fallback.
func errMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error occurred"
	}
	return err.Error()
}
