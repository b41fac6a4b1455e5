package flowforge

import "time"

// Workflow is a stored "if trigger then action" automation.
// Trigger and Action are namespaced identifiers of the form
// "<integration>:<event>", e.g. "gmail:new_email" or "telegram:send_message".
type Workflow struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Trigger   string     `json:"trigger"`
	Action    string     `json:"action"`
	Condition string     `json:"condition,omitempty"` // optional expr filter over the trigger event
	Cron      string     `json:"cron,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// --- Run Status ---

// RunStatus is the lifecycle state of a workflow run.
// Pending is the only non-terminal state; every run must eventually
// transition to success or failed.
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Terminal reports whether the status is a final one.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed
}

// WorkflowRun records a single execution attempt of a workflow.
type WorkflowRun struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflow_id"`
	Status     RunStatus  `json:"status"`
	Logs       string     `json:"logs"`
	CreatedAt  time.Time  `json:"created_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"` // set only on leaving pending
}

// Outcome is the result of processing a workflow. The processor always
// returns an Outcome; faults are folded into Success=false rather than
// surfaced as errors.
type Outcome struct {
	Success bool   `json:"success"`
	Logs    string `json:"logs"`
	Data    any    `json:"data,omitempty"`
}

// EventData is the payload produced by a trigger poll. A nil map means the
// trigger condition was not met this cycle.
type EventData map[string]any

// ActionResult is the payload produced by performing an action.
type ActionResult map[string]any
