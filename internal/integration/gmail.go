package integration

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// The built-in handlers are simulated stand-ins for real API clients: each
// trigger poll reports an event with a fixed probability, and each action
// logs what it would have done and returns a mock result. Real integrations
// plug in behind the same TriggerHandler/ActionHandler shapes without
// touching the processor.

// Gmail returns the gmail integration. rnd overrides the probability source;
// nil uses the package default.
func Gmail(rnd func() float64) Integration {
	if rnd == nil {
		rnd = rand.Float64
	}
	return Integration{
		Name: "gmail",
		Triggers: map[string]TriggerHandler{
			"new_email": &newEmailTrigger{rnd: rnd},
		},
		Actions: map[string]ActionHandler{
			"send_email": &sendEmailAction{},
		},
	}
}

// newEmailTrigger simulates finding a new email 30% of the time.
type newEmailTrigger struct {
	rnd func() float64
}

func (t *newEmailTrigger) Poll(ctx context.Context) (flowforge.EventData, error) {
	slog.Debug("gmail: checking for new messages")
	if t.rnd() >= 0.3 {
		return nil, nil
	}
	return flowforge.EventData{
		"subject": "Test Email",
		"body":    "This is a test email",
		"from":    "test@example.com",
	}, nil
}

type sendEmailAction struct{}

func (a *sendEmailAction) Perform(ctx context.Context, event flowforge.EventData) (flowforge.ActionResult, error) {
	slog.Info("gmail: sending email", "to", event["from"], "subject", event["subject"])
	return flowforge.ActionResult{
		"message_id": fmt.Sprintf("mock-message-id-%d", time.Now().UnixMilli()),
	}, nil
}
