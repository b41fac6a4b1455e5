package integration

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// GitHub returns the github integration. rnd overrides the probability
// source; nil uses the package default.
func GitHub(rnd func() float64) Integration {
	if rnd == nil {
		rnd = rand.Float64
	}
	return Integration{
		Name: "github",
		Triggers: map[string]TriggerHandler{
			"new_issue": &newIssueTrigger{rnd: rnd},
			"new_pr":    &newPRTrigger{rnd: rnd},
		},
		Actions: map[string]ActionHandler{
			"create_issue": &createIssueAction{},
		},
	}
}

// newIssueTrigger simulates finding a new issue 20% of the time.
type newIssueTrigger struct {
	rnd func() float64
}

func (t *newIssueTrigger) Poll(ctx context.Context) (flowforge.EventData, error) {
	slog.Debug("github: checking for new issues")
	if t.rnd() >= 0.2 {
		return nil, nil
	}
	return flowforge.EventData{
		"title": "Test Issue",
		"body":  "This is a test issue",
		"repo":  "test/repo",
	}, nil
}

// newPRTrigger simulates finding a new pull request 15% of the time.
type newPRTrigger struct {
	rnd func() float64
}

func (t *newPRTrigger) Poll(ctx context.Context) (flowforge.EventData, error) {
	slog.Debug("github: checking for new pull requests")
	if t.rnd() >= 0.15 {
		return nil, nil
	}
	return flowforge.EventData{
		"title": "Test PR",
		"body":  "This is a test pull request",
		"repo":  "test/repo",
	}, nil
}

type createIssueAction struct{}

func (a *createIssueAction) Perform(ctx context.Context, event flowforge.EventData) (flowforge.ActionResult, error) {
	slog.Info("github: creating issue", "repo", event["repo"], "title", event["title"])
	return flowforge.ActionResult{
		"issue_id": fmt.Sprintf("mock-issue-id-%d", time.Now().UnixMilli()),
	}, nil
}
