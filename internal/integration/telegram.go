package integration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

// Telegram returns the telegram integration. It provides no triggers.
func Telegram(rnd func() float64) Integration {
	return Integration{
		Name: "telegram",
		Actions: map[string]ActionHandler{
			"send_message": &sendMessageAction{},
		},
	}
}

type sendMessageAction struct{}

func (a *sendMessageAction) Perform(ctx context.Context, event flowforge.EventData) (flowforge.ActionResult, error) {
	text := event["body"]
	if text == nil {
		text = event["title"]
	}
	slog.Info("telegram: sending message", "text", text)
	return flowforge.ActionResult{
		"message_id": fmt.Sprintf("mock-telegram-id-%d", time.Now().UnixMilli()),
	}, nil
}
