package whatsapp

import (
	"context"
	"fmt"

	"github.com/campushub/unichat-platform/internal/engine"
)

// Sender is the outbound surface the webhook needs from the client.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
	SendButtons(ctx context.Context, to, body string, replies []buttonReply) (string, error)
	SendList(ctx context.Context, to, body, menuLabel string, rows []row) (string, error)
}

// deliver maps an engine instruction onto the closest Cloud API message
// shape and sends it.
func deliver(ctx context.Context, s Sender, to string, instr engine.Instruction) (string, error) {
	switch instr.Shape {
	case engine.ShapeButtons:
		replies := make([]buttonReply, 0, len(instr.Choices))
		for _, c := range instr.Choices {
			replies = append(replies, buttonReply{ID: c.Value, Title: c.Label})
		}
		return s.SendButtons(ctx, to, instr.Text, replies)
	case engine.ShapeList:
		rows := make([]row, 0, len(instr.Choices))
		for _, c := range instr.Choices {
			rows = append(rows, row{ID: c.Value, Title: c.Label})
		}
		return s.SendList(ctx, to, instr.Text, "Opções", rows)
	default:
		return s.SendText(ctx, to, instr.Text)
	}
}

// classify turns a parsed inbound message into an engine event.
// Interactive replies carry the option value in the reply id; anything
// textual matching a start keyword opens a conversation.
func classify(msg inboundMessage, isStartKeyword func(string) bool) (engine.Event, error) {
	switch msg.Type {
	case "interactive":
		if msg.Interactive == nil {
			return engine.Event{}, fmt.Errorf("whatsapp: interactive message %s without payload", msg.ID)
		}
		if r := msg.Interactive.ButtonReply; r != nil {
			return engine.OptionSelected(r.ID), nil
		}
		if r := msg.Interactive.ListReply; r != nil {
			return engine.OptionSelected(r.ID), nil
		}
		return engine.Event{}, fmt.Errorf("whatsapp: interactive message %s with unknown reply type %q", msg.ID, msg.Interactive.Type)
	case "text":
		if msg.Text == nil {
			return engine.Event{}, fmt.Errorf("whatsapp: text message %s without body", msg.ID)
		}
		if isStartKeyword(msg.Text.Body) {
			return engine.StartKeyword(msg.Text.Body), nil
		}
		return engine.FreeText(msg.Text.Body), nil
	default:
		// Media, reactions, stickers and the rest are out of scope.
		return engine.Unrecognized(), nil
	}
}
