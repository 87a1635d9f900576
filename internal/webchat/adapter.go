package webchat

import (
	"github.com/campushub/unichat-platform/internal/engine"
)

// Reply is the JSON shape the widget renders.
type Reply struct {
	SessionID     string   `json:"session_id"`
	Kind          string   `json:"kind"`
	Text          string   `json:"text"`
	Shape         string   `json:"shape"`
	Options       []Option `json:"options,omitempty"`
	CanGoBack     bool     `json:"can_go_back"`
	QuestionCount int      `json:"question_count"`
}

// Option is one selectable answer.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func toReply(sessionID string, instr engine.Instruction) Reply {
	opts := make([]Option, 0, len(instr.Choices))
	for _, c := range instr.Choices {
		opts = append(opts, Option{ID: c.ID, Label: c.Label, Value: c.Value})
	}
	return Reply{
		SessionID:     sessionID,
		Kind:          string(instr.Kind),
		Text:          instr.Text,
		Shape:         string(instr.Shape),
		Options:       opts,
		CanGoBack:     instr.CanGoBack,
		QuestionCount: instr.QuestionCount,
	}
}
