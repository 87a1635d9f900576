package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushub/unichat-platform/internal/graph"
	"github.com/campushub/unichat-platform/internal/observability/metrics"
	"github.com/campushub/unichat-platform/internal/records"
	"github.com/campushub/unichat-platform/internal/session"
	"github.com/campushub/unichat-platform/pkg/logging"
)

// GraphReader is the read-only slice of the graph repository the engine needs.
type GraphReader interface {
	StartQuestion(ctx context.Context) (*graph.Question, error)
	GetQuestion(ctx context.Context, id string) (*graph.Question, error)
	FindOption(ctx context.Context, questionID, value string) (*graph.Option, error)
}

// Config wires one engine instance to a channel.
type Config struct {
	Graph    GraphReader
	Sessions session.Store
	Lookup   records.Lookup
	Channel  string
	Logger   *logging.Logger
	Metrics  *metrics.ConversationMetrics
	Messages Messages
}

// Engine is the conversation state machine. It maps (session state,
// inbound event) to (new session state, render instruction), persisting
// the full new tuple in a single store write per turn.
type Engine struct {
	graph    GraphReader
	sessions session.Store
	lookup   records.Lookup
	channel  string
	logger   *logging.Logger
	metrics  *metrics.ConversationMetrics
	msgs     Messages
	locks    keyLocks
}

// New creates an engine for one channel.
func New(cfg Config) (*Engine, error) {
	if cfg.Graph == nil {
		return nil, errors.New("engine: graph reader is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("engine: session store is required")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("engine: channel name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		graph:    cfg.Graph,
		sessions: cfg.Sessions,
		lookup:   cfg.Lookup,
		channel:  cfg.Channel,
		logger:   logger.Named("engine"),
		metrics:  cfg.Metrics,
		msgs:     cfg.Messages.withDefaults(),
	}, nil
}

// Handle runs one conversation turn. Errors are transport failures
// (session or graph store unreachable); the session is left in its last
// durably written state and the adapter decides how to report it.
func (e *Engine) Handle(ctx context.Context, sessionKey string, ev Event) (Instruction, error) {
	start := time.Now()
	unlock := e.locks.lock(sessionKey)
	defer unlock()

	instr, err := e.handle(ctx, sessionKey, ev)

	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.ObserveEvent(e.channel, string(ev.Type), status)
	if err == nil {
		e.metrics.ObserveInstruction(e.channel, string(instr.Shape))
		e.metrics.ObserveTurnLatency(e.channel, time.Since(start).Seconds())
	}
	return instr, err
}

func (e *Engine) handle(ctx context.Context, key string, ev Event) (Instruction, error) {
	st, active, err := e.sessions.Get(ctx, key)
	if err != nil {
		return Instruction{}, err
	}

	// Restart re-enters at the start question regardless of prior state.
	if ev.Type == EventRestart {
		if active {
			if err := e.sessions.Clear(ctx, key); err != nil {
				return Instruction{}, err
			}
		}
		return e.begin(ctx, key)
	}

	if !active {
		if ev.Type == EventStart {
			return e.begin(ctx, key)
		}
		return e.plain(e.msgs.Greeting), nil
	}

	// A pending lookup consumes any text-bearing event as a registration
	// code, whatever the current question is.
	if st.Awaiting != session.AwaitingNone && (ev.Type == EventText || ev.Type == EventStart) {
		return e.completeLookup(ctx, key, st, strings.TrimSpace(ev.Text))
	}

	switch ev.Type {
	case EventOption:
		switch ev.Value {
		case ValueGoBack:
			return e.goBack(ctx, key, st)
		case ValueAcademicLookup:
			return e.beginLookup(ctx, key, st, session.AwaitingAcademic)
		case ValueFinancialLookup:
			return e.beginLookup(ctx, key, st, session.AwaitingFinancial)
		}
		return e.selectOption(ctx, key, st, ev.Value)
	case EventBack:
		return e.goBack(ctx, key, st)
	case EventText, EventStart:
		return e.freeText(ctx, key, st, ev.Text)
	default:
		return e.plain(e.msgs.Greeting), nil
	}
}

// Current re-renders the present position without mutating the session.
func (e *Engine) Current(ctx context.Context, key string) (Instruction, bool, error) {
	st, active, err := e.sessions.Get(ctx, key)
	if err != nil || !active {
		return Instruction{}, false, err
	}
	if st.Awaiting != session.AwaitingNone {
		return Instruction{Kind: InstructionLookupPrompt, Text: e.msgs.LookupPrompt, QuestionCount: len(st.History)}, true, nil
	}
	q, err := e.graph.GetQuestion(ctx, st.CurrentQuestionID)
	if errors.Is(err, graph.ErrNotFound) {
		return Instruction{}, false, nil
	}
	if err != nil {
		return Instruction{}, false, err
	}
	return e.renderQuestion(q, st), true, nil
}

// End terminates the conversation for this key.
func (e *Engine) End(ctx context.Context, key string) error {
	unlock := e.locks.lock(key)
	defer unlock()
	return e.sessions.Clear(ctx, key)
}

// History returns the visited question ids, oldest first.
func (e *Engine) History(ctx context.Context, key string) ([]string, error) {
	st, active, err := e.sessions.Get(ctx, key)
	if err != nil || !active {
		return nil, err
	}
	return st.History, nil
}

func (e *Engine) begin(ctx context.Context, key string) (Instruction, error) {
	q, err := e.graph.StartQuestion(ctx)
	if errors.Is(err, graph.ErrNotFound) {
		e.logger.Warn("no start question configured", "channel", e.channel)
		return e.plain(e.msgs.NoStart), nil
	}
	if err != nil {
		return Instruction{}, err
	}
	st := session.State{CurrentQuestionID: q.ID, History: []string{q.ID}}
	if err := e.sessions.Put(ctx, key, st); err != nil {
		return Instruction{}, err
	}
	return e.renderQuestion(q, st), nil
}

func (e *Engine) goBack(ctx context.Context, key string, st session.State) (Instruction, error) {
	if len(st.History) <= 1 {
		if err := e.sessions.Clear(ctx, key); err != nil {
			return Instruction{}, err
		}
		return e.plain(e.msgs.Greeting), nil
	}
	history := st.History[:len(st.History)-1]
	prevID := history[len(history)-1]
	q, err := e.graph.GetQuestion(ctx, prevID)
	if errors.Is(err, graph.ErrNotFound) {
		return e.finish(ctx, key)
	}
	if err != nil {
		return Instruction{}, err
	}
	next := session.State{CurrentQuestionID: prevID, History: history}
	if err := e.sessions.Put(ctx, key, next); err != nil {
		return Instruction{}, err
	}
	return e.renderQuestion(q, next), nil
}

func (e *Engine) beginLookup(ctx context.Context, key string, st session.State, tag session.Awaiting) (Instruction, error) {
	// Current question and history stay put so the graph position survives
	// the side-quest, even though completing it ends the conversation from
	// the user's perspective.
	st.Awaiting = tag
	if err := e.sessions.Put(ctx, key, st); err != nil {
		return Instruction{}, err
	}
	return Instruction{Kind: InstructionLookupPrompt, Text: e.msgs.LookupPrompt, QuestionCount: len(st.History)}, nil
}

func (e *Engine) completeLookup(ctx context.Context, key string, st session.State, code string) (Instruction, error) {
	kind := records.LookupAcademic
	if st.Awaiting == session.AwaitingFinancial {
		kind = records.LookupFinancial
	}

	var (
		status string
		found  bool
	)
	if e.lookup != nil {
		var err error
		status, found, err = e.lookup.Lookup(ctx, code, kind)
		if err != nil {
			// Fail closed: the user sees "not found", the error goes to the log.
			e.logger.Error("student lookup failed", "kind", kind, "error", err)
			found = false
		}
	}

	// One attempt per prompt: awaiting clears on either outcome and the
	// prior question is not re-rendered.
	st.Awaiting = session.AwaitingNone
	if err := e.sessions.Put(ctx, key, st); err != nil {
		return Instruction{}, err
	}

	outcome := "not_found"
	if found {
		outcome = "found"
	}
	e.metrics.ObserveLookup(string(kind), outcome)

	if !found {
		return e.plain(e.msgs.LookupNotFound), nil
	}
	return e.plain(fmt.Sprintf(e.msgs.LookupResult, status)), nil
}

func (e *Engine) selectOption(ctx context.Context, key string, st session.State, value string) (Instruction, error) {
	opt, err := e.graph.FindOption(ctx, st.CurrentQuestionID, value)
	if errors.Is(err, graph.ErrNotFound) {
		// Unknown value ends the conversation rather than re-prompting.
		// Lenient on purpose; see the admin docs before changing this.
		return e.finish(ctx, key)
	}
	if err != nil {
		return Instruction{}, err
	}
	return e.advance(ctx, key, st, opt.NextQuestionID)
}

func (e *Engine) freeText(ctx context.Context, key string, st session.State, text string) (Instruction, error) {
	q, err := e.graph.GetQuestion(ctx, st.CurrentQuestionID)
	if errors.Is(err, graph.ErrNotFound) {
		return e.finish(ctx, key)
	}
	if err != nil {
		return Instruction{}, err
	}
	if q.Kind != graph.KindText {
		// Stray text against a button question: ignore, keep position.
		return e.plain(e.msgs.Greeting), nil
	}
	if len(q.Options) == 0 {
		return e.finish(ctx, key)
	}
	// A text question routes every reply through its first option.
	return e.advance(ctx, key, st, q.Options[0].NextQuestionID)
}

func (e *Engine) advance(ctx context.Context, key string, st session.State, nextID *string) (Instruction, error) {
	if nextID == nil {
		return e.finish(ctx, key)
	}
	q, err := e.graph.GetQuestion(ctx, *nextID)
	if errors.Is(err, graph.ErrNotFound) {
		// Dangling or deactivated target: treat as conversation end.
		return e.finish(ctx, key)
	}
	if err != nil {
		return Instruction{}, err
	}
	next := session.State{
		CurrentQuestionID: q.ID,
		History:           append(st.History, q.ID),
	}
	if err := e.sessions.Put(ctx, key, next); err != nil {
		return Instruction{}, err
	}
	return e.renderQuestion(q, next), nil
}

func (e *Engine) finish(ctx context.Context, key string) (Instruction, error) {
	if err := e.sessions.Clear(ctx, key); err != nil {
		return Instruction{}, err
	}
	return e.plain(e.msgs.Finished), nil
}

func (e *Engine) plain(text string) Instruction {
	return Instruction{Kind: InstructionMessage, Text: text, Shape: ShapeText}
}

func (e *Engine) renderQuestion(q *graph.Question, st session.State) Instruction {
	canGoBack := !q.IsStart

	var choices []Choice
	if q.Kind == graph.KindButton {
		for _, o := range q.Options {
			choices = append(choices, Choice{ID: o.ID, Label: o.Label, Value: o.Value})
		}
		if canGoBack {
			choices = append(choices, Choice{ID: ValueGoBack, Label: e.msgs.BackLabel, Value: ValueGoBack})
		}
	}

	shape := ShapeText
	if q.Kind == graph.KindButton {
		switch n := len(choices); {
		case n == 0:
			shape = ShapeText
		case n <= 3:
			shape = ShapeButtons
		default:
			shape = ShapeList
		}
	}

	return Instruction{
		Kind:          InstructionQuestion,
		Text:          q.Text,
		Shape:         shape,
		Choices:       choices,
		CanGoBack:     canGoBack,
		QuestionCount: len(st.History),
	}
}
