package engine

// Reserved option values the engine intercepts before consulting the graph.
const (
	// ValueGoBack is the synthetic "Voltar" option appended to every
	// rendered question except the start question.
	ValueGoBack = "voltar"
	// ValueAcademicLookup suspends the flow to collect a registration
	// code for an academic-standing lookup.
	ValueAcademicLookup = "situacao_academica"
	// ValueFinancialLookup does the same for financial standing.
	ValueFinancialLookup = "situacao_financeira"
)

// EventType discriminates the normalized inbound events. Channel adapters
// produce these; the engine never inspects raw payloads.
type EventType string

const (
	EventStart   EventType = "start_keyword"
	EventText    EventType = "free_text"
	EventOption  EventType = "option_selected"
	EventBack    EventType = "go_back"
	EventRestart EventType = "restart"
	EventUnknown EventType = "unrecognized"
)

// Event is one normalized inbound message.
type Event struct {
	Type EventType
	// Text carries the message body for EventText, and the raw trigger
	// for EventStart so a pending lookup can still read it as a code.
	Text string
	// Value carries the selected option payload for EventOption.
	Value string
}

func StartKeyword(raw string) Event { return Event{Type: EventStart, Text: raw} }
func FreeText(text string) Event    { return Event{Type: EventText, Text: text} }
func GoBack() Event                 { return Event{Type: EventBack} }
func Restart() Event                { return Event{Type: EventRestart} }
func Unrecognized() Event           { return Event{Type: EventUnknown} }

func OptionSelected(value string) Event { return Event{Type: EventOption, Value: value} }
