package engine

// InstructionKind discriminates what the channel adapter should render.
type InstructionKind string

const (
	// InstructionQuestion renders a question and its choices per Shape.
	InstructionQuestion InstructionKind = "question"
	// InstructionMessage renders a single plain text message.
	InstructionMessage InstructionKind = "message"
	// InstructionLookupPrompt asks the user for a registration code.
	InstructionLookupPrompt InstructionKind = "lookup_prompt"
)

// Shape tells the adapter how choices should be presented.
type Shape string

const (
	ShapeText    Shape = "text"
	ShapeButtons Shape = "buttons"
	ShapeList    Shape = "list"
)

// Choice is one selectable option as rendered to the user, including the
// synthetic back option.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Instruction is the channel-agnostic outcome of one conversation turn.
type Instruction struct {
	Kind          InstructionKind `json:"kind"`
	Text          string          `json:"text"`
	Shape         Shape           `json:"shape,omitempty"`
	Choices       []Choice        `json:"choices,omitempty"`
	CanGoBack     bool            `json:"can_go_back"`
	QuestionCount int             `json:"question_count"`
}

// Messages holds the user-facing copy the engine emits. Zero fields fall
// back to the defaults.
type Messages struct {
	Greeting       string
	Finished       string
	NoStart        string
	LookupPrompt   string
	LookupNotFound string
	LookupResult   string // fmt verb %s receives the status text
	BackLabel      string
}

// DefaultMessages returns the stock Portuguese copy.
func DefaultMessages() Messages {
	return Messages{
		Greeting:       `Olá! Envie "oi" para iniciar o atendimento.`,
		Finished:       `Atendimento encerrado. Envie "oi" sempre que precisar de ajuda.`,
		NoStart:        "Nenhuma pergunta inicial configurada. Tente novamente mais tarde.",
		LookupPrompt:   "Informe o seu código de matrícula:",
		LookupNotFound: "Código não encontrado. Selecione a opção novamente para tentar outra vez.",
		LookupResult:   "Situação: %s",
		BackLabel:      "Voltar",
	}
}

func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.Greeting == "" {
		m.Greeting = def.Greeting
	}
	if m.Finished == "" {
		m.Finished = def.Finished
	}
	if m.NoStart == "" {
		m.NoStart = def.NoStart
	}
	if m.LookupPrompt == "" {
		m.LookupPrompt = def.LookupPrompt
	}
	if m.LookupNotFound == "" {
		m.LookupNotFound = def.LookupNotFound
	}
	if m.LookupResult == "" {
		m.LookupResult = def.LookupResult
	}
	if m.BackLabel == "" {
		m.BackLabel = def.BackLabel
	}
	return m
}
