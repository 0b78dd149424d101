package tool

// Declaration is what the model sees of a tool: its name, purpose and argument schema.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Type is a JSON Schema primitive type name.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema is the subset of JSON Schema used to describe tool arguments.
// It is converted to each provider's format and compiled for argument validation.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
}

// Min returns a pointer for Schema.Minimum.
func Min(v float64) *float64 { return &v }

// ToolDisplay is the UI-facing rendering of a tool outcome.
// It never reaches the model; the UI switches on the concrete type.
type ToolDisplay interface {
	isToolDisplay()
}

// StringDisplay is a one-line summary.
type StringDisplay string

// DiffDisplay carries a unified diff of a file change.
type DiffDisplay struct {
	Diff         string
	AddedLines   int
	RemovedLines int
}

// ShellDisplay summarises a finished shell command.
type ShellDisplay struct {
	Command    string
	WorkingDir string
	ExitCode   int
	Output     string
}

func (StringDisplay) isToolDisplay() {}
func (DiffDisplay) isToolDisplay() {}
func (ShellDisplay) isToolDisplay() {}
