package nodes

// FieldType tells the configuration surface which control to render
type FieldType string

const (
	FieldColumns FieldType = "columns" // Multiple column selection
	FieldColumn  FieldType = "column"  // Single column selection
	FieldChoice  FieldType = "choice"  // One of Options
	FieldInt     FieldType = "int"
	FieldFloat   FieldType = "float"
	FieldText    FieldType = "text"
)

// Field describes one configuration control
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool      `json:"required" yaml:"required"`
	Help     string    `json:"help,omitempty" yaml:"help,omitempty"`
}

var (
	featureField = Field{Name: "features", Type: FieldColumn, Required: true, Help: "feature column"}
	labelField   = Field{Name: "label", Type: FieldColumn, Required: true, Help: "label column"}
	inputField   = Field{Name: "input", Type: FieldText, Help: "value to predict for"}
)
