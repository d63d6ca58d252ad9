package api

// FlowDocument is the unit exchanged with the platform's import endpoint.
// Its JSON shape is the wire format the platform accepts and must be
// preserved exactly: five top-level keys, all present even when empty.
type FlowDocument struct {
	Metadata     FlowMetadata         `json:"metadata"`
	Flow         Flow                 `json:"flow"`
	Systems      []SystemDescriptor   `json:"systems"`
	Scripts      []ResourceDescriptor `json:"scripts"`
	Dependencies []ResourceDescriptor `json:"dependencies"`
}

// FlowMetadata carries provenance and the import summary. It is owned
// entirely by the document builder and never partially populated.
type FlowMetadata struct {
	CompanyName   string         `json:"company_name"`
	FlowName      string         `json:"flow_name"`
	ExportedAt    string         `json:"exported_at"`
	ImportSummary *ImportSummary `json:"import_summary"`
}

// ImportSummary describes what setup remains after a flow is imported:
// how many connectors still need configuration, credentials, variables,
// and ordered guidance for the user.
type ImportSummary struct {
	UnconfiguredConnectors int      `json:"unconfigured_connectors"`
	CredentialsRequired    int      `json:"credentials_required"`
	UnfilledVariables      int      `json:"unfilled_variables"`
	PendingDependencies    int      `json:"pending_dependencies"`
	Warnings               []string `json:"warnings"`
	NextSteps              []string `json:"next_steps"`
}

// Flow is the flow definition inside an import document.
type Flow struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsEnabled   bool          `json:"is_enabled"`
	Versions    []FlowVersion `json:"versions"`
}

// Version lifecycle states.
const (
	StatusDraft    = "Draft"
	StatusDeployed = "Deployed"
	StatusInactive = "Inactive"
)

// Priority bounds for flow versions. 1 is the highest priority.
const (
	PriorityHighest = 1
	PriorityDefault = 3
	PriorityLowest  = 5
)

// FlowVersion is one iteration of a flow's definition.
type FlowVersion struct {
	FlowName     string `json:"flow_name"`
	FlowPriority int    `json:"flow_priority"`
	Iteration    int    `json:"iteration"`
	Status       string `json:"status"`
	IsDeployed   bool   `json:"is_deployed"`

	// IsEditable false on a non-deployed version is indistinguishable from
	// unset: the builder sets it true whenever IsDeployed is false.
	IsEditable      bool         `json:"is_editable"`
	HasCallbackStep bool         `json:"has_callback_step"`
	Steps           []Step       `json:"steps"`
	Connections     []Connection `json:"connections"`
}

// Step types form a closed set. Every version carries exactly one trigger.
const (
	StepTypeTrigger   = "trigger"
	StepTypeConnector = "connector"
	StepTypeMap       = "map"
	StepTypeFilter    = "filter"
	StepTypeScript    = "script"
	StepTypeBranch    = "branch"
	StepTypeRoute     = "route"
	StepTypeSplit     = "split"
	StepTypeCache     = "cache"
	StepTypeDeDupe    = "de-dupe"
)

// StepTypes lists all valid step types.
var StepTypes = []string{
	StepTypeTrigger, StepTypeConnector, StepTypeMap, StepTypeFilter,
	StepTypeScript, StepTypeBranch, StepTypeRoute, StepTypeSplit,
	StepTypeCache, StepTypeDeDupe,
}

// Trigger config keys and schedule types.
const (
	ConfigKeyScheduleType   = "schedule_type"
	ConfigKeyCronExpression = "cron_expression"

	ScheduleTypeCron    = "cron"
	ScheduleTypeWebhook = "webhook"
	ScheduleTypeEvent   = "event"
)

// Step is a single canvas node. The config shape is type-dependent: a
// trigger's config carries schedule_type and, for cron schedules, a
// cron_expression.
type Step struct {
	ID          int        `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Config      StepConfig `json:"config"`
	Position    Position   `json:"position"`
}

// StepConfig holds the type-dependent configuration of a step.
type StepConfig map[string]interface{}

// ScheduleType returns the schedule_type entry, or "" when unset.
func (c StepConfig) ScheduleType() string {
	s, _ := c[ConfigKeyScheduleType].(string)
	return s
}

// CronExpression returns the cron_expression entry, or "" when unset.
func (c StepConfig) CronExpression() string {
	s, _ := c[ConfigKeyCronExpression].(string)
	return s
}

// Position is the canvas placement of a step. It never affects execution
// semantics.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Connection is a directed edge between two step ids within one version.
type Connection struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SystemDescriptor references an external system used by the flow.
type SystemDescriptor struct {
	System SystemSpec `json:"system"`
}

// SystemSpec describes one external system.
type SystemSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// ResourceDescriptor is a free-form auxiliary resource entry (scripts,
// dependencies). The platform defines the shapes; flowbridge passes them
// through untouched.
type ResourceDescriptor map[string]interface{}

// PromptSlots is the output of the prompt parser: each slot is either
// filled from a recognized pattern or left at its documented default.
type PromptSlots struct {
	FlowName        string `json:"flow_name"`
	ScheduleCron    string `json:"schedule_cron"`
	Priority        int    `json:"priority"`
	IsEnabled       bool   `json:"is_enabled"`
	SourceHint      string `json:"source_hint,omitempty"`
	DestinationHint string `json:"destination_hint,omitempty"`
	Entity          string `json:"entity,omitempty"`
}

// FlowBuilderHandler is the interface for flow document authoring: prompt
// parsing, document construction, and schema validation.
type FlowBuilderHandler interface {
	// ParsePrompt extracts structured slots from a free-text request.
	// Parsing is lossy and best-effort; it never fails.
	ParsePrompt(prompt string) PromptSlots

	// BuildFromSlots synthesizes a complete, schema-valid document from a
	// slot set.
	BuildFromSlots(slots PromptSlots) (*FlowDocument, error)

	// BuildFromDocument merges a caller-supplied partial document over the
	// minimal skeleton, producing a complete document. The input is never
	// mutated.
	BuildFromDocument(doc *FlowDocument) (*FlowDocument, error)

	// ValidateDocument checks all structural invariants in a single pass
	// and reports every violation found.
	ValidateDocument(doc *FlowDocument) error
}
