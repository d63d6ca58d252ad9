package flowdoc

import (
	"flowbridge/internal/api"
)

// Adapter implements api.FlowBuilderHandler over the parser, builder and
// validator, and registers itself with the API layer.
type Adapter struct {
	parser    *Parser
	builder   *Builder
	validator *Validator
}

// NewAdapter creates a flow builder adapter with a fresh pipeline.
func NewAdapter() *Adapter {
	return &Adapter{
		parser:    NewParser(),
		builder:   NewBuilder(),
		validator: NewValidator(),
	}
}

// Register registers this adapter as the flow builder handler.
func (a *Adapter) Register() {
	api.RegisterFlowBuilder(a)
}

// ParsePrompt implements api.FlowBuilderHandler.
func (a *Adapter) ParsePrompt(prompt string) api.PromptSlots {
	return a.parser.Parse(prompt)
}

// BuildFromSlots implements api.FlowBuilderHandler.
func (a *Adapter) BuildFromSlots(slots api.PromptSlots) (*api.FlowDocument, error) {
	return a.builder.BuildFromSlots(slots)
}

// BuildFromDocument implements api.FlowBuilderHandler.
func (a *Adapter) BuildFromDocument(doc *api.FlowDocument) (*api.FlowDocument, error) {
	return a.builder.BuildFromDocument(doc)
}

// ValidateDocument implements api.FlowBuilderHandler.
func (a *Adapter) ValidateDocument(doc *api.FlowDocument) error {
	return a.validator.Validate(doc)
}
