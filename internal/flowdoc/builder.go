package flowdoc

import (
	"encoding/json"
	"fmt"
	"time"

	"flowbridge/internal/api"
	"flowbridge/pkg/logging"
)

// CompanyName is the provenance marker written into generated documents.
const CompanyName = "flowbridge"

// Builder assembles complete, schema-valid flow-import documents.
// Construction is pure: the builder has no side effects and never mutates
// caller-supplied documents. It either yields a complete valid document or
// fails with a BuildError; it does not return partially-built state.
type Builder struct {
	validator *Validator

	// now is injectable for tests.
	now func() time.Time
}

// NewBuilder creates a document builder with its own validator.
func NewBuilder() *Builder {
	return &Builder{
		validator: NewValidator(),
		now:       time.Now,
	}
}

// BuildFromSlots synthesizes the minimal document for a slot set: one
// version, one trigger step with the resolved cron schedule, and empty
// auxiliary sequences. Source/destination hints add placeholder system
// descriptors and matching setup guidance.
func (b *Builder) BuildFromSlots(slots api.PromptSlots) (*api.FlowDocument, error) {
	name := slots.FlowName
	if name == "" {
		name = GenericFlowName()
	}
	cronExpr := slots.ScheduleCron
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	priority := slots.Priority
	if priority == 0 {
		priority = api.PriorityDefault
	}
	if priority < api.PriorityHighest || priority > api.PriorityLowest {
		return nil, newBuildError(fmt.Sprintf("priority %d is outside 1-5", priority), "priority")
	}

	description := "Created from prompt"
	if slots.SourceHint != "" && slots.DestinationHint != "" {
		entity := slots.Entity
		if entity == "" {
			entity = "orders"
		}
		description = fmt.Sprintf("%s to %s %s (generated)", slots.SourceHint, slots.DestinationHint, entity)
	}

	doc := &api.FlowDocument{
		Flow: api.Flow{
			Name:        name,
			Description: description,
			IsEnabled:   slots.IsEnabled,
			Versions: []api.FlowVersion{
				{
					FlowName:     name,
					FlowPriority: priority,
					Iteration:    1,
					Status:       api.StatusDraft,
					IsDeployed:   false,
					IsEditable:   true,
					Steps:        []api.Step{b.triggerStep(1, cronExpr)},
					Connections:  []api.Connection{},
				},
			},
		},
		Systems:      []api.SystemDescriptor{},
		Scripts:      []api.ResourceDescriptor{},
		Dependencies: []api.ResourceDescriptor{},
	}

	for _, hint := range []string{slots.SourceHint, slots.DestinationHint} {
		if hint == "" {
			continue
		}
		doc.Systems = append(doc.Systems, api.SystemDescriptor{
			System: api.SystemSpec{
				Name:     hint,
				Label:    hint + " (placeholder)",
				Protocol: "HTTP",
			},
		})
	}

	doc.Metadata = b.buildMetadata(doc)

	return b.finalize(doc)
}

// BuildFromDocument merges a caller-supplied document or fragment over the
// minimal skeleton. Omitted top-level keys are synthesized in their
// empty/default form; unset nested fields fall back to the safe defaults.
// The input document is never mutated.
func (b *Builder) BuildFromDocument(input *api.FlowDocument) (*api.FlowDocument, error) {
	if input == nil {
		return nil, newBuildError("no document supplied", "document")
	}

	doc, err := cloneDocument(input)
	if err != nil {
		return nil, newBuildError(fmt.Sprintf("document is not serializable: %v", err), "document")
	}

	if doc.Flow.Name == "" {
		doc.Flow.Name = GenericFlowName()
	}
	if doc.Systems == nil {
		doc.Systems = []api.SystemDescriptor{}
	}
	if doc.Scripts == nil {
		doc.Scripts = []api.ResourceDescriptor{}
	}
	if doc.Dependencies == nil {
		doc.Dependencies = []api.ResourceDescriptor{}
	}

	if len(doc.Flow.Versions) == 0 {
		doc.Flow.Versions = []api.FlowVersion{{}}
	}
	for i := range doc.Flow.Versions {
		if err := b.completeVersion(&doc.Flow.Versions[i], doc.Flow.Name, i); err != nil {
			return nil, err
		}
	}

	doc.Metadata = b.buildMetadata(doc)

	return b.finalize(doc)
}

// completeVersion fills the defaults of one version in place and assigns
// step ids. The version index is only used for error context.
func (b *Builder) completeVersion(v *api.FlowVersion, flowName string, index int) error {
	if v.FlowName == "" {
		v.FlowName = flowName
	}
	if v.FlowPriority == 0 {
		v.FlowPriority = api.PriorityDefault
	}
	if v.Iteration == 0 {
		v.Iteration = index + 1
	}
	if v.Status == "" {
		v.Status = api.StatusDraft
	}
	// A non-deployed version is always editable; false is taken as unset.
	if !v.IsDeployed {
		v.IsEditable = true
	}
	if v.Connections == nil {
		v.Connections = []api.Connection{}
	}

	if !hasTrigger(v.Steps) {
		// The minimal skeleton always carries a schedule trigger; a caller
		// document without one gets it prepended rather than rejected.
		v.Steps = append([]api.Step{b.triggerStep(0, DefaultCron)}, v.Steps...)
	}

	return b.assignStepIDs(v, index)
}

// assignStepIDs gives sequential ids to steps without one, in supplied
// order, and rejects caller-assigned duplicates: the builder cannot decide
// which of two identically-numbered steps the connections refer to.
func (b *Builder) assignStepIDs(v *api.FlowVersion, index int) error {
	used := make(map[int]int, len(v.Steps))
	for i, step := range v.Steps {
		if step.ID == 0 {
			continue
		}
		if prev, taken := used[step.ID]; taken {
			return newBuildError(
				fmt.Sprintf("steps %d and %d both carry id %d", prev, i, step.ID),
				fmt.Sprintf("versions[%d].steps[%d].id", index, i),
			)
		}
		used[step.ID] = i
	}

	next := 1
	for i := range v.Steps {
		if v.Steps[i].ID != 0 {
			continue
		}
		for {
			if _, taken := used[next]; !taken {
				break
			}
			next++
		}
		v.Steps[i].ID = next
		used[next] = i
	}
	return nil
}

// buildMetadata synthesizes the full metadata block for a document. The
// metadata is owned by the builder and never partially populated: whatever
// the caller supplied is replaced wholesale.
func (b *Builder) buildMetadata(doc *api.FlowDocument) api.FlowMetadata {
	summary := &api.ImportSummary{
		Warnings:  []string{},
		NextSteps: []string{},
	}

	connectors := 0
	for _, v := range doc.Flow.Versions {
		for _, step := range v.Steps {
			if step.Type == api.StepTypeConnector {
				connectors++
			}
		}
	}
	summary.PendingDependencies = len(doc.Dependencies)

	// Placeholder systems need endpoints and credentials before the flow
	// can move data; generated connector steps share that fate.
	summary.UnconfiguredConnectors = connectors + len(doc.Systems)
	summary.CredentialsRequired = len(doc.Systems)

	if connectors == 0 {
		summary.NextSteps = append(summary.NextSteps,
			"Add a connector step to receive data from the source system",
			"Add a map step and a destination connector to deliver it",
		)
	}
	if summary.CredentialsRequired > 0 {
		summary.NextSteps = append(summary.NextSteps, "Configure authentication for the connected systems")
	}
	summary.NextSteps = append(summary.NextSteps, "Review the schedule, then enable the flow")

	return api.FlowMetadata{
		CompanyName:   CompanyName,
		FlowName:      doc.Flow.Name,
		ExportedAt:    b.now().UTC().Format(time.RFC3339),
		ImportSummary: summary,
	}
}

// finalize runs the validator over a built document. A violation at this
// point is a building failure, not a caller validation failure: the builder
// promises that everything it returns passes validation.
func (b *Builder) finalize(doc *api.FlowDocument) (*api.FlowDocument, error) {
	if err := b.validator.Validate(doc); err != nil {
		logging.Debug("Builder", "built document failed validation: %v", err)
		return nil, newBuildError(err.Error(), "document")
	}
	return doc, nil
}

func (b *Builder) triggerStep(id int, cronExpr string) api.Step {
	return api.Step{
		ID:   id,
		Type: api.StepTypeTrigger,
		Name: "Schedule",
		Config: api.StepConfig{
			api.ConfigKeyScheduleType:   api.ScheduleTypeCron,
			api.ConfigKeyCronExpression: cronExpr,
		},
		Position: api.Position{X: 0, Y: 0},
	}
}

func hasTrigger(steps []api.Step) bool {
	for _, step := range steps {
		if step.Type == api.StepTypeTrigger {
			return true
		}
	}
	return false
}

// cloneDocument deep-copies a document through its JSON form, which also
// normalizes any raw config maps the caller passed in.
func cloneDocument(doc *api.FlowDocument) (*api.FlowDocument, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var clone api.FlowDocument
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
