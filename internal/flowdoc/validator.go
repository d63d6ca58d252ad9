package flowdoc

import (
	"fmt"
	"strings"

	"flowbridge/internal/api"

	"github.com/robfig/cron/v3"
)

// validStatuses are the lifecycle states a flow version may carry.
var validStatuses = []string{api.StatusDraft, api.StatusDeployed, api.StatusInactive}

// Validator checks the structural completeness and internal consistency of
// a flow-import document before it is submitted to the platform.
//
// Validation runs in a single pass and reports every violation found, not
// just the first, so a caller can fix all issues at once. It is purely
// structural and referential: whether referenced connectors or credentials
// exist on the platform is the platform's concern at creation time.
type Validator struct {
	cronParser cron.Parser
}

// NewValidator creates a document validator.
func NewValidator() *Validator {
	return &Validator{
		// Standard 5-field cron grammar: minute hour dom month dow.
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Validate returns nil when the document satisfies every invariant, or a
// ValidationErrors set enumerating all violations. The document is never
// modified.
func (val *Validator) Validate(doc *api.FlowDocument) error {
	var errors ValidationErrors

	if doc == nil {
		errors.Add("", "document is missing")
		return errors
	}

	val.validateMetadata(doc, &errors)
	val.validateTopLevelKeys(doc, &errors)
	val.validateFlow(doc, &errors)

	if errors.HasErrors() {
		return errors
	}
	return nil
}

// validateTopLevelKeys enforces that all five top-level keys are present,
// even if their values are empty sequences. For the sequence keys, presence
// means a non-nil slice, which marshals as [] rather than null.
func (val *Validator) validateTopLevelKeys(doc *api.FlowDocument, errors *ValidationErrors) {
	if doc.Systems == nil {
		errors.Add("systems", "must be present (an empty list is valid)")
	}
	if doc.Scripts == nil {
		errors.Add("scripts", "must be present (an empty list is valid)")
	}
	if doc.Dependencies == nil {
		errors.Add("dependencies", "must be present (an empty list is valid)")
	}
}

func (val *Validator) validateMetadata(doc *api.FlowDocument, errors *ValidationErrors) {
	summary := doc.Metadata.ImportSummary
	if summary == nil {
		errors.Add("metadata.import_summary", "is required")
		return
	}

	counters := map[string]int{
		"metadata.import_summary.unconfigured_connectors": summary.UnconfiguredConnectors,
		"metadata.import_summary.credentials_required":    summary.CredentialsRequired,
		"metadata.import_summary.unfilled_variables":      summary.UnfilledVariables,
		"metadata.import_summary.pending_dependencies":    summary.PendingDependencies,
	}
	for field, value := range counters {
		if value < 0 {
			errors.Add(field, "must not be negative", value)
		}
	}

	if summary.Warnings == nil {
		errors.Add("metadata.import_summary.warnings", "must be present (an empty list is valid)")
	}
	if summary.NextSteps == nil {
		errors.Add("metadata.import_summary.next_steps", "must be present (an empty list is valid)")
	}
}

func (val *Validator) validateFlow(doc *api.FlowDocument, errors *ValidationErrors) {
	if err := ValidateRequired("flow.name", doc.Flow.Name, "flow"); err != nil {
		*errors = append(*errors, err.(ValidationError))
	}

	if len(doc.Flow.Versions) == 0 {
		errors.Add("flow.versions", "must have at least one version")
		return
	}

	for i := range doc.Flow.Versions {
		val.validateVersion(&doc.Flow.Versions[i], i, errors)
	}
}

func (val *Validator) validateVersion(v *api.FlowVersion, index int, errors *ValidationErrors) {
	prefix := fmt.Sprintf("flow.versions[%d]", index)

	if v.FlowPriority < api.PriorityHighest || v.FlowPriority > api.PriorityLowest {
		errors.Add(prefix+".flow_priority", "must be between 1 and 5", v.FlowPriority)
	}
	if err := ValidateOneOf(prefix+".status", v.Status, validStatuses); err != nil {
		*errors = append(*errors, err.(ValidationError))
	}

	if len(v.Steps) == 0 {
		errors.Add(prefix+".steps", "must have at least one step")
		return
	}

	stepIDs := make(map[int]int, len(v.Steps))
	triggers := 0

	for i, step := range v.Steps {
		stepField := fmt.Sprintf("%s.steps[%d]", prefix, i)

		if prev, seen := stepIDs[step.ID]; seen {
			errors.Add(stepField+".id",
				fmt.Sprintf("duplicate step id %d (steps[%d] and steps[%d])", step.ID, prev, i), step.ID)
		} else {
			stepIDs[step.ID] = i
		}

		if err := ValidateOneOf(stepField+".type", step.Type, api.StepTypes); err != nil {
			*errors = append(*errors, err.(ValidationError))
		}

		if step.Type == api.StepTypeTrigger {
			triggers++
			val.validateTriggerConfig(step, stepField, errors)
		}
	}

	if triggers != 1 {
		errors.Add(prefix+".steps",
			fmt.Sprintf("must contain exactly one trigger step, found %d", triggers), triggers)
	}

	for i, conn := range v.Connections {
		connField := fmt.Sprintf("%s.connections[%d]", prefix, i)
		if _, ok := stepIDs[conn.From]; !ok {
			errors.Add(connField+".from", fmt.Sprintf("references unknown step id %d", conn.From), conn.From)
		}
		if _, ok := stepIDs[conn.To]; !ok {
			errors.Add(connField+".to", fmt.Sprintf("references unknown step id %d", conn.To), conn.To)
		}
	}
}

// validateTriggerConfig checks schedule plausibility for cron triggers: a
// five-field expression that the standard cron grammar accepts.
func (val *Validator) validateTriggerConfig(step api.Step, stepField string, errors *ValidationErrors) {
	if step.Config.ScheduleType() != api.ScheduleTypeCron {
		return
	}

	expr := step.Config.CronExpression()
	if expr == "" {
		errors.Add(stepField+".config.cron_expression", "is required when schedule_type is cron")
		return
	}

	if fields := len(strings.Fields(expr)); fields != 5 {
		errors.Add(stepField+".config.cron_expression",
			fmt.Sprintf("must have 5 fields, found %d", fields), expr)
		return
	}

	if _, err := val.cronParser.Parse(expr); err != nil {
		errors.Add(stepField+".config.cron_expression",
			fmt.Sprintf("is not a valid cron expression: %v", err), expr)
	}
}
