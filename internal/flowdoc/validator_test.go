package flowdoc

import (
	"testing"

	"flowbridge/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDocument returns a document that passes validation, built the same
// way the builder emits it. Tests mutate a copy to exercise one rule each.
func validDocument(t *testing.T) *api.FlowDocument {
	t.Helper()

	doc, err := NewBuilder().BuildFromSlots(api.PromptSlots{FlowName: "Order Sync"})
	require.NoError(t, err)
	return doc
}

func TestValidator_AcceptsBuilderOutput(t *testing.T) {
	validator := NewValidator()

	assert.NoError(t, validator.Validate(validDocument(t)))
}

func TestValidator_NilDocument(t *testing.T) {
	validator := NewValidator()

	err := validator.Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is missing")
}

func TestValidator_MissingTopLevelKeys(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Systems = nil
	doc.Scripts = nil
	doc.Dependencies = nil

	err := validator.Validate(doc)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
	for _, ve := range errs {
		assert.Contains(t, ve.Message, "an empty list is valid")
	}
}

func TestValidator_MissingImportSummary(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Metadata.ImportSummary = nil

	err := validator.Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata.import_summary")
}

func TestValidator_NegativeCounter(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Metadata.ImportSummary.CredentialsRequired = -1

	err := validator.Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials_required")
}

func TestValidator_FlowRules(t *testing.T) {
	validator := NewValidator()

	t.Run("name required", func(t *testing.T) {
		doc := validDocument(t)
		doc.Flow.Name = ""

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flow.name")
	})

	t.Run("versions required", func(t *testing.T) {
		doc := validDocument(t)
		doc.Flow.Versions = nil

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one version")
	})

	t.Run("priority range", func(t *testing.T) {
		doc := validDocument(t)
		doc.Flow.Versions[0].FlowPriority = 6

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 1 and 5")
	})

	t.Run("unknown status", func(t *testing.T) {
		doc := validDocument(t)
		doc.Flow.Versions[0].Status = "archived"

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})
}

func TestValidator_DuplicateStepIDsNamesBothPositions(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Flow.Versions[0].Steps = append(doc.Flow.Versions[0].Steps,
		api.Step{ID: 1, Type: api.StepTypeConnector, Name: "Fetch orders"})

	err := validator.Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id 1 (steps[0] and steps[1])")
}

func TestValidator_TriggerCount(t *testing.T) {
	validator := NewValidator()

	t.Run("no trigger", func(t *testing.T) {
		doc := validDocument(t)
		doc.Flow.Versions[0].Steps = []api.Step{
			{ID: 1, Type: api.StepTypeConnector, Name: "Fetch orders"},
		}

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one trigger step, found 0")
	})

	t.Run("two triggers", func(t *testing.T) {
		doc := validDocument(t)
		second := doc.Flow.Versions[0].Steps[0]
		second.ID = 2
		doc.Flow.Versions[0].Steps = append(doc.Flow.Versions[0].Steps, second)

		err := validator.Validate(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one trigger step, found 2")
	})
}

func TestValidator_UnknownStepType(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Flow.Versions[0].Steps = append(doc.Flow.Versions[0].Steps,
		api.Step{ID: 2, Type: "teleport", Name: "Beam it over"})

	err := validator.Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[1].type")
}

func TestValidator_ConnectionEndpoints(t *testing.T) {
	validator := NewValidator()

	doc := validDocument(t)
	doc.Flow.Versions[0].Steps = append(doc.Flow.Versions[0].Steps,
		api.Step{ID: 2, Type: api.StepTypeConnector, Name: "Fetch orders"})
	doc.Flow.Versions[0].Connections = []api.Connection{
		{From: 1, To: 2},
		{From: 2, To: 9},
	}

	err := validator.Validate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connections[1].to")
	assert.Contains(t, err.Error(), "unknown step id 9")
}

func TestValidator_CronExpression(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{"valid", "0 */6 * * *", ""},
		{"empty", "", "is required when schedule_type is cron"},
		{"wrong field count", "* * *", "must have 5 fields, found 3"},
		{"garbage field", "0 0 foo * *", "not a valid cron expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument(t)
			doc.Flow.Versions[0].Steps[0].Config[api.ConfigKeyCronExpression] = tt.expr

			err := validator.Validate(doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
