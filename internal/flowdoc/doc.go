// Package flowdoc implements flow-import document authoring: prompt-slot
// extraction, document construction, and schema validation.
//
// The three pieces form a pipeline. The parser turns a free-text request
// ("create a flow for Shopify to NetSuite orders, run every 15 minutes,
// priority high") into a PromptSlots value with documented defaults for
// anything it cannot recognize. The builder turns either a slot set or a
// caller-supplied partial document into a complete FlowDocument, filling
// required-but-unspecified fields with safe defaults (draft status,
// priority 3, disabled). The validator checks every structural invariant in
// one pass and reports all violations together, so a caller can fix a
// document in a single round trip.
//
// Parsing is deterministic and table-driven on purpose. Slot extraction is
// regex and keyword tables with explicit fallbacks, never a model call, so
// builder behavior stays reproducible and testable. A language-model-based
// extractor can sit upstream as long as it produces the same PromptSlots
// contract.
//
// Validation is purely structural and referential. Whether referenced
// connectors or credentials exist on the platform is checked by the platform
// at creation time and surfaced as a creation-time error, not here.
package flowdoc
