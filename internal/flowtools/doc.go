// Package flowtools exposes the flow authoring and investigation
// operations as a tool catalogue for conversational drivers.
//
// The provider implements api.ToolProvider: a fixed set of named tools,
// each taking a structured argument object and returning a structured
// result object, never free text. Handlers reach the flow builder, the
// platform client and the investigator through the central API layer, so
// the provider itself stays stateless.
package flowtools
