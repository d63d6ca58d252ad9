// Package api is the central contract layer for flowbridge.
//
// It holds the types shared by every subsystem (the flow-import document
// model, the platform wire types, the investigation report) together with the
// handler interfaces and the handler registry that wires the subsystems
// together without direct package dependencies.
//
// # Handler registry
//
// Subsystems implement a handler interface and register an adapter during
// startup:
//
//	adapter := platform.NewAdapter(client)
//	adapter.Register()
//
// Consumers retrieve handlers through the matching Get function and must
// check for nil, since registration order is a bootstrap concern:
//
//	ph := api.GetPlatform()
//	if ph == nil {
//	    return api.ErrPlatformNotRegistered
//	}
//
// This keeps the dependency graph flat: internal/flowtools talks to
// internal/platform, internal/flowdoc and internal/investigate exclusively
// through this package.
//
// # Tool providers
//
// Components that expose operations to a conversational driver implement
// ToolProvider and register themselves with RegisterToolProvider. The MCP
// server enumerates the registry at startup to build its tool catalogue, so
// the set of exposed tools is explicit and testable.
package api
