package api

import (
	"sort"
	"sync"

	"flowbridge/pkg/logging"
)

// Handler registry variables store the registered implementations.
// These variables are protected by handlerMutex for thread-safe access.
var (
	platformHandler     PlatformHandler
	flowBuilderHandler  FlowBuilderHandler
	investigatorHandler InvestigatorHandler

	// toolProviders maps provider names to registered tool providers.
	// Access is protected by handlerMutex.
	toolProviders map[string]ToolProvider

	// handlerMutex protects all registry operations.
	handlerMutex sync.RWMutex
)

// RegisterPlatform registers the platform client handler implementation.
// Only one platform handler can be registered at a time; subsequent
// registrations replace the previous handler.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterPlatform(h PlatformHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering platform handler: %v", h != nil)
	platformHandler = h
}

// GetPlatform returns the registered platform handler, or nil if none has
// been registered yet. Callers must check for nil.
func GetPlatform() PlatformHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return platformHandler
}

// RegisterFlowBuilder registers the flow builder handler implementation.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterFlowBuilder(h FlowBuilderHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering flow builder handler: %v", h != nil)
	flowBuilderHandler = h
}

// GetFlowBuilder returns the registered flow builder handler, or nil.
func GetFlowBuilder() FlowBuilderHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return flowBuilderHandler
}

// RegisterInvestigator registers the investigation orchestrator handler.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterInvestigator(h InvestigatorHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering investigator handler: %v", h != nil)
	investigatorHandler = h
}

// GetInvestigator returns the registered investigator handler, or nil.
func GetInvestigator() InvestigatorHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return investigatorHandler
}

// RegisterToolProvider adds a named tool provider to the registry.
// Registration is an explicit call at process startup, not implicit
// discovery, so the registry's contents are enumerable and testable.
// Registering the same name twice replaces the earlier provider.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterToolProvider(name string, p ToolProvider) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	if toolProviders == nil {
		toolProviders = make(map[string]ToolProvider)
	}
	toolProviders[name] = p
	logging.Debug("API", "Registered tool provider %s with %d tools", name, len(p.GetTools()))
}

// ListToolProviders returns the registered providers in name order.
func ListToolProviders() []ToolProvider {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()

	names := make([]string, 0, len(toolProviders))
	for name := range toolProviders {
		names = append(names, name)
	}
	sort.Strings(names)

	providers := make([]ToolProvider, 0, len(names))
	for _, name := range names {
		providers = append(providers, toolProviders[name])
	}
	return providers
}

// ResetForTesting clears the registry. Test code only.
func ResetForTesting() {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	platformHandler = nil
	flowBuilderHandler = nil
	investigatorHandler = nil
	toolProviders = nil
}
