package investigate

import (
	"flowbridge/internal/api"
)

// Adapter registers the orchestrator as the api.InvestigatorHandler.
type Adapter struct {
	orchestrator *Orchestrator
}

// NewAdapter creates an investigation adapter around an orchestrator.
func NewAdapter(orchestrator *Orchestrator) *Adapter {
	return &Adapter{orchestrator: orchestrator}
}

// Register registers the adapter with the central API layer.
func (a *Adapter) Register() {
	api.RegisterInvestigator(a.orchestrator)
}
