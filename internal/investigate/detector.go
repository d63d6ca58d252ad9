package investigate

import (
	"strings"

	"flowbridge/internal/api"
)

// AlertFlowDetector decides whether a flow exists to notify on another
// flow's failure. When the detector matches, the orchestrator follows the
// catch-route payload back to the originating flow instead of treating the
// alert flow's own failure as the root cause.
//
// The policy is a plain predicate over flow metadata so it can be tested
// and swapped independently of the chain-following algorithm.
type AlertFlowDetector func(flow api.FlowSummary) bool

// alertMarkers are the name fragments that identify an alert flow under
// the default policy.
var alertMarkers = []string{"alert", "notification", "notify"}

// DefaultAlertFlowDetector matches flows whose name or description carries
// an alerting marker.
func DefaultAlertFlowDetector(flow api.FlowSummary) bool {
	name := strings.ToLower(flow.Name)
	description := strings.ToLower(flow.Description)
	for _, marker := range alertMarkers {
		if strings.Contains(name, marker) || strings.Contains(description, marker) {
			return true
		}
	}
	return false
}
