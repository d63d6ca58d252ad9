package platform

import (
	"flowbridge/internal/api"
)

// Adapter registers the platform client as the api.PlatformHandler.
type Adapter struct {
	client *Client
}

// NewAdapter creates a platform adapter around a configured client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Register registers the adapter with the central API layer.
func (a *Adapter) Register() {
	api.RegisterPlatform(a.client)
}
