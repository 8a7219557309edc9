package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/observability"
)

// HubComponent runs a Hub under a component.Registry.
type HubComponent struct {
	Hub *Hub
}

var _ component.Component = (*HubComponent)(nil)

// NewHubComponent wraps a new hub.
func NewHubComponent() *HubComponent {
	return &HubComponent{Hub: NewHub()}
}

// Name implements component.Component.
func (c *HubComponent) Name() string { return "activity-hub" }

// Start runs the hub loop in a goroutine.
func (c *HubComponent) Start(context.Context) error {
	go c.Hub.Run()
	return nil
}

// Stop closes every subscriber.
func (c *HubComponent) Stop(context.Context) error {
	c.Hub.Stop()
	return nil
}

// Health implements component.Component.
func (c *HubComponent) Health(ctx context.Context) observability.Health {
	h := c.Hub.CheckHealth(ctx)
	h.Name = c.Name()
	return h
}

// Describe implements component.Describable.
func (c *HubComponent) Describe() component.Description {
	return component.Description{Name: "Activity Hub", Type: "sse", Details: fmt.Sprintf("%d subscribers", c.Hub.ClientCount())}
}
