package server

import (
	"context"

	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/observability"
)

var (
	_ component.Component   = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// Name implements component.Component.
func (s *Server) Name() string { return "http-server" }

// Health reports the server up once its listener is bound.
func (s *Server) Health(context.Context) observability.Health {
	s.mu.Lock()
	bound := s.listener != nil
	s.mu.Unlock()
	if !bound {
		return observability.Health{Name: s.Name(), Status: observability.HealthStatusDown, Message: "not listening"}
	}
	return observability.Health{Name: s.Name(), Status: observability.HealthStatusUp}
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: s.config.Host,
		Port:    s.config.Port,
	}
}
