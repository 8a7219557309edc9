package component

import (
	"context"

	"github.com/kbukum/chatgate/observability"
)

// Component is a lifecycle-managed part of a binary.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It is called at most once per Start.
	Stop(ctx context.Context) error
	Health(ctx context.Context) observability.Health
}

// Description is what a component reports in the startup summary.
type Description struct {
	// Name defaults to the component's Name().
	Name string
	// Type is a short category such as "server", "store" or "telemetry".
	Type    string
	Details string
	Port    int
}

// Describable is implemented by components that describe themselves in
// the startup summary.
type Describable interface {
	Describe() Description
}

// Func is a Component built from functions. Nil functions are no-ops and
// a nil check reports the component up.
type Func struct {
	ComponentName string
	Desc          Description
	OnStart       func(ctx context.Context) error
	OnStop        func(ctx context.Context) error
	Check         func(ctx context.Context) error
}

// Name implements Component.
func (f *Func) Name() string { return f.ComponentName }

// Start implements Component.
func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

// Stop implements Component.
func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}

// Health implements Component.
func (f *Func) Health(ctx context.Context) observability.Health {
	h := observability.Health{Name: f.ComponentName, Status: observability.HealthStatusUp}
	if f.Check == nil {
		return h
	}
	if err := f.Check(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// Describe implements Describable.
func (f *Func) Describe() Description { return f.Desc }

var (
	_ Component   = (*Func)(nil)
	_ Describable = (*Func)(nil)
)
