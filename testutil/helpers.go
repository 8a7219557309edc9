package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/observability"
)

// Start starts c and registers its Stop with t.Cleanup. A start failure
// fails the test.
func Start[C component.Component](t testing.TB, c C) C {
	t.Helper()
	return StartWithContext(context.Background(), t, c)
}

// StartWithContext is Start with a custom start context.
func StartWithContext[C component.Component](ctx context.Context, t testing.TB, c C) C {
	t.Helper()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	t.Cleanup(func() {
		if err := c.Stop(context.WithoutCancel(ctx)); err != nil {
			t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
	return c
}

// StartAll starts the components in order. Cleanup stops them in reverse.
func StartAll(t testing.TB, cs ...component.Component) {
	t.Helper()
	for _, c := range cs {
		Start(t, c)
	}
}

// RequireHealthy fails the test unless c reports up.
func RequireHealthy(t testing.TB, c component.Component) observability.Health {
	t.Helper()
	h := c.Health(context.Background())
	if h.Status != observability.HealthStatusUp {
		t.Fatalf("component %s is %s: %s", c.Name(), h.Status, h.Message)
	}
	return h
}
