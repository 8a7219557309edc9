package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/config"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/observability"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	down     bool
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func (m *mockComponent) Health(context.Context) observability.Health {
	if m.down {
		return observability.Health{Name: m.name, Status: observability.HealthStatusDown, Message: "unreachable"}
	}
	return observability.Health{Name: m.name, Status: observability.HealthStatusUp}
}

func newTestApp(t *testing.T, opts ...Option) (*App[*testConfig], *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "chatgate", Version: "1.2.3"}}
	app, err := NewApp(cfg, append([]Option{WithLogger(logger.Nop()), WithSummaryWriter(&out)}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &out
}

func TestNewAppAppliesDefaults(t *testing.T) {
	app, _ := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.Name != "chatgate" || app.Version != "1.2.3" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected development default, got %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	_, err := NewApp(&testConfig{}, WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	app, out := newTestApp(t)
	comp := &mockComponent{name: "store"}
	if err := app.RegisterComponent(comp); err != nil {
		t.Fatal(err)
	}

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		order = append(order, "configure:"+a.Cfg.Name)
		return nil
	})
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		if !comp.started || comp.stopped {
			t.Error("component must be running during the task")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if got := strings.Join(order, ","); got != "start,configure:chatgate,ready,task,stop" {
		t.Errorf("unexpected order %s", got)
	}
	if !comp.stopped {
		t.Error("component must be stopped after the task")
	}
	if !strings.Contains(out.String(), "chatgate 1.2.3 started") {
		t.Errorf("summary missing header: %q", out.String())
	}
}

func TestRunTaskReturnsTaskError(t *testing.T) {
	app, _ := newTestApp(t)
	comp := &mockComponent{name: "store"}
	_ = app.RegisterComponent(comp)

	want := errors.New("send failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("expected task error, got %v", err)
	}
	if !comp.stopped {
		t.Error("components must stop after a failed task")
	}
}

func TestStartupFailureStopsStartedComponents(t *testing.T) {
	app, _ := newTestApp(t)
	first := &mockComponent{name: "telemetry"}
	broken := &mockComponent{name: "server", startErr: errors.New("address in use")}
	_ = app.RegisterComponent(first)
	_ = app.RegisterComponent(broken)

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil || !strings.Contains(err.Error(), "address in use") {
		t.Fatalf("expected start error, got %v", err)
	}
	if ran {
		t.Error("task must not run when startup fails")
	}
	if !first.stopped {
		t.Error("started component must be stopped")
	}
}

func TestRunStopsWhenContextDone(t *testing.T) {
	app, _ := newTestApp(t)
	comp := &mockComponent{name: "server"}
	_ = app.RegisterComponent(comp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	app.OnReady(func(context.Context) error { cancel(); return nil })
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if !comp.stopped {
		t.Error("component must be stopped")
	}
}

func TestReadyCheckAndSummaryHealth(t *testing.T) {
	app, out := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "redis", down: true})
	_ = app.RegisterComponent(&component.Func{
		ComponentName: "server",
		Desc:          component.Description{Name: "HTTP Server", Type: "server", Details: "0.0.0.0", Port: 8080},
	})
	app.Summary.TrackRoute("POST", "/api/chat", "Handler.chat")

	ctx := context.Background()
	err := app.ReadyCheck(ctx)
	if err == nil || !strings.Contains(err.Error(), "redis=down(unreachable)") {
		t.Errorf("unexpected ready check %v", err)
	}

	app.Summary.Display(ctx, app.Components)
	text := out.String()
	for _, want := range []string{"HTTP Server [server]: 0.0.0.0 (:8080)", "POST    /api/chat -> Handler.chat", "redis: down (unreachable)"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
