package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/chatgate/observability"
)

type fakeComponent struct {
	name     string
	startErr error
	log      *[]string
	running  bool
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	*f.log = append(*f.log, "start "+f.name)
	return nil
}

func (f *fakeComponent) Stop(context.Context) error {
	f.running = false
	*f.log = append(*f.log, "stop "+f.name)
	return nil
}

func (f *fakeComponent) Health(context.Context) observability.Health {
	status := observability.HealthStatusDown
	if f.running {
		status = observability.HealthStatusUp
	}
	return observability.Health{Name: f.name, Status: status}
}

func TestStartStopsOnCleanup(t *testing.T) {
	var log []string
	c := &fakeComponent{name: "a", log: &log}

	t.Run("inner", func(t *testing.T) {
		got := Start(t, c)
		if got != c {
			t.Error("Start should return its argument")
		}
		RequireHealthy(t, c)
	})

	if c.running {
		t.Error("component still running after the subtest ended")
	}
	if len(log) != 2 || log[0] != "start a" || log[1] != "stop a" {
		t.Errorf("unexpected lifecycle %v", log)
	}
}

func TestStartAllStopsInReverse(t *testing.T) {
	var log []string
	t.Run("inner", func(t *testing.T) {
		StartAll(t, &fakeComponent{name: "a", log: &log}, &fakeComponent{name: "b", log: &log})
	})

	want := []string{"start a", "start b", "stop b", "stop a"}
	if len(log) != len(want) {
		t.Fatalf("unexpected lifecycle %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d: got %q, want %q", i, log[i], want[i])
		}
	}
}

type recordingTB struct {
	testing.TB
	fatal bool
}

func (r *recordingTB) Helper()               {}
func (r *recordingTB) Cleanup(func())        {}
func (r *recordingTB) Fatalf(string, ...any) { r.fatal = true }

func TestStartReportsFailure(t *testing.T) {
	var log []string
	tb := &recordingTB{TB: t}
	Start(tb, &fakeComponent{name: "broken", startErr: errors.New("boom"), log: &log})
	if !tb.fatal {
		t.Error("expected Fatalf on start failure")
	}
	if len(log) != 0 {
		t.Errorf("unexpected lifecycle %v", log)
	}
}
