package component

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
	stopCtx    context.Context
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) Start(_ context.Context) error {
	if f.startOrder != nil {
		*f.startOrder = append(*f.startOrder, f.name)
	}
	return f.startErr
}
func (f *fakeComponent) Stop(ctx context.Context) error {
	f.stopCtx = ctx
	if f.stopOrder != nil {
		*f.stopOrder = append(*f.stopOrder, f.name)
	}
	return f.stopErr
}
func (f *fakeComponent) Health(_ context.Context) Health { return f.health }

type describedComponent struct {
	fakeComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "http-server"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "http-server"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("http-server") == nil {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartStopOrder(t *testing.T) {
	r := NewRegistry()
	var started, stopped []string
	for _, name := range []string{"tracing", "sse", "http-server"} {
		_ = r.Register(&fakeComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if fmt.Sprint(started) != "[tracing sse http-server]" {
		t.Errorf("start order = %v", started)
	}
	if fmt.Sprint(stopped) != "[http-server sse tracing]" {
		t.Errorf("stop order = %v", stopped)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	var stopped []string
	_ = r.Register(&fakeComponent{name: "sse", stopOrder: &stopped})
	_ = r.Register(&fakeComponent{name: "http-server", startErr: fmt.Errorf("address in use"), stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	_ = r.StopAll(context.Background())
	if fmt.Sprint(stopped) != "[sse]" {
		t.Errorf("only started components should stop, got %v", stopped)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "tracing", stopErr: fmt.Errorf("flush failed")})
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestStopTimeout(t *testing.T) {
	r := NewRegistry()
	r.SetStopTimeout(50 * time.Millisecond)
	c := &fakeComponent{name: "http-server"}
	_ = r.Register(c)
	_ = r.StartAll(context.Background())
	_ = r.StopAll(context.Background())

	deadline, ok := c.stopCtx.Deadline()
	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Errorf("expected stop context bounded by 50ms, got %v", deadline)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "http-server", health: Health{Name: "http-server", Status: StatusHealthy}})
	_ = r.Register(&fakeComponent{name: "tracing", health: Health{Name: "tracing", Status: StatusDegraded, Message: "exporter unreachable"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != StatusDegraded {
		t.Errorf("expected tracing degraded, got %s", results[1].Status)
	}
	if Overall(results) != StatusDegraded {
		t.Errorf("overall = %s", Overall(results))
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results []Health
			for _, s := range tt.statuses {
				results = append(results, Health{Status: s})
			}
			if got := Overall(results); got != tt.want {
				t.Errorf("Overall = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "plain"})
	_ = r.Register(&describedComponent{
		fakeComponent: fakeComponent{name: "sse"},
		desc:          Description{Type: "sse", Details: "text/event-stream responses"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "sse" {
		t.Errorf("expected name defaulted to component name, got %q", descs[0].Name)
	}
}
