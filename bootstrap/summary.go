package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/observability"
)

// RouteInfo is one HTTP route shown in the summary.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary prints what a binary started with.
type Summary struct {
	w               io.Writer
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
}

// NewSummary creates a summary writing to w. A nil w writes to stdout.
func NewSummary(serviceName, version string, w io.Writer) *Summary {
	if w == nil {
		w = os.Stdout
	}
	return &Summary{w: w, serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

// Display prints the header, the described components, the tracked
// routes and live health.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.w
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	var comps []component.Component
	if registry != nil {
		comps = registry.All()
	}
	if len(comps) > 0 {
		fmt.Fprintf(w, "\nComponents\n")
		for i, c := range comps {
			desc := component.Description{}
			if d, ok := c.(component.Describable); ok {
				desc = d.Describe()
			}
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			details := desc.Details
			if desc.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, desc.Port)
			}
			if desc.Type != "" {
				name = fmt.Sprintf("%s [%s]", name, desc.Type)
			}
			fmt.Fprintf(w, "   %s %s: %s\n", branch(i, len(comps)), name, details)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", branch(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		health := registry.HealthAll(ctx)
		if len(health) > 0 {
			fmt.Fprintf(w, "\nHealth\n")
			for i, h := range health {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(health)), healthIcon(h.Status), h.Name, h.Status, msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func healthIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
