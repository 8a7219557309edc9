package server

import (
	"sort"
	"strings"

	"github.com/kbukum/chatgate/logger"
)

var systemPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// Route is one registered endpoint.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// Routes lists the registered gin routes, API routes first.
func (s *Server) Routes() []Route {
	infos := s.engine.Routes()
	sort.Slice(infos, func(i, j int) bool {
		iSys, jSys := systemPaths[infos[i].Path], systemPaths[infos[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	out := make([]Route, 0, len(infos))
	for _, r := range infos {
		out = append(out, Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)})
	}
	return out
}

// LogRoutes logs every route at startup.
func (s *Server) LogRoutes() {
	for _, r := range s.Routes() {
		s.log.Info("Route registered", logger.Fields("method", r.Method, "path", r.Path, "handler", r.Handler))
	}
}

// formatHandlerName shortens gin's handler names:
//
//	github.com/kbukum/chatgate/gateway.(*Handler).Chat-fm -> Handler.Chat
//	github.com/kbukum/chatgate/server/endpoint.Health.func1 -> health
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	if len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}
	if len(parts) > 1 {
		return strings.Join(parts[1:], ".")
	}
	return name
}
