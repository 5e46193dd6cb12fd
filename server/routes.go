package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/component"
)

// systemPaths are the operational routes, listed after the API routes.
var systemPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/version":      true,
	"/metrics":      true,
}

func routes(info gin.RoutesInfo) []component.Route {
	sort.Slice(info, func(i, j int) bool {
		iSys, jSys := systemPaths[info[i].Path], systemPaths[info[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if info[i].Path != info[j].Path {
			return info[i].Path < info[j].Path
		}
		return methodOrder(info[i].Method) < methodOrder(info[j].Method)
	})

	out := make([]component.Route, 0, len(info))
	for _, r := range info {
		out = append(out, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
		})
	}
	return out
}

// handlerName shortens gin's handler path,
// "github.com/kbukum/streamkit/api.(*Handler).Words-fm" becomes "Handler.Words".
// Closures keep the name of the function that returned them.
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 {
		parts = parts[1:] // package
	}
	return strings.Join(parts, ".")
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
