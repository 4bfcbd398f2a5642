package webx

import (
	"slices"
	"strings"
)

// Handler processes one request. The registration-time args are passed
// through verbatim. Returning an error fails the connection with a 500.
type Handler func(f *Flow, args ...any) error

// Methods ":before" and ":after" are pseudo-methods: their routes run
// unconditionally before and after the main dispatch, independent of
// the request's real method.
const (
	MethodBefore = ":before"
	MethodAfter  = ":after"
)

type route struct {
	order    int
	path     string
	method   string
	wildcard bool
	h        Handler
	args     []any
}

// Web is a priority-ordered route table. Register everything at
// startup; lookups are read-only afterwards and need no
// synchronization.
type Web struct {
	routes []route
}

func NewWeb() *Web {
	return &Web{}
}

// Route registers h under path for each comma-separated method in
// methods ("" means "get,post"). A trailing '*' marks the path as a
// wildcard prefix. Longer prefixes match first; at equal length an
// exact route outranks a wildcard, and the most recently registered
// entry wins among full ties.
func (w *Web) Route(path, methods string, h Handler, args ...any) {
	if methods == "" {
		methods = "get,post"
	}
	p := strings.ToLower(path)
	wildcard := strings.HasSuffix(p, "*")
	if wildcard {
		p = p[:len(p)-1]
	}
	order := len(p) * 4
	if !wildcard {
		order++
	}
	i := 0
	for i < len(w.routes) && w.routes[i].order > order {
		i++
	}
	for _, m := range strings.Split(methods, ",") {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		w.routes = slices.Insert(w.routes, i, route{
			order:    order,
			path:     p,
			method:   m,
			wildcard: wildcard,
			h:        h,
			args:     args,
		})
	}
}

// find returns the first table entry matching path and method, nil when
// nothing qualifies. The table is sorted by descending order, so the
// first hit is the longest, most specific prefix.
func (w *Web) find(path, method string) *route {
	p := strings.ToLower(path)
	m := strings.ToLower(method)
	if m == "" {
		m = "get"
	}
	for i := range w.routes {
		rt := &w.routes[i]
		if rt.method != m {
			continue
		}
		if rt.path == p || (rt.wildcard && strings.HasPrefix(p, rt.path)) {
			return rt
		}
	}
	return nil
}
