package discovery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RouteDescriptor describes one endpoint discovered from a server's route
// listing. Path is a template made of literal segments and <name> parameter
// placeholders, always starting with "/". Method defaults to GET when the
// listing does not name one.
type RouteDescriptor struct {
	Path        string
	Method      string
	Description string
	Params      []string // placeholder names in template order
}

// RouteManifest is the complete set of routes discovered from one server at
// one point in time. A fresh fetch produces a new manifest; an existing one
// is never mutated.
type RouteManifest struct {
	BaseURL string
	Routes  []RouteDescriptor
}

// placeholderPattern matches one parameter segment in either the <name> or
// the {name} spelling.
var placeholderPattern = regexp.MustCompile(`^[<{]([A-Za-z0-9_.-]+)[>}]$`)

var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// newDescriptor builds a RouteDescriptor from a raw path template. It reports
// false when the template cannot be confidently recognized as a path, in
// which case the caller should drop it rather than guess.
func newDescriptor(rawPath, method, description string) (RouteDescriptor, bool) {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" || !strings.HasPrefix(rawPath, "/") || strings.ContainsAny(rawPath, " \t") {
		return RouteDescriptor{}, false
	}

	var segments []string
	var params []string
	for _, seg := range strings.Split(rawPath, "/") {
		if seg == "" {
			continue
		}
		if m := placeholderPattern.FindStringSubmatch(seg); m != nil {
			seg = "<" + m[1] + ">"
			params = append(params, m[1])
		}
		segments = append(segments, seg)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	if !knownMethods[method] {
		return RouteDescriptor{}, false
	}

	return RouteDescriptor{
		Path:        "/" + strings.Join(segments, "/"),
		Method:      method,
		Description: strings.TrimSpace(description),
		Params:      params,
	}, true
}

// Segments returns the path template split into its non-empty segments. The
// root template "/" yields no segments.
func (r RouteDescriptor) Segments() []string {
	if r.Path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(r.Path, "/"), "/")
}

// String renders the descriptor the way the help listing shows it.
func (r RouteDescriptor) String() string {
	if r.Description == "" {
		return fmt.Sprintf("%s %s", r.Method, r.Path)
	}
	return fmt.Sprintf("%s %s  %s", r.Method, r.Path, r.Description)
}

// IsParam reports whether a path segment is a parameter placeholder, and
// returns the placeholder name when it is.
func IsParam(segment string) (string, bool) {
	if m := placeholderPattern.FindStringSubmatch(segment); m != nil {
		return m[1], true
	}
	return "", false
}

// Sorted returns the routes ordered lexicographically by path, then method.
// Printing and completion export rely on this ordering being stable so
// repeated runs over an unchanged manifest are byte-identical.
func (m *RouteManifest) Sorted() []RouteDescriptor {
	routes := make([]RouteDescriptor, len(m.Routes))
	copy(routes, m.Routes)
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// dedupe drops exact (path, method) repeats, keeping the first occurrence.
// HTML listings frequently repeat the same anchor in navigation and body.
func dedupe(routes []RouteDescriptor) []RouteDescriptor {
	seen := make(map[string]bool, len(routes))
	out := routes[:0]
	for _, r := range routes {
		key := r.Method + " " + r.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
